package req

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theajstars/voyatek-assessment/internal/pkg/errs"
)

type bindTarget struct {
	Name string `json:"name"`
}

func TestBindJSONDecodesBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ada"}`))
	r.Header.Set("Content-Type", "application/json")

	var dst bindTarget
	require.Nil(t, BindJSON(r, &dst))
	assert.Equal(t, "Ada", dst.Name)
}

func TestBindJSONRejectsWrongContentType(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ada"}`))
	r.Header.Set("Content-Type", "text/plain")

	var dst bindTarget
	cerr := BindJSON(r, &dst)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrUnsupportedMediaType, cerr.Code)
}

func TestBindJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ada","extra":1}`))
	r.Header.Set("Content-Type", "application/json")

	var dst bindTarget
	cerr := BindJSON(r, &dst)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrInvalidJSONFormat, cerr.Code)
}

func TestBindJSONRejectsTrailingContent(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Ada"}{"name":"Bob"}`))
	r.Header.Set("Content-Type", "application/json")

	var dst bindTarget
	cerr := BindJSON(r, &dst)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrExtraContentInBody, cerr.Code)
}
