/*
Package req provides helpers for HTTP request parsing and data binding.

BindJSON enforces a JSON content type, rejects unknown fields and trailing
content, and maps decode failures onto the errs taxonomy.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/theajstars/voyatek-assessment/internal/pkg/errs"
)

// BindJSON decodes the request body into dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
