package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedHandler(t *testing.T, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true

		payload := GetPayloadFromContext(r)
		require.NotNil(t, payload)
		assert.Equal(t, int64(7), payload.UserID)
	})
}

func TestRequireAuthAcceptsValidBearerToken(t *testing.T) {
	token, err := GenerateToken(7, testSecret, UserIdentityExpiration)
	require.NoError(t, err)

	var called bool
	handler := RequireAuth(testSecret)(protectedHandler(t, &called))

	r := httptest.NewRequest("GET", "/api/rooms", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRejectsBadRequests(t *testing.T) {
	validToken, err := GenerateToken(7, testSecret, UserIdentityExpiration)
	require.NoError(t, err)

	tamperedToken, err := GenerateToken(7, "another-secret", UserIdentityExpiration)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + validToken},
		{"no token after scheme", "Bearer"},
		{"tampered token", "Bearer " + tamperedToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var called bool
			handler := RequireAuth(testSecret)(protectedHandler(t, &called))

			r := httptest.NewRequest("GET", "/api/rooms", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestBearerTokenQueryFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=abc123", nil)
	assert.Equal(t, "abc123", BearerToken(r))

	// The header wins when both are present.
	r.Header.Set("Authorization", "Bearer headertoken")
	assert.Equal(t, "headertoken", BearerToken(r))
}
