package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_RejectsMissingKey(t *testing.T) {
	h := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/perks/roll", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_RejectsWrongKey(t *testing.T) {
	h := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/perks/roll", nil)
	req.Header.Set(HeaderAPIKey, "wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_AcceptsValidKey(t *testing.T) {
	h := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/perks/roll", nil)
	req.Header.Set(HeaderAPIKey, "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_PublicPathsBypass(t *testing.T) {
	h := AuthMiddleware("secret")(okHandler())

	for _, path := range PublicPaths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s should bypass auth", path)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	h := SecurityHeadersMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
	assert.Equal(t, HeaderValueSameOrigin, rec.Header().Get(HeaderFrameOptions))
	assert.Equal(t, HeaderValueReferrerStrictOrigin, rec.Header().Get(HeaderReferrerPolicy))
}
