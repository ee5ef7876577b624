package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func corsRequest(method, origin string) *http.Request {
	r := httptest.NewRequest(method, "/api/v1/noi/render", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://billing.example.com"}
	h := CORS(cfg)(okHandler())

	r := corsRequest(http.MethodOptions, "https://billing.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://billing.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_SimpleRequestExposesHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://billing.example.com"}
	h := CORS(cfg)(okHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, corsRequest(http.MethodPost, "https://billing.example.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	assert.ElementsMatch(t,
		[]string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"},
		w.Header().Values("Vary"))
}

func TestCORS_OriginMatching(t *testing.T) {
	cases := []struct {
		name     string
		origins  []string
		wildcard bool
		origin   string
		want     string
	}{
		{"exact", []string{"https://a.com", "https://b.com"}, false, "https://b.com", "https://b.com"},
		{"case insensitive", []string{"https://A.com"}, false, "https://a.com", "https://a.com"},
		{"disallowed", []string{"https://a.com"}, false, "https://evil.com", ""},
		{"any", []string{"*"}, false, "https://whoever.com", "*"},
		{"subdomain", []string{"*.example.com"}, true, "https://app.example.com", "https://app.example.com"},
		{"subdomain miss", []string{"*.example.com"}, true, "https://example.org", ""},
		{"pattern without wildcard flag", []string{"*.example.com"}, false, "https://app.example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tc.origins
			cfg.AllowWildcard = tc.wildcard

			w := httptest.NewRecorder()
			CORS(cfg)(okHandler()).ServeHTTP(w, corsRequest(http.MethodGet, tc.origin))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	cfg.AllowCredentials = true

	w := httptest.NewRecorder()
	CORS(cfg)(okHandler()).ServeHTTP(w, corsRequest(http.MethodGet, "https://billing.example.com"))
	assert.Equal(t, "https://billing.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	w := httptest.NewRecorder()
	CORS(DefaultCORSConfig())(okHandler()).ServeHTTP(w, corsRequest(http.MethodGet, ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_OptionsWithoutPreflightHeaderReachesHandler(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	w := httptest.NewRecorder()
	CORS(cfg)(okHandler()).ServeHTTP(w, corsRequest(http.MethodOptions, "https://a.com"))
	assert.Equal(t, http.StatusOK, w.Code)
}

//Personal.AI order the ending
