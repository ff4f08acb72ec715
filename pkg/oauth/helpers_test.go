package oauth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

// rewriteTransport intercepts requests whose host contains one of hosts and
// routes them to handler instead of the network.
type rewriteTransport struct {
	base    http.RoundTripper
	handler http.Handler
	hosts   []string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, h := range t.hosts {
		if strings.Contains(req.URL.Host, h) {
			recorder := httptest.NewRecorder()
			t.handler.ServeHTTP(recorder, req)
			return recorder.Result(), nil
		}
	}
	return t.base.RoundTrip(req)
}

func interceptingClient(handler http.Handler, hosts ...string) *http.Client {
	return &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, handler: handler, hosts: hosts}}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func tokenHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"access_token":  token,
			"token_type":    "Bearer",
			"refresh_token": "refresh-" + token,
			"expires_in":    3600,
		})
	}
}
