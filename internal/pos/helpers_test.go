package pos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

// newTestFactory points every adapter at srv with an empty environment.
func newTestFactory(t *testing.T, srv *httptest.Server, env map[string]string) *Factory {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	if srv != nil {
		client = srv.Client()
		client.Timeout = 2 * time.Second
	}
	return NewFactory(
		WithHTTPClient(client),
		WithGetenv(func(k string) string { return env[k] }),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func requireBearer(t *testing.T, r *http.Request, token string) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Bearer "+token {
		t.Errorf("authorization header %q", got)
	}
}
