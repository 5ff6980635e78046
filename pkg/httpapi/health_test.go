package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder, out any) error {
	return json.Unmarshal(rec.Body.Bytes(), out)
}

func newAuthedRequest(t *testing.T, method, path, body, token string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serveRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	var env envelope
	env.Data = out
	raw := struct {
		Data      json.RawMessage `json:"data"`
		RequestID string          `json:"request_id"`
		Success   bool            `json:"success"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			t.Fatalf("decode envelope.data: %v", err)
		}
	}
	env.RequestID = raw.RequestID
	env.Success = raw.Success
	return env
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer().Handler()
	rec := doRequest(t, h, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	env := decodeEnvelope(t, rec, &resp)
	if !env.Success {
		t.Error("expected success=true")
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestHandleHealthProtected_AdminBypassWhenAuthDisabled(t *testing.T) {
	h := newTestServer().Handler()
	rec := doRequest(t, h, "GET", "/api/v1/health/protected", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var resp HealthResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}
