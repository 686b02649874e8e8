package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouterPublicRoutes(t *testing.T) {
	router := NewRouter(Config{AppEnv: "development"}, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", wantStatus: http.StatusOK},
		{name: "unknown_route", method: http.MethodGet, target: "/nope", wantStatus: http.StatusNotFound},
		{name: "bad_question_id", method: http.MethodGet, target: "/api/v1/questions/not-a-uuid", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("%s %s: got status %d, want %d", tc.method, tc.target, w.Code, tc.wantStatus)
			}
		})
	}
}

func TestRouterNotFoundEnvelope(t *testing.T) {
	router := NewRouter(Config{AppEnv: "development"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/questions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d", w.Code)
	}
	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if res.Success || !strings.Contains(res.Message, "Route /api/v2/questions not found") {
		t.Fatalf("unexpected envelope: %+v", res)
	}
}

func TestHealthEnvelope(t *testing.T) {
	router := NewRouter(Config{AppEnv: "development"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var res struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !res.Success || res.Message != "API is running" {
		t.Fatalf("unexpected envelope: %+v", res)
	}
	if res.Timestamp == "" {
		t.Fatal("missing timestamp")
	}
}
