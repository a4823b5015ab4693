package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bilemo/bilemo/internal/apierr"
)

func TestHandler_Index(t *testing.T) {
	h := New(NewResponder(apierr.NewTranslator(nil), nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response IndexResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Name != "BileMo API" {
		t.Errorf("unexpected name: %s", response.Name)
	}
	if response.Links["products"] != "http://localhost:8080/api/products" {
		t.Errorf("unexpected products link: %s", response.Links["products"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New(NewResponder(apierr.NewTranslator(nil), nil, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response apierr.Body
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Code != http.StatusNotFound || response.Message != apierr.MsgNotFound {
		t.Errorf("unexpected envelope: %+v", response)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New(NewResponder(apierr.NewTranslator(nil), nil, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	var response apierr.Body
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Code != http.StatusMethodNotAllowed {
		t.Errorf("unexpected envelope: %+v", response)
	}
}
