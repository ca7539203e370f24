package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Fatalf("unexpected header %q", got)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method:  MethodPost,
		URL:     srv.URL,
		Headers: map[string]string{"X-Test": "yes"},
		Body:    map[string]string{"msg": "hello"},
	}, &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out["echo"] != "hello" {
		t.Fatalf("unexpected response %v", out)
	}
}

func TestSendAndParseQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Fatalf("unexpected query %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"AAPL"}},
	}, &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestSendAndParseNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method: MethodGet,
		URL:    srv.URL,
	}, &out)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestSendAndParseRawDestinations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("raw-bytes"))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(5 * time.Second))

	var raw []byte
	if err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &raw); err != nil {
		t.Fatalf("send: %v", err)
	}
	if string(raw) != "raw-bytes" {
		t.Fatalf("unexpected bytes %q", raw)
	}

	var buf bytes.Buffer
	if err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &buf); err != nil {
		t.Fatalf("send: %v", err)
	}
	if buf.String() != "raw-bytes" {
		t.Fatalf("unexpected buffer %q", buf.String())
	}
}

func TestAppErrorWrapping(t *testing.T) {
	base := errors.New("connection refused")
	appErr := InternalError("store unavailable").WithError(base).WithParam("retry", true)

	if !errors.Is(appErr, base) {
		t.Fatalf("expected unwrap to reach base error")
	}
	if appErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", appErr.Status)
	}
	if appErr.Params["retry"] != true {
		t.Fatalf("unexpected params %v", appErr.Params)
	}

	var target *AppError
	if !errors.As(error(appErr), &target) {
		t.Fatalf("expected errors.As to match")
	}
}

func TestUnprocessableError(t *testing.T) {
	e := UnprocessableErrorf("need %d rows, got %d", 70, 12)
	if e.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", e.Status)
	}
	if e.Message != "need 70 rows, got 12" {
		t.Fatalf("unexpected message %q", e.Message)
	}
}
