package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sampleRequest struct {
	Symbol string `json:"symbol" query:"symbol" validate:"required,max=12"`
	Limit  int    `json:"limit" query:"limit" default:"10" validate:"gte=1,lte=100"`
}

func newContext(method, target, body string) echo.Context {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	c := newContext(http.MethodGet, "/?symbol=AAPL", "")

	var req sampleRequest
	if verr := ReadAndValidateRequest(c, &req); verr != nil {
		t.Fatalf("unexpected validation failure: %v", verr)
	}
	if req.Symbol != "AAPL" {
		t.Fatalf("unexpected symbol %q", req.Symbol)
	}
	if req.Limit != 10 {
		t.Fatalf("default not applied: %d", req.Limit)
	}
}

func TestReadAndValidateRequestJSONBody(t *testing.T) {
	c := newContext(http.MethodPost, "/", `{"symbol":"MSFT","limit":5}`)

	var req sampleRequest
	if verr := ReadAndValidateRequest(c, &req); verr != nil {
		t.Fatalf("unexpected validation failure: %v", verr)
	}
	if req.Symbol != "MSFT" || req.Limit != 5 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestReadAndValidateRequestMissingRequired(t *testing.T) {
	c := newContext(http.MethodGet, "/", "")

	var req sampleRequest
	verr := ReadAndValidateRequest(c, &req)
	if verr == nil {
		t.Fatalf("expected validation errors")
	}
	errs, ok := verr.([]ValidationError)
	if !ok || len(errs) == 0 {
		t.Fatalf("unexpected validation payload %v", verr)
	}
	if errs[0].Code != "ERR_REQUIRED" {
		t.Fatalf("unexpected code %q", errs[0].Code)
	}
	if errs[0].Message != "Symbol is required" {
		t.Fatalf("unexpected message %q", errs[0].Message)
	}
}

func TestReadAndValidateRequestOutOfRange(t *testing.T) {
	c := newContext(http.MethodGet, "/?symbol=AAPL&limit=500", "")

	var req sampleRequest
	verr := ReadAndValidateRequest(c, &req)
	errs, ok := verr.([]ValidationError)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected range error, got %v", verr)
	}
	if errs[0].Code != "ERR_LTE" {
		t.Fatalf("unexpected code %q", errs[0].Code)
	}
	if errs[0].Params["max"] != "100" {
		t.Fatalf("unexpected params %v", errs[0].Params)
	}
}
