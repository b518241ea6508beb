package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// RunFile loads path and runs every scenario as a subtest.
func RunFile(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	list, err := LoadScenarios(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range list {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			Run(t, handler, s)
		})
	}
}

// Run fires one scenario and asserts on the response.
func Run(t *testing.T, handler http.Handler, s Scenario) *httptest.ResponseRecorder {
	t.Helper()

	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(s.Body) > 0 {
		body = bytes.NewReader(s.Body)
	}
	req := httptest.NewRequest(method, s.RequestURL, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	for k, v := range s.ExpectedHeaders {
		assert.Equal(t, v, rec.Header().Get(k), "[%s] header %s", s.Name, k)
	}
	for _, want := range s.Contains {
		assert.Contains(t, rec.Body.String(), want, "[%s] body", s.Name)
	}
	AssertJSONBody(t, s, s.Response, rec.Body.Bytes())
	return rec
}
