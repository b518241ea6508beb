package testkit

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Method", r.Method)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":200,"data":{"path":"` + r.URL.Path + `","tag":"` + r.Header.Get("X-Tag") + `"}}`))
	})
}

func writeScenarios(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunFile(t *testing.T) {
	path := writeScenarios(t, `[
	  {"name": "ok", "requestUrl": "/chai", "headers": {"X-Tag": "hot"},
	   "response": {"data": {"tag": "hot", "path": "/chai"}, "status": 200}},
	  {"name": "post", "requestMethod": "post", "requestUrl": "/x", "body": {"a": 1},
	   "expectedHeaders": {"X-Method": "POST"}, "contains": ["\"path\":\"/x\""]},
	  {"name": "missing", "requestUrl": "/missing", "expectedCode": 404}
	]`)

	RunFile(t, echoHandler(), path)
}

func TestLoadScenariosValidates(t *testing.T) {
	_, err := LoadScenarios(writeScenarios(t, `[{"requestUrl": "/"}]`))
	assert.ErrorContains(t, err, "no name")

	_, err = LoadScenarios(writeScenarios(t, `[{"name": "x"}]`))
	assert.ErrorContains(t, err, "no requestUrl")

	_, err = LoadScenarios(writeScenarios(t, `{}`))
	assert.ErrorContains(t, err, "parse")

	list, err := LoadScenarios(writeScenarios(t, `[{"name": "x", "requestUrl": "/"}]`))
	require.NoError(t, err)
	assert.Equal(t, 200, list[0].ExpectedCode)
}
