package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	Log.SetOutput(&buf)
	Log.SetFormatter(&logrus.JSONFormatter{})
	t.Cleanup(func() { Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true}) })

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/health"`)
}

func TestAppNameHookPrefixesMessage(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.AddHook(&appNameHook{appName: "openhouse-api"})
	l.Info("hello")
	assert.Contains(t, buf.String(), "[openhouse-api] hello")
}
