package logger

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type appNameHook struct {
	appName string
}

func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// Init configures Log for the named app. LOG_LEVEL selects the level (default info).
func Init(appName string) {
	Log.SetOutput(os.Stdout)

	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		Log.Warnf("invalid LOG_LEVEL %q, defaulting to info", levelStr)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Log.AddHook(&appNameHook{appName})
}

// Middleware writes one access log line per request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"bytes":    ww.BytesWritten(),
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
