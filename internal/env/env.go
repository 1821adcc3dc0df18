package env

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/openhouse-api/internal/logger"
)

func Must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		logger.Log.Fatalf("missing required env %s", k)
	}
	return v
}

func Get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func GetInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// GetDuration accepts Go duration strings ("90s") or a bare number of seconds.
func GetDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return def
}

func GetBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// GetList splits on commas, semicolons and whitespace separators, dropping empties.
func GetList(k string) []string {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t':
			return true
		default:
			return false
		}
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
