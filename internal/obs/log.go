package obs

import (
	"fmt"
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
)

var (
	loggerOnce sync.Once
	logger     *charmlog.Logger
)

// Logger returns the shared structured logger used across the service.
func Logger() *charmlog.Logger {
	loggerOnce.Do(func() {
		logger = charmlog.NewWithOptions(os.Stdout, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339Nano,
			Formatter:       charmlog.JSONFormatter,
		})
	})
	return logger
}

// Configure applies level and output format to the shared logger.
func Configure(level string, json bool) error {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("obs: log level: %w", err)
	}
	l := Logger()
	l.SetLevel(lvl)
	if json {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return nil
}

// LogRequest emits one structured entry per completed HTTP request.
func LogRequest(requestID, method, path string, status int, d time.Duration) {
	Logger().Info("request_complete",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", float64(d.Microseconds())/1000,
	)
}
