package utils

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures the global logger from APP_ENV, LOG_LEVEL and LOG_DIR.
// In production the output goes to <LOG_DIR>/app.log, elsewhere to stdout.
func InitLogger() {
	Logger.SetReportCaller(true)

	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
		},
	})

	Logger.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))

	if os.Getenv("APP_ENV") != "production" {
		Logger.SetOutput(os.Stdout)
		return
	}

	out, err := openLogFile(GetEnv("LOG_DIR", "logs"))
	if err != nil {
		Logger.SetOutput(os.Stdout)
		Logger.WithError(err).Warn("Failed to log to file, using stdout instead")
		return
	}
	Logger.SetOutput(out)
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func openLogFile(dir string) (io.Writer, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}
