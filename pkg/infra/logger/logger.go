package logger

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const logDir = "logs"

// Closer flushes the asynchronous log sinks. It is returned alongside the
// logger so main can defer it.
type Closer func()

func NewLogger(serverType string) (*logrus.Logger, Closer) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(levelFromEnv())

	if serverType == "" {
		serverType = "gateway"
	}
	logFile := filepath.Clean(filepath.Join(logDir, serverType+".log"))
	if !strings.HasPrefix(logFile, logDir+string(filepath.Separator)) {
		log.Fatalf("Invalid log file path: must be in %s directory", logDir)
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		log.Fatalf("Failed to create logs directory: %v", err)
	}

	asyncWriter, err := NewAsyncFileWriter(logFile, 32*1024)
	if err != nil {
		log.Fatalf("Failed to initialize async log writer: %v", err)
	}
	logger.SetOutput(asyncWriter)

	consoleHook := NewAsyncConsoleHook(1024)
	logger.AddHook(consoleHook)

	return logger, func() {
		consoleHook.Close()
		asyncWriter.Close()
	}
}

func levelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
