package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is usable before InitLogger runs; tests rely on that.
var Log = logrus.New()

// InitLogger configures the structured logger.
// mode is the gin mode: "release" switches to JSON output.
func InitLogger(level, mode, file string) {
	Log = logrus.New()

	switch level {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}

	if mode == "release" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	Log.SetOutput(out)

	Log.WithFields(logrus.Fields{"level": Log.GetLevel().String(), "file": file}).Info("Logger initialized")
}

// The helpers below log message with fields at a fixed level.

func LogInfo(message string, fields logrus.Fields) {
	Log.WithFields(fields).Info(message)
}

func LogError(message string, fields logrus.Fields) {
	Log.WithFields(fields).Error(message)
}

func LogWarn(message string, fields logrus.Fields) {
	Log.WithFields(fields).Warn(message)
}

func LogDebug(message string, fields logrus.Fields) {
	Log.WithFields(fields).Debug(message)
}
