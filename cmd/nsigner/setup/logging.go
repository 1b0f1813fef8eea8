package setup

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger configures logrus and replaces the global zap logger so both
// write at the same level and in the same format.
func InitLogger(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	zcfg := zap.NewProductionConfig()
	switch format {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	zlvl := zapcore.InfoLevel
	switch lvl {
	case logrus.TraceLevel, logrus.DebugLevel:
		zlvl = zapcore.DebugLevel
	case logrus.WarnLevel:
		zlvl = zapcore.WarnLevel
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		zlvl = zapcore.ErrorLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(zlvl)
	logger, err := zcfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
