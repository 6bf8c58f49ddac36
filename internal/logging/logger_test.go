package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	for levelStr, expected := range map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"error":   logrus.ErrorLevel,
		"fatal":   logrus.FatalLevel,
		"info":    logrus.InfoLevel,
		"trace":   logrus.TraceLevel,
		"warn":    logrus.WarnLevel,
		"WARN":    logrus.WarnLevel,
		"bla":     logrus.TraceLevel,
		"":        logrus.TraceLevel,
		"Debug":   logrus.DebugLevel,
		"INFO":    logrus.InfoLevel,
		"unknown": logrus.TraceLevel,
	} {
		assert.Equal(t, expected, GetLevel(levelStr), "level string: %s", levelStr)
	}
}
