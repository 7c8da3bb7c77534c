package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerLevels(t *testing.T) {
	log := InitLogger("debug", true)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = InitLogger("not-a-level", false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestWithServiceField(t *testing.T) {
	entry := WithService("log-picker")
	assert.Equal(t, "log-picker", entry.Data["service"])
}

func TestWithOptimizationContextFields(t *testing.T) {
	entry := WithOptimizationContext("run-42", "main2024")
	assert.Equal(t, "run-42", entry.Data["optimization_id"])
	assert.Equal(t, "main2024", entry.Data["dataset"])
}

func TestWithFetchContextSkipsEmptyFields(t *testing.T) {
	entry := WithFetchContext("https://example.com/log/", "")
	assert.Equal(t, "https://example.com/log/", entry.Data["source_url"])
	assert.NotContains(t, entry.Data, "dataset")
}
