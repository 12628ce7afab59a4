package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sample-pipeline/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Run.Producers)
	assert.Equal(t, 500, cfg.Run.ValuesPerProducer)
	assert.Equal(t, 10, cfg.Run.Consumers)
	assert.Equal(t, 150, cfg.Run.ValuesPerConsumer)
	assert.Equal(t, "result_output.txt", cfg.Run.OutputFile)
	assert.Equal(t, 4096, cfg.Run.TransportCapacity)
	assert.Equal(t, "1ms", cfg.Run.ProduceInterval)
	assert.False(t, cfg.Run.Overlap)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "pipeline.db", cfg.API.DBPath)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Run.Spec(), cfg.Run.Spec())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PIPELINE_PRODUCERS":           "5",
		"PIPELINE_VALUES_PER_PRODUCER": "10",
		"PIPELINE_CONSUMERS":           "1",
		"PIPELINE_VALUES_PER_CONSUMER": "0",
		"PIPELINE_OUTPUT_FILE":         "avg.txt",
		"PIPELINE_SEED":                "42",
		"PIPELINE_OVERLAP":             "true",
		"PIPELINE_PRODUCE_INTERVAL":    "0",
		"LOG_LEVEL":                    "debug",
		"LOG_DEV":                      "true",
		"API_ADDR":                     ":9000",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	spec := cfg.Run.Spec()
	assert.Equal(t, 5, spec.Producers)
	assert.Equal(t, 10, spec.ValuesPerProducer)
	assert.Equal(t, 1, spec.Consumers)
	assert.True(t, spec.DrainMode())
	assert.Equal(t, "avg.txt", spec.OutputFile)
	assert.Equal(t, uint64(42), spec.Seed)
	assert.True(t, spec.Overlap)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, ":9000", cfg.API.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedNumber(t *testing.T) {
	t.Setenv("PIPELINE_PRODUCERS", "many")
	_, err := Load()
	assert.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}

func TestLoadAppliesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := "producers: 2\nvaluesPerProducer: 6\nconsumers: 3\nvaluesPerConsumer: 4\nseed: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("PIPELINE_CONFIG_FILE", path)
	t.Setenv("PIPELINE_OUTPUT_FILE", "from-env.txt")

	cfg, err := Load()
	require.NoError(t, err)

	spec := cfg.Run.Spec()
	assert.Equal(t, 2, spec.Producers)
	assert.Equal(t, 6, spec.ValuesPerProducer)
	assert.Equal(t, 3, spec.Consumers)
	assert.Equal(t, 4, spec.ValuesPerConsumer)
	assert.Equal(t, uint64(7), spec.Seed)
	// keys absent from the file keep their environment value
	assert.Equal(t, "from-env.txt", spec.OutputFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingYAMLFile(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}

func TestValidateMismatchedTotals(t *testing.T) {
	cfg := Default()
	cfg.Run.Consumers = 9
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConfiguration))
}

func TestLoggerConfig(t *testing.T) {
	prod := LogConfig{Level: "warn"}.LoggerConfig()
	assert.False(t, prod.Development)
	assert.Equal(t, "warn", prod.Level)
	assert.Equal(t, []string{"stderr"}, prod.OutputPaths)

	dev := LogConfig{Development: true}.LoggerConfig()
	assert.True(t, dev.Development)
	assert.Equal(t, "debug", dev.Level)

	dev = LogConfig{Level: "info", Development: true}.LoggerConfig()
	assert.True(t, dev.Development)
	assert.Equal(t, "info", dev.Level)
}
