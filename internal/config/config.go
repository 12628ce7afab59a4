// Package config loads run, logging and API settings from the environment,
// with an optional YAML file for the run parameters.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"

	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Run     RunConfig
	Logging LogConfig
	API     APIConfig
}

// RunConfig holds the parameters of a pipeline run.
type RunConfig struct {
	Producers         int    `envconfig:"PIPELINE_PRODUCERS" default:"3"`
	ValuesPerProducer int    `envconfig:"PIPELINE_VALUES_PER_PRODUCER" default:"500"`
	Consumers         int    `envconfig:"PIPELINE_CONSUMERS" default:"10"`
	ValuesPerConsumer int    `envconfig:"PIPELINE_VALUES_PER_CONSUMER" default:"150"`
	OutputFile        string `envconfig:"PIPELINE_OUTPUT_FILE" default:"result_output.txt"`
	SummaryFile       string `envconfig:"PIPELINE_SUMMARY_FILE"`
	TransportCapacity int    `envconfig:"PIPELINE_TRANSPORT_CAPACITY" default:"4096"`
	ProduceInterval   string `envconfig:"PIPELINE_PRODUCE_INTERVAL" default:"1ms"`
	Seed              uint64 `envconfig:"PIPELINE_SEED" default:"0"`
	Overlap           bool   `envconfig:"PIPELINE_OVERLAP" default:"false"`
	ConfigFile        string `envconfig:"PIPELINE_CONFIG_FILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// APIConfig holds HTTP API configuration.
type APIConfig struct {
	Addr      string `envconfig:"API_ADDR" default:":8080"`
	DBPath    string `envconfig:"DB_PATH" default:"pipeline.db"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"outputs"`
}

// Load loads configuration from environment variables, then applies the
// YAML run file named by PIPELINE_CONFIG_FILE. Keys present in the file win.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, model.NewError(model.KindConfiguration, "config.env", fmt.Errorf("failed to load config: %w", err))
	}
	if cfg.Run.ConfigFile != "" {
		if err := cfg.Run.applyFile(cfg.Run.ConfigFile); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	spec := model.DefaultRunSpec()
	return &Config{
		Run: RunConfig{
			Producers:         spec.Producers,
			ValuesPerProducer: spec.ValuesPerProducer,
			Consumers:         spec.Consumers,
			ValuesPerConsumer: spec.ValuesPerConsumer,
			OutputFile:        spec.OutputFile,
			TransportCapacity: spec.TransportCapacity,
			ProduceInterval:   spec.ProduceInterval,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		API: APIConfig{
			Addr:      ":8080",
			DBPath:    "pipeline.db",
			OutputDir: "outputs",
		},
	}
}

// LoggerConfig picks the logger preset; LOG_DEV selects the development one.
// LOG_LEVEL applies to both.
func (c LogConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Development {
		cfg = logging.DevelopmentConfig()
	}
	if c.Level != "" {
		cfg.Level = c.Level
	}
	return cfg
}

// Spec converts the run configuration into a run spec
func (c RunConfig) Spec() model.RunSpec {
	return model.RunSpec{
		Producers:         c.Producers,
		ValuesPerProducer: c.ValuesPerProducer,
		Consumers:         c.Consumers,
		ValuesPerConsumer: c.ValuesPerConsumer,
		OutputFile:        c.OutputFile,
		SummaryFile:       c.SummaryFile,
		TransportCapacity: c.TransportCapacity,
		ProduceInterval:   c.ProduceInterval,
		Seed:              c.Seed,
		Overlap:           c.Overlap,
	}
}

// Validate checks the run parameters; failures are configuration errors
func (c *Config) Validate() error {
	return c.Run.Spec().Validate()
}

func (c *RunConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.NewError(model.KindConfiguration, "config.file", fmt.Errorf("failed to read %s: %w", path, err))
	}

	spec := c.Spec()
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return model.NewError(model.KindConfiguration, "config.file", fmt.Errorf("failed to parse %s: %w", path, err))
	}

	c.Producers = spec.Producers
	c.ValuesPerProducer = spec.ValuesPerProducer
	c.Consumers = spec.Consumers
	c.ValuesPerConsumer = spec.ValuesPerConsumer
	c.OutputFile = spec.OutputFile
	c.SummaryFile = spec.SummaryFile
	c.TransportCapacity = spec.TransportCapacity
	c.ProduceInterval = spec.ProduceInterval
	c.Seed = spec.Seed
	c.Overlap = spec.Overlap
	return nil
}
