// Package config loads recipe-agent settings from defaults, an optional YAML
// config file, .env files and environment variables.
package config

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/skills"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// EnvPrefix is prepended to every environment override, e.g.
// RECIPE_AGENT_LLM_CHAT_MODEL.
const EnvPrefix = "RECIPE_AGENT"

// Store backends.
const (
	StoreBackendJSON   = "json"
	StoreBackendBolt   = "bbolt"
	StoreBackendSQLite = "sqlite"
)

// DefaultKitchenIngredients is the inventory reported by the kitchen skill
// when none is configured.
var DefaultKitchenIngredients = skills.DefaultKitchenIngredients

// Config is the complete application configuration.
type Config struct {
	LLM     llmtypes.Config `mapstructure:"llm"`
	Store   StoreConfig     `mapstructure:"store"`
	Prompts PromptsConfig   `mapstructure:"prompts"`
	Kitchen KitchenConfig   `mapstructure:"kitchen"`
	Log     LogConfig       `mapstructure:"log"`
	Tracing TracingConfig   `mapstructure:"tracing"`
}

// StoreConfig selects where recipes are persisted.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// PromptsConfig points at a directory whose templates override the embedded
// ones. Empty means embedded templates only.
type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// KitchenConfig lists what is available in the kitchen.
type KitchenConfig struct {
	Ingredients []string `mapstructure:"ingredients"`
}

// LogConfig controls the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig controls OpenTelemetry tracing. The OTLP endpoint and headers
// come from the standard OTEL_EXPORTER_OTLP_* environment variables.
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Sampler string  `mapstructure:"sampler"`
	Ratio   float64 `mapstructure:"ratio"`
}

// legacyEnv maps configuration keys to the unprefixed environment variable
// names also accepted for them.
var legacyEnv = map[string]string{
	"llm.endpoint":        "OPENAI_ENDPOINT",
	"llm.chat_model":      "GPT4O_MODEL_DEPLOYMENT_NAME",
	"llm.embedding_model": "TEXT_EMBEDDING_MODEL_DEPLOYMENT_NAME",
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	llm := llmtypes.DefaultConfig()
	v.SetDefault("llm.api_type", llm.APIType)
	v.SetDefault("llm.endpoint", llm.Endpoint)
	v.SetDefault("llm.api_key_env", llm.APIKeyEnv)
	v.SetDefault("llm.api_version", llm.APIVersion)
	v.SetDefault("llm.chat_model", llm.ChatModel)
	v.SetDefault("llm.embedding_model", llm.EmbeddingModel)
	v.SetDefault("llm.temperature", llm.Temperature)
	v.SetDefault("llm.top_p", llm.TopP)
	v.SetDefault("llm.retry.attempts", llm.Retry.Attempts)
	v.SetDefault("llm.retry.initial_delay", llm.Retry.InitialDelay)
	v.SetDefault("llm.retry.max_delay", llm.Retry.MaxDelay)
	v.SetDefault("llm.retry.backoff_type", llm.Retry.BackoffType)

	v.SetDefault("store.backend", StoreBackendJSON)
	v.SetDefault("store.path", "./recipes.json")
	v.SetDefault("prompts.dir", "")
	v.SetDefault("kitchen.ingredients", DefaultKitchenIngredients)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatText)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampler", telemetry.SamplerRatio)
	v.SetDefault("tracing.ratio", 1.0)
}

// InitViper wires defaults, environment variables and config file lookup into
// v. It does not read the config file.
func InitViper(v *viper.Viper) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		modern := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, modern, legacy); err != nil {
			return errors.Wrapf(err, "failed to bind environment for %s", key)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.recipe-agent")
	v.AddConfigPath(".")
	return nil
}

// ReadInConfig reads the config file if one exists. A missing file is not an
// error.
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment without overriding variables that are already set. Missing files
// are skipped.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			logger.L.WithField("file", file).Debug("no dotenv file loaded")
		}
	}
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if config.LLM.Retry.Attempts == 0 {
		config.LLM.Retry = llmtypes.DefaultRetryConfig
	}
	if len(config.Kitchen.Ingredients) == 0 {
		config.Kitchen.Ingredients = append([]string(nil), DefaultKitchenIngredients...)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	switch strings.ToLower(c.LLM.APIType) {
	case llmtypes.APITypeOpenAI, "":
	case llmtypes.APITypeAzure:
		if c.LLM.Endpoint == "" {
			result = multierror.Append(result, errors.New("llm.endpoint is required when llm.api_type is azure"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("llm.api_type %q is not one of openai, azure", c.LLM.APIType))
	}
	if c.LLM.ChatModel == "" {
		result = multierror.Append(result, errors.New("llm.chat_model must not be empty"))
	}
	if c.LLM.EmbeddingModel == "" {
		result = multierror.Append(result, errors.New("llm.embedding_model must not be empty"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		result = multierror.Append(result, errors.Errorf("llm.temperature %v is outside [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		result = multierror.Append(result, errors.Errorf("llm.top_p %v is outside [0, 1]", c.LLM.TopP))
	}
	if c.LLM.Retry.Attempts < 1 {
		result = multierror.Append(result, errors.Errorf("llm.retry.attempts must be at least 1, got %d", c.LLM.Retry.Attempts))
	}
	switch c.LLM.Retry.BackoffType {
	case "fixed", "exponential":
	default:
		result = multierror.Append(result, errors.Errorf("llm.retry.backoff_type %q is not one of fixed, exponential", c.LLM.Retry.BackoffType))
	}

	switch c.Store.Backend {
	case StoreBackendJSON, StoreBackendBolt, StoreBackendSQLite:
	default:
		result = multierror.Append(result, errors.Errorf("store.backend %q is not one of json, bbolt, sqlite", c.Store.Backend))
	}
	if c.Store.Path == "" {
		result = multierror.Append(result, errors.New("store.path must not be empty"))
	}

	switch c.Log.Format {
	case logger.FormatText, logger.FormatJSON, "text", "":
	default:
		result = multierror.Append(result, errors.Errorf("log.format %q is not one of fmt, json", c.Log.Format))
	}

	switch c.Tracing.Sampler {
	case telemetry.SamplerAlways, telemetry.SamplerNever, telemetry.SamplerRatio, "":
	default:
		result = multierror.Append(result, errors.Errorf("tracing.sampler %q is not one of always, never, ratio", c.Tracing.Sampler))
	}
	if c.Tracing.Ratio < 0 || c.Tracing.Ratio > 1 {
		result = multierror.Append(result, errors.Errorf("tracing.ratio %v is outside [0, 1]", c.Tracing.Ratio))
	}

	return result.ErrorOrNil()
}
