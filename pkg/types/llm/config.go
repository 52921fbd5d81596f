package llm

// API types understood by the backend factory.
const (
	APITypeOpenAI = "openai"
	APITypeAzure  = "azure"
)

// Config holds the settings of the chat-completion and embedding backend.
type Config struct {
	APIType        string      `mapstructure:"api_type" json:"api_type" yaml:"api_type"`
	Endpoint       string      `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	APIKeyEnv      string      `mapstructure:"api_key_env" json:"api_key_env" yaml:"api_key_env"`
	APIVersion     string      `mapstructure:"api_version" json:"api_version" yaml:"api_version"`
	ChatModel      string      `mapstructure:"chat_model" json:"chat_model" yaml:"chat_model"`
	EmbeddingModel string      `mapstructure:"embedding_model" json:"embedding_model" yaml:"embedding_model"`
	Temperature    float32     `mapstructure:"temperature" json:"temperature" yaml:"temperature"`
	TopP           float32     `mapstructure:"top_p" json:"top_p" yaml:"top_p"`
	Retry          RetryConfig `mapstructure:"retry" json:"retry" yaml:"retry"`
}

// RetryConfig controls how failed backend calls are retried.
// Delays are in milliseconds.
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts" json:"attempts" yaml:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay" json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     int    `mapstructure:"max_delay" json:"max_delay" yaml:"max_delay"`
	BackoffType  string `mapstructure:"backoff_type" json:"backoff_type" yaml:"backoff_type"`
}

// DefaultRetryConfig is used when no retry section is configured.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 1000,
	MaxDelay:     10000,
	BackoffType:  "exponential",
}

// DefaultConfig returns the gpt-4o setup with temperature and top_p at 0.3.
func DefaultConfig() Config {
	return Config{
		APIType:        APITypeOpenAI,
		APIKeyEnv:      "OPENAI_API_KEY",
		APIVersion:     "2024-08-01-preview",
		ChatModel:      "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
		Temperature:    0.3,
		TopP:           0.3,
		Retry:          DefaultRetryConfig,
	}
}
