package llm

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// NewClient builds a go-openai client from configuration. The API key is read
// from the environment variable named by APIKeyEnv.
func NewClient(config llmtypes.Config) (*openai.Client, error) {
	keyEnv := config.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, errors.Errorf("%s environment variable is required", keyEnv)
	}

	clientConfig, err := clientConfigFor(config, apiKey)
	if err != nil {
		return nil, err
	}
	return openai.NewClientWithConfig(clientConfig), nil
}

func clientConfigFor(config llmtypes.Config, apiKey string) (openai.ClientConfig, error) {
	switch strings.ToLower(config.APIType) {
	case llmtypes.APITypeAzure:
		if config.Endpoint == "" {
			return openai.ClientConfig{}, errors.New("llm.endpoint is required for the azure api type")
		}
		clientConfig := openai.DefaultAzureConfig(apiKey, config.Endpoint)
		if config.APIVersion != "" {
			clientConfig.APIVersion = config.APIVersion
		}
		// Models are Azure deployment names already.
		clientConfig.AzureModelMapperFunc = func(model string) string { return model }
		return clientConfig, nil
	case llmtypes.APITypeOpenAI, "":
		clientConfig := openai.DefaultConfig(apiKey)
		if config.Endpoint != "" {
			clientConfig.BaseURL = config.Endpoint
		}
		return clientConfig, nil
	default:
		return openai.ClientConfig{}, errors.Errorf("unsupported api type %q", config.APIType)
	}
}
