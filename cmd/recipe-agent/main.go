package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jingkaihe/recipe-agent/pkg/config"
	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "recipe-agent",
	Short: "A cooking assistant backed by a chat model and a recipe store",
	Long: `recipe-agent answers cooking questions with a chat model that can search a
recipe store, check the kitchen, make recipes vegan and write shopping lists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(viper.GetViper(), configFile); err != nil {
			return err
		}
		return startTracing(cmd, viper.GetViper(), args)
	},
}

var configFile string

// initConfig loads .env files and the config file into v and configures the
// logger from the result.
func initConfig(v *viper.Viper, file string) error {
	config.LoadDotEnv()

	if file != "" {
		v.SetConfigFile(file)
	}
	if err := config.ReadInConfig(v); err != nil {
		return err
	}

	return logger.Configure(logger.Options{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	})
}

func init() {
	if err := config.InitViper(viper.GetViper()); err != nil {
		logger.L.WithError(err).Fatal("failed to initialize configuration")
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default $HOME/.recipe-agent/config.yaml or ./config.yaml)")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", logger.FormatText, "Log format (fmt or json)")
	flags.String("chat-model", "", "Chat model or Azure deployment name (overrides config)")
	flags.String("embedding-model", "", "Embedding model or Azure deployment name (overrides config)")
	flags.String("store-backend", "", "Recipe store backend (json, bbolt or sqlite)")
	flags.String("store-path", "", "Recipe store file")
	flags.String("prompts-dir", "", "Directory of prompt templates overriding the built-in ones")
	flags.Bool("tracing-enabled", false, "Enable OpenTelemetry tracing over OTLP/HTTP")
	flags.String("tracing-sampler", "ratio", "Tracing sampler type (always, never, ratio)")
	flags.Float64("tracing-ratio", 1, "Sampling ratio when using the ratio sampler")

	bindings := map[string]string{
		"log.level":           "log-level",
		"log.format":          "log-format",
		"llm.chat_model":      "chat-model",
		"llm.embedding_model": "embedding-model",
		"store.backend":       "store-backend",
		"store.path":          "store-path",
		"prompts.dir":         "prompts-dir",
		"tracing.enabled":     "tracing-enabled",
		"tracing.sampler":     "tracing-sampler",
		"tracing.ratio":       "tracing-ratio",
	}
	if err := bindFlags(viper.GetViper(), flags, bindings); err != nil {
		logger.L.WithError(err).Fatal("failed to bind flags")
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlags binds each config key to the flag of the given name.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			return errors.Errorf("flag --%s is not defined", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "failed to bind --%s to %s", name, key)
		}
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	stopTracing(context.Background(), err)
	if err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
