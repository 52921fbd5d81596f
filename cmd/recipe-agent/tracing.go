package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry"
	"github.com/jingkaihe/recipe-agent/pkg/version"
)

// commandTrace is the tracer provider and root span of the running command.
type commandTrace struct {
	shutdown func(context.Context) error
	span     trace.Span
}

var activeTrace commandTrace

// sensitiveFlags are never recorded as span attributes.
var sensitiveFlags = map[string]bool{"api-key": true, "token": true, "password": true}

// startTracing initializes tracing from v and opens the root span of cmd. The
// command context is replaced with one carrying the span.
func startTracing(cmd *cobra.Command, v *viper.Viper, args []string) error {
	shutdown, err := telemetry.InitTracer(cmd.Context(), telemetry.Config{
		Enabled:        v.GetBool("tracing.enabled"),
		ServiceName:    "recipe-agent",
		ServiceVersion: version.Get().Version,
		SamplerType:    v.GetString("tracing.sampler"),
		SamplerRatio:   v.GetFloat64("tracing.ratio"),
	})
	if err != nil {
		return err
	}

	attrs := []attribute.KeyValue{
		attribute.String("command.name", cmd.Name()),
		attribute.String("command.path", cmd.CommandPath()),
		attribute.Int("args.count", len(args)),
	}
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		if !sensitiveFlags[flag.Name] {
			attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
		}
	})

	ctx, span := telemetry.Tracer("recipe-agent.cli").Start(cmd.Context(), "cli.command", trace.WithAttributes(attrs...))
	cmd.SetContext(ctx)

	activeTrace = commandTrace{shutdown: shutdown, span: span}
	return nil
}

// stopTracing ends the root span with the command's outcome and flushes
// pending spans.
func stopTracing(ctx context.Context, err error) {
	if activeTrace.span != nil {
		telemetry.End(activeTrace.span, err)
		activeTrace.span.End()
	}
	if activeTrace.shutdown != nil {
		if shutdownErr := activeTrace.shutdown(ctx); shutdownErr != nil {
			logger.G(ctx).WithError(shutdownErr).Warn("failed to shut down tracing")
		}
	}
	activeTrace = commandTrace{}
}
