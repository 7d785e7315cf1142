package exportcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lookup/internal/commands"
	"github.com/goliatone/go-lookup/internal/export"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

const regenerateOperation = "export.regenerate"

var ErrExportDisabled = errors.New("export command: exporter not configured")

var _ command.Commander[RegenerateCommand] = (*RegenerateHandler)(nil)

// Regenerator is satisfied by *export.Worker.
type Regenerator interface {
	Regenerate(ctx context.Context) (*export.Result, error)
}

// DefaultRegenerateCron rebuilds the workbook nightly even when no change
// event reached the worker.
const DefaultRegenerateCron = "@daily"

type RegenerateHandler struct {
	inner      *commands.Handler[RegenerateCommand]
	cronConfig command.HandlerConfig
}

func NewRegenerateHandler(exporter Regenerator, logger interfaces.Logger, opts ...commands.HandlerOption[RegenerateCommand]) *RegenerateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RegenerateCommand) error {
		if exporter == nil {
			return ErrExportDisabled
		}
		result, err := exporter.Regenerate(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"key":  result.Key,
			"rows": result.Rows,
		}).Info("export.command.regenerate.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RegenerateCommand]{
		commands.WithLogger[RegenerateCommand](baseLogger),
		commands.WithOperation[RegenerateCommand](regenerateOperation),
		commands.WithMessageFields(func(msg RegenerateCommand) map[string]any {
			if msg.Reason == "" {
				return nil
			}
			return map[string]any{"reason": msg.Reason}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RegenerateHandler{
		inner:      commands.NewHandler(exec, handlerOpts...),
		cronConfig: command.HandlerConfig{Expression: DefaultRegenerateCron},
	}
}

func (h *RegenerateHandler) Execute(ctx context.Context, msg RegenerateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *RegenerateHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), RegenerateCommand{Reason: "cron"})
	}
}

func (h *RegenerateHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

func (h *RegenerateHandler) CLIHandler() any {
	return h
}

func (h *RegenerateHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"export", "regenerate"},
		Group:       "export",
		Description: "Rebuild the country workbook and write it to the configured sink",
	}
}
