package exportcmd

import (
	"strings"

	"github.com/goliatone/go-lookup/internal/commands"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract used when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

type HandlerSet struct {
	Regenerate *RegenerateHandler
}

type Option func(*config)

type config struct {
	regenerateOpts []commands.HandlerOption[RegenerateCommand]
	cronExpression string
}

func WithRegenerateHandlerOptions(opts ...commands.HandlerOption[RegenerateCommand]) Option {
	return func(cfg *config) {
		cfg.regenerateOpts = append(cfg.regenerateOpts, opts...)
	}
}

// WithRegenerateCron overrides DefaultRegenerateCron.
func WithRegenerateCron(expression string) Option {
	return func(cfg *config) {
		cfg.cronExpression = strings.TrimSpace(expression)
	}
}

// RegisterExportCommands builds the export handlers and registers them with
// reg when it is non-nil.
func RegisterExportCommands(reg CommandRegistry, exporter Regenerator, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := logging.CommandLogger(provider, "export")
	regenerate := NewRegenerateHandler(exporter, logger, cfg.regenerateOpts...)
	if cfg.cronExpression != "" {
		regenerate.cronConfig.Expression = cfg.cronExpression
	}

	if reg != nil {
		if err := reg.RegisterCommand(regenerate); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{Regenerate: regenerate}, nil
}
