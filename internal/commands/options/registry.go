package optionscmd

import (
	"errors"

	"github.com/goliatone/go-lookup/internal/commands"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

type CommandRegistry interface {
	RegisterCommand(handler any) error
}

type HandlerSet struct {
	Purge *PurgeHandler
}

type Option func(*config)

type config struct {
	purgeOpts []commands.HandlerOption[PurgeCommand]
}

func WithPurgeHandlerOptions(opts ...commands.HandlerOption[PurgeCommand]) Option {
	return func(cfg *config) {
		cfg.purgeOpts = append(cfg.purgeOpts, opts...)
	}
}

func RegisterOptionCommands(reg CommandRegistry, resolver Resolver, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if resolver == nil {
		return nil, errors.New("options command registration: resolver is nil")
	}
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	purge := NewPurgeHandler(resolver, logging.CommandLogger(provider, "options"), cfg.purgeOpts...)
	if reg != nil {
		if err := reg.RegisterCommand(purge); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{Purge: purge}, nil
}
