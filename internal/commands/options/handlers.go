package optionscmd

import (
	"context"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lookup/internal/commands"
	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/logging"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

const purgeOperation = "options.purge"

var _ command.Commander[PurgeCommand] = (*PurgeHandler)(nil)

// Resolver finds the binding of an enabled kind. *kinds.Registry satisfies it.
type Resolver interface {
	Lookup(key string) (*kinds.Binding, bool)
}

type PurgeHandler struct {
	inner *commands.Handler[PurgeCommand]
}

func NewPurgeHandler(resolver Resolver, logger interfaces.Logger, opts ...commands.HandlerOption[PurgeCommand]) *PurgeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PurgeCommand) error {
		key := strings.TrimSpace(msg.Kind)
		binding, ok := resolver.Lookup(key)
		if !ok {
			return fmt.Errorf("%w: %q is disabled", kinds.ErrUnknownKind, key)
		}
		removed, err := binding.Operations.HardDeleteAll(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"kind":    key,
			"removed": removed,
		}).Info("options.command.purge.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[PurgeCommand]{
		commands.WithLogger[PurgeCommand](baseLogger),
		commands.WithOperation[PurgeCommand](purgeOperation),
		commands.WithMessageFields(func(msg PurgeCommand) map[string]any {
			return map[string]any{"kind": msg.Kind}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PurgeHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *PurgeHandler) Execute(ctx context.Context, msg PurgeCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *PurgeHandler) CLIHandler() any {
	return h
}

func (h *PurgeHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"options", "purge"},
		Group:       "options",
		Description: "Hard delete every record of one option kind",
	}
}
