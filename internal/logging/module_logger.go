package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-lookup/pkg/interfaces"
)

const (
	rootModule     = "lookup"
	optionsModule  = "lookup.options"
	exportModule   = "lookup.export"
	httpModule     = "lookup.http"
	commandsModule = "lookup.commands"
)

// ModuleLogger returns a logger scoped to module, falling back to a no-op
// logger when provider is nil. The module name is attached as the "module"
// field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// OptionsLogger returns the logger for an option kind's lifecycle service.
func OptionsLogger(provider interfaces.LoggerProvider, kind string) interfaces.Logger {
	logger := ModuleLogger(provider, optionsModule)
	if kind = strings.TrimSpace(kind); kind != "" {
		logger = WithFields(logger, map[string]any{"kind": kind})
	}
	return logger
}

// ExportLogger returns the logger for the spreadsheet export worker.
func ExportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exportModule)
}

// HTTPLogger returns the logger for the transport layer.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CommandLogger returns a logger for command handlers of the given module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return WithFields(ModuleLogger(provider, commandsModule+"."+name), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
