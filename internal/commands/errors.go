package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lookup/internal/options"
)

const (
	commandValidationCode   = "LOOKUP_COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "LOOKUP_COMMAND_CANCELED"
	commandContextTimeout   = "LOOKUP_COMMAND_TIMEOUT"
	commandContextErrorCode = "LOOKUP_COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "LOOKUP_COMMAND_FAILED"

	optionNotFoundCode       = "LOOKUP_OPTION_NOT_FOUND"
	optionAlreadyExistsCode  = "LOOKUP_OPTION_ALREADY_EXISTS"
	optionAlreadyDeletedCode = "LOOKUP_OPTION_ALREADY_DELETED"
	optionInvalidCode        = "LOOKUP_OPTION_INVALID"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError tags option lifecycle errors with their own text code so
// callers can branch without importing the options package.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, options.ErrInvalidArgument):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "option rejected").
			WithTextCode(optionInvalidCode)
	case errors.Is(err, options.ErrNotFound):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "option not found").
			WithTextCode(optionNotFoundCode)
	case errors.Is(err, options.ErrAlreadyExists):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "option already exists").
			WithTextCode(optionAlreadyExistsCode)
	case errors.Is(err, options.ErrAlreadyDeleted):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "option already deleted").
			WithTextCode(optionAlreadyDeletedCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapContextError(err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
