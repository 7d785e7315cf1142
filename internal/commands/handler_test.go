package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lookup/internal/options"
)

type testMessage struct{}

func (testMessage) Type() string { return "lookup.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "lookup.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerCategorisesOptionErrors(t *testing.T) {
	cases := []struct {
		err      error
		category goerrors.Category
		code     string
	}{
		{&options.NotFoundError{Kind: "country"}, goerrors.CategoryCommand, optionNotFoundCode},
		{&options.AlreadyExistsError{Kind: "country", Field: "name", Value: "Rwanda"}, goerrors.CategoryCommand, optionAlreadyExistsCode},
		{&options.AlreadyDeletedError{Kind: "country"}, goerrors.CategoryCommand, optionAlreadyDeletedCode},
		{&options.InvalidArgumentError{Kind: "country", Index: -1, Reason: "name is required"}, goerrors.CategoryValidation, optionInvalidCode},
	}
	for _, tc := range cases {
		h := NewHandler[testMessage](func(context.Context, testMessage) error { return tc.err })
		err := h.Execute(context.Background(), testMessage{})
		if !goerrors.IsCategory(err, tc.category) {
			t.Fatalf("%T: expected category %v, got %v", tc.err, tc.category, err)
		}
		var wrapped *goerrors.Error
		if !errors.As(err, &wrapped) || wrapped.TextCode != tc.code {
			t.Fatalf("%T: expected text code %s, got %v", tc.err, tc.code, err)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%T: expected original error preserved", tc.err)
		}
	}
}

func TestHandlerReportsTelemetry(t *testing.T) {
	var infos []TelemetryInfo
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithOperation[testMessage]("purge"),
		WithTelemetry[testMessage](func(_ context.Context, _ testMessage, info TelemetryInfo) {
			infos = append(infos, info)
		}),
	)
	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected one telemetry callback, got %d", len(infos))
	}
	info := infos[0]
	if info.Status != TelemetryStatusSuccess || info.Command != "lookup.test.message" || info.Operation != "purge" {
		t.Fatalf("unexpected telemetry %+v", info)
	}
	if info.Fields["operation"] != "purge" {
		t.Fatalf("expected operation field, got %v", info.Fields)
	}
}
