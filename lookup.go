package lookup

import (
	"context"
	"net/http"

	exportcmd "github.com/goliatone/go-lookup/internal/commands/export"
	optionscmd "github.com/goliatone/go-lookup/internal/commands/options"
	"github.com/goliatone/go-lookup/internal/di"
	"github.com/goliatone/go-lookup/internal/export"
	"github.com/goliatone/go-lookup/internal/kinds"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/goliatone/go-lookup/pkg/interfaces"
)

// Kind keys of the built-in option tables.
const (
	KindExecutionPeriod     = kinds.ExecutionPeriod
	KindProcurementMethod   = kinds.ProcurementMethod
	KindBusinessCategory    = kinds.BusinessCategory
	KindWorkflowStageStatus = kinds.WorkflowStageStatus
	KindTenderType          = kinds.TenderType
	KindFundingSource       = kinds.FundingSource
	KindCountry             = kinds.Country
)

var (
	ErrNotFound        = options.ErrNotFound
	ErrAlreadyExists   = options.ErrAlreadyExists
	ErrAlreadyDeleted  = options.ErrAlreadyDeleted
	ErrInvalidArgument = options.ErrInvalidArgument
)

type (
	// Operations is the lifecycle contract shared by every kind.
	Operations = options.Operations
	Record     = options.Record

	KindDescriptor = kinds.Descriptor

	// CountryService is the typed service behind the country kind.
	CountryService = *options.Service[*options.CountryOption]

	ExportResult = export.Result

	ChangeEvent      = interfaces.ChangeEvent
	ChangeSubscriber = interfaces.ChangeSubscriber

	RegenerateExportCommand = exportcmd.RegenerateCommand
	PurgeKindCommand        = optionscmd.PurgeCommand

	NotFoundError        = options.NotFoundError
	AlreadyExistsError   = options.AlreadyExistsError
	AlreadyDeletedError  = options.AlreadyDeletedError
	InvalidArgumentError = options.InvalidArgumentError
)

// Module represents the top level lookup runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a lookup module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Start creates tables when configured, inserts seeds and starts the country
// export worker.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Start(ctx)
}

// Close stops the export worker.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// RegisterRoutes mounts the options API on mux.
func (m *Module) RegisterRoutes(mux *http.ServeMux) error {
	return m.container.RegisterRoutes(mux)
}

// Kind returns the lifecycle operations for an enabled kind.
func (m *Module) Kind(key string) (Operations, bool) {
	binding, ok := m.container.Registry().Lookup(key)
	if !ok {
		return nil, false
	}
	return binding.Operations, true
}

// Kinds describes the enabled kinds in registration order.
func (m *Module) Kinds() []KindDescriptor {
	return m.container.Registry().Descriptors()
}

// Countries returns the typed country service, nil when the kind is disabled.
func (m *Module) Countries() CountryService {
	return m.container.Registry().Countries()
}

// Changes publishes a ChangeEvent after every successful mutation.
func (m *Module) Changes() ChangeSubscriber {
	return m.container.Broadcaster()
}

// RegenerateExport rebuilds the country workbook synchronously.
func (m *Module) RegenerateExport(ctx context.Context) (*ExportResult, error) {
	exporter := m.container.Exporter()
	if exporter == nil {
		return nil, exportcmd.ErrExportDisabled
	}
	return exporter.Regenerate(ctx)
}

// LastExport returns the most recent workbook written, nil before the first
// or when export is disabled.
func (m *Module) LastExport() *ExportResult {
	exporter := m.container.Exporter()
	if exporter == nil {
		return nil
	}
	return exporter.Last()
}
