package kinds

import (
	"slices"

	"github.com/goliatone/go-lookup/internal/options"
)

const (
	ExecutionPeriod     = "execution_period"
	ProcurementMethod   = "procurement_method"
	BusinessCategory    = "business_category"
	WorkflowStageStatus = "workflow_stage_status"
	TenderType          = "tender_type"
	FundingSource       = "funding_source"
	Country             = "country"
)

type definition struct {
	key      string
	label    string
	register func(b *builder, def definition) error
}

var builtins = []definition{
	{key: ExecutionPeriod, label: "Execution periods", register: basic(func() *options.ExecutionPeriodOption { return &options.ExecutionPeriodOption{} })},
	{key: ProcurementMethod, label: "Procurement methods", register: basic(func() *options.ProcurementMethodOption { return &options.ProcurementMethodOption{} })},
	{key: BusinessCategory, label: "Business categories", register: basic(func() *options.BusinessCategoryOption { return &options.BusinessCategoryOption{} })},
	{key: WorkflowStageStatus, label: "Workflow stage statuses", register: basic(func() *options.WorkflowStageStatusOption { return &options.WorkflowStageStatusOption{} })},
	{key: TenderType, label: "Tender types", register: basic(func() *options.TenderTypeOption { return &options.TenderTypeOption{} })},
	{key: FundingSource, label: "Funding sources", register: basic(func() *options.FundingSourceOption { return &options.FundingSourceOption{} })},
	{key: Country, label: "Countries", register: registerCountry},
}

// Keys lists the built-in kinds in registration order.
func Keys() []string {
	keys := make([]string, len(builtins))
	for i, def := range builtins {
		keys[i] = def.key
	}
	return keys
}

func IsBuiltin(key string) bool {
	return slices.Contains(Keys(), key)
}

func basic[T options.Record](newRecord func() T) func(*builder, definition) error {
	return func(b *builder, def definition) error {
		_, err := register(b, def, options.BasicSchema(def.key, newRecord), nil)
		return err
	}
}

func registerCountry(b *builder, def definition) error {
	svc, err := register(b, def, options.CountrySchema(), func(c *options.CountryOption, attrs map[string]string) {
		c.DialCode = attrs["dial_code"]
		c.Code = attrs["code"]
	})
	if err != nil {
		return err
	}
	b.registry.countries = svc
	return nil
}
