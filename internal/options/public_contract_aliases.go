package options

import publicoptions "github.com/goliatone/go-lookup/options"

type (
	Fields                    = publicoptions.Fields
	ExecutionPeriodOption     = publicoptions.ExecutionPeriodOption
	ProcurementMethodOption   = publicoptions.ProcurementMethodOption
	BusinessCategoryOption    = publicoptions.BusinessCategoryOption
	WorkflowStageStatusOption = publicoptions.WorkflowStageStatusOption
	TenderTypeOption          = publicoptions.TenderTypeOption
	FundingSourceOption       = publicoptions.FundingSourceOption
	CountryOption             = publicoptions.CountryOption
)
