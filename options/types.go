package options

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Fields holds the columns every option table shares. A nil DeletedAt marks
// the record as active.
type Fields struct {
	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description *string    `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"deleted_at"`
}

// OptionFields exposes the shared columns of any record embedding Fields.
func (f *Fields) OptionFields() *Fields { return f }

// Active reports whether the record has not been soft deleted.
func (f *Fields) Active() bool { return f.DeletedAt == nil }

// ExecutionPeriodOption is a contract execution period (e.g. "12 months").
type ExecutionPeriodOption struct {
	bun.BaseModel `bun:"table:execution_period_options,alias:o"`
	Fields
}

// ProcurementMethodOption is a procurement method (e.g. "Open Tender").
type ProcurementMethodOption struct {
	bun.BaseModel `bun:"table:procurement_method_options,alias:o"`
	Fields
}

type BusinessCategoryOption struct {
	bun.BaseModel `bun:"table:business_category_options,alias:o"`
	Fields
}

type WorkflowStageStatusOption struct {
	bun.BaseModel `bun:"table:workflow_stage_status_options,alias:o"`
	Fields
}

type TenderTypeOption struct {
	bun.BaseModel `bun:"table:tender_type_options,alias:o"`
	Fields
}

type FundingSourceOption struct {
	bun.BaseModel `bun:"table:funding_source_options,alias:o"`
	Fields
}

// CountryOption adds the international dial code ("+250") and the ISO 3166
// alpha-2 code ("RW") to the shared columns.
type CountryOption struct {
	bun.BaseModel `bun:"table:country_options,alias:o"`
	Fields

	DialCode string `bun:"dial_code,notnull" json:"dial_code"`
	Code     string `bun:"code,notnull" json:"code"`
}
