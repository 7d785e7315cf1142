package exportcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const regenerateMessageType = "lookup.export.regenerate"

// RegenerateCommand rebuilds the country workbook on demand.
type RegenerateCommand struct {
	// Reason is recorded in the logs, e.g. "manual" or "startup".
	Reason string `json:"reason,omitempty"`
}

func (RegenerateCommand) Type() string { return regenerateMessageType }

func (cmd RegenerateCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Reason, validation.RuneLength(0, 120)),
	)
}
