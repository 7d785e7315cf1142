package optionscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lookup/internal/kinds"
)

const purgeMessageType = "lookup.options.purge"

// PurgeCommand hard deletes every record of one kind, active or not.
type PurgeCommand struct {
	Kind string `json:"kind"`
}

func (PurgeCommand) Type() string { return purgeMessageType }

func (cmd PurgeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind,
			validation.Required,
			validation.By(func(value any) error {
				key, _ := value.(string)
				if !kinds.IsBuiltin(strings.TrimSpace(key)) {
					return validation.NewError("lookup.options.purge.kind_unknown", "kind is not a known option kind")
				}
				return nil
			}),
		),
	)
}
