package options

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	dialCodePattern    = regexp.MustCompile(`^\+[0-9]{1,4}$`)
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

	errDialCodeFormat = validation.NewError("validation_dial_code_format", "must be a plus sign followed by 1 to 4 digits")
	errCountryCode    = validation.NewError("validation_country_code_format", "must be two uppercase letters")
)

// CountrySchema adds dial code and ISO code rules and uniqueness to the
// shared option columns.
func CountrySchema() Schema[*CountryOption] {
	return Schema[*CountryOption]{
		Kind:  "country",
		New:   func() *CountryOption { return &CountryOption{} },
		Scope: ScopeAll,
		Unique: []UniqueKey[*CountryOption]{
			{Field: "dial_code", Column: "dial_code", Value: func(c *CountryOption) string { return c.DialCode }},
			{Field: "code", Column: "code", Value: func(c *CountryOption) string { return c.Code }},
		},
		Normalize: func(c *CountryOption) {
			c.DialCode = strings.TrimSpace(c.DialCode)
			c.Code = strings.TrimSpace(c.Code)
		},
		Validate: func(c *CountryOption) validation.Errors {
			return validation.Errors{
				"dial_code": validation.Validate(c.DialCode, validation.Required, validation.Match(dialCodePattern).ErrorObject(errDialCodeFormat)),
				"code":      validation.Validate(c.Code, validation.Required, validation.Match(countryCodePattern).ErrorObject(errCountryCode)),
			}
		},
		Assign: func(dst, src *CountryOption) {
			dst.DialCode = src.DialCode
			dst.Code = src.Code
		},
		Columns: []string{"dial_code", "code"},
	}
}
