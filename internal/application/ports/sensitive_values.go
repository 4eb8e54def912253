package ports

import "github.com/reglet-dev/dbmatrix/internal/application/dto"

// SensitiveValueProvider collects values, such as passwords read from the
// environment during templating, that must never be printed.
type SensitiveValueProvider interface {
	Track(value string)
	AllValues() []string
}

// PropertyRedactor hides sensitive property values before they are shown.
type PropertyRedactor interface {
	RedactProperties(props []dto.Property) []dto.Property
}
