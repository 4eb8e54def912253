package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

// YAMLFormatter formats responses as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

func (f *YAMLFormatter) encode(v interface{}) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2), yaml.IndentSequence(true))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}

// FormatList writes the profile listing.
func (f *YAMLFormatter) FormatList(resp *dto.ListResponse) error { return f.encode(resp) }

// FormatResolve writes the selection outcome.
func (f *YAMLFormatter) FormatResolve(resp *dto.ResolveResponse) error { return f.encode(resp) }

// FormatProfile writes a profile description.
func (f *YAMLFormatter) FormatProfile(info *dto.ProfileInfo) error { return f.encode(info) }

// FormatPlan writes the planned test tasks.
func (f *YAMLFormatter) FormatPlan(resp *dto.PlanResponse) error { return f.encode(resp) }

// FormatValidate writes validation problems.
func (f *YAMLFormatter) FormatValidate(resp *dto.ValidateResponse) error { return f.encode(resp) }

// FormatAugment writes the augmentation outcome.
func (f *YAMLFormatter) FormatAugment(resp *dto.AugmentResponse) error { return f.encode(resp) }
