package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
)

// JSONFormatter formats responses as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

func (f *JSONFormatter) encode(v interface{}) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = f.writer.Write(data)
	return err
}

// FormatList writes the profile listing.
func (f *JSONFormatter) FormatList(resp *dto.ListResponse) error { return f.encode(resp) }

// FormatResolve writes the selection outcome.
func (f *JSONFormatter) FormatResolve(resp *dto.ResolveResponse) error { return f.encode(resp) }

// FormatProfile writes a profile description.
func (f *JSONFormatter) FormatProfile(info *dto.ProfileInfo) error { return f.encode(info) }

// FormatPlan writes the planned test tasks.
func (f *JSONFormatter) FormatPlan(resp *dto.PlanResponse) error { return f.encode(resp) }

// FormatValidate writes validation problems.
func (f *JSONFormatter) FormatValidate(resp *dto.ValidateResponse) error { return f.encode(resp) }

// FormatAugment writes the augmentation outcome.
func (f *JSONFormatter) FormatAugment(resp *dto.AugmentResponse) error { return f.encode(resp) }
