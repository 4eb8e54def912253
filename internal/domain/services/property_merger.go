package services

import (
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// PropertyMerger projects a profile's properties onto a target property set.
//
// Merge Semantics:
//   - every source key is inserted or overwritten in target
//   - target keys absent from source are kept
//   - changed is true only when some value actually differs
type PropertyMerger struct{}

// NewPropertyMerger creates a new property merger service.
func NewPropertyMerger() *PropertyMerger {
	return &PropertyMerger{}
}

// Merge applies source onto target and reports whether target changed.
// A nil target or source changes nothing.
func (m *PropertyMerger) Merge(target, source *entities.PropertyMap) bool {
	if target == nil {
		return false
	}
	changed := false
	source.Each(func(key, value string) {
		prev, existed := target.Set(key, value)
		if !existed || prev != value {
			changed = true
		}
	})
	return changed
}
