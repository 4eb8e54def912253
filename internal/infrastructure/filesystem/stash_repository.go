package filesystem

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// StashRepository persists the last resolved profile name as a one-key
// properties file.
type StashRepository struct {
	codec *PropertiesCodec
}

// NewStashRepository creates a stash repository on top of codec.
func NewStashRepository(codec *PropertiesCodec) *StashRepository {
	if codec == nil {
		codec = NewPropertiesCodec()
	}
	return &StashRepository{codec: codec}
}

// Load reads the stash at path.
// A missing file or a missing/blank key yields nil without error.
func (r *StashRepository) Load(ctx context.Context, path string) (*entities.StashRecord, error) {
	props, err := r.codec.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if props == nil {
		return nil, nil
	}

	raw, ok := props.Get(entities.StashKey)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	name, err := values.NewProfileName(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid profile stash %s: %w", path, err)
	}

	record := &entities.StashRecord{ProfileName: name}
	if info, err := os.Stat(path); err == nil {
		record.Written = info.ModTime()
	}
	return record, nil
}

// Save writes record to path, replacing any previous stash atomically.
func (r *StashRepository) Save(ctx context.Context, path string, record *entities.StashRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save empty profile stash")
	}
	props := entities.PropertyMapOf(entities.StashKey, record.ProfileName.String())
	if err := r.codec.Save(ctx, path, props, record.Comment()); err != nil {
		return fmt.Errorf("failed to write profile stash: %w", err)
	}
	return nil
}
