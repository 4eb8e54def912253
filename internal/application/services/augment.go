package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/services"
)

// TestResourcesProperties is the default augmentation target, relative to the
// build directory.
var TestResourcesProperties = filepath.Join("resources", "test", "hibernate.properties")

// AugmentService projects a profile's properties into a properties file.
type AugmentService struct {
	codec  ports.PropertiesCodec
	merger *services.PropertyMerger
	logger *slog.Logger
	now    func() time.Time
}

// NewAugmentService creates a new AugmentService.
func NewAugmentService(codec ports.PropertiesCodec, logger *slog.Logger, now func() time.Time) *AugmentService {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &AugmentService{
		codec:  codec,
		merger: services.NewPropertyMerger(),
		logger: logger,
		now:    now,
	}
}

// AugmentComment returns the header written above augmented properties.
func AugmentComment(profile string, at time.Time) string {
	return fmt.Sprintf("Augmented for database profile `%s` - %s", profile, at.Format(time.DateOnly))
}

// AugmentFile merges the profile's properties into path. The file is only
// rewritten when a value changed. A missing file starts empty.
func (s *AugmentService) AugmentFile(ctx context.Context, path string, profile *entities.Profile) (*dto.AugmentResponse, error) {
	target, err := s.codec.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if target == nil {
		target = entities.NewPropertyMap()
	}

	resp := &dto.AugmentResponse{Path: path, Profile: profile.Name().String()}
	if !s.merger.Merge(target, profile.Properties()) {
		s.logger.Debug("properties file already up to date", "path", path, "profile", resp.Profile)
		return resp, nil
	}

	if err := s.codec.Save(ctx, path, target, AugmentComment(resp.Profile, s.now())); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	resp.Changed = true
	s.logger.Info("augmented properties file", "path", path, "profile", resp.Profile)
	return resp, nil
}
