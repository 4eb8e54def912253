package services

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/services"
)

// ValidateService materializes every discovered definition, shadowed ones
// included, and reports all failures together.
type ValidateService struct {
	materializer ports.ProfileMaterializer
	logger       *slog.Logger
}

// NewValidateService creates a new ValidateService.
func NewValidateService(materializer ports.ProfileMaterializer, logger *slog.Logger) *ValidateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateService{materializer: materializer, logger: logger}
}

// Validate checks every selector of chain. The returned error joins every
// failure and is nil when all definitions are well formed.
func (s *ValidateService) Validate(ctx context.Context, chain *services.ScopeChain) (*dto.ValidateResponse, error) {
	start := time.Now()

	var sels []entities.Selector
	for _, r := range chain.Registries() {
		sels = append(sels, r.Selectors()...)
	}

	// each goroutine writes only its own slot
	problems := make([]*dto.ValidationProblem, len(sels))
	errs := make([]error, len(sels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sel := range sels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := sel.Materialize(s.materializer); err != nil {
				errs[i] = err
				problems[i] = &dto.ValidationProblem{
					Profile: sel.Name.String(),
					Scope:   sel.Scope.String(),
					Path:    locationOf(sel),
					Message: err.Error(),
				}
				s.logger.Debug("invalid profile definition", "profile", sel.Name.String(), "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.ValidateResponse{Checked: len(sels)}
	for _, p := range problems {
		if p != nil {
			resp.Problems = append(resp.Problems, *p)
		}
	}
	resp.Metadata = dto.ResponseMetadata{ProcessedAt: start, Duration: time.Since(start)}
	return resp, errors.Join(errs...)
}

func locationOf(sel entities.Selector) string {
	if sel.DefinitionPath != "" {
		return sel.DefinitionPath
	}
	return sel.Directory
}
