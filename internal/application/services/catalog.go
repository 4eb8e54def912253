package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/services"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// CatalogService scans every search scope of a project into a ScopeChain.
type CatalogService struct {
	scanner ports.ProfileScanner
	logger  *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(scanner ports.ProfileScanner, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{scanner: scanner, logger: logger}
}

// SearchScopes returns the scopes of project in precedence order: the local
// databases directory, then custom directories in declaration order, then the
// ancestors' databases directories nearest first.
func SearchScopes(project *entities.Project, customDirs []string) []entities.ScopeRef {
	scopes := []entities.ScopeRef{{
		Kind:  values.ScopeLocal,
		Label: project.Path(),
		Root:  project.DatabasesDir(),
	}}

	seen := map[string]bool{project.DatabasesDir(): true}
	custom := append(SplitDirectories(strings.Join(project.SearchDirectories, ","), project.Dir), customDirs...)
	for _, dir := range custom {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		scopes = append(scopes, entities.ScopeRef{Kind: values.ScopeCustom, Label: dir, Root: dir})
	}

	for _, anc := range project.Ancestors() {
		scopes = append(scopes, entities.ScopeRef{
			Kind:  values.ScopeAncestor,
			Label: anc.Path(),
			Root:  anc.DatabasesDir(),
		})
	}
	return scopes
}

// Build scans each scope into its own registry and chains them.
// A duplicate name inside one scope is fatal.
func (s *CatalogService) Build(ctx context.Context, project *entities.Project, customDirs []string) (*services.ScopeChain, error) {
	chain := services.NewScopeChain()
	for _, scope := range SearchScopes(project, customDirs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sels, err := s.scanner.Scan(ctx, scope, scope.Root)
		if err != nil {
			return nil, fmt.Errorf("scanning %s scope: %w", scope, err)
		}

		registry := services.NewRegistry(scope)
		if err := registry.RegisterAll(sels); err != nil {
			return nil, err
		}
		s.logger.Debug("scanned profile scope",
			"scope", scope.String(),
			"root", scope.Root,
			"profiles", registry.Len())
		chain.Append(registry)
	}
	return chain, nil
}

// List summarizes the profiles of chain, filtered by req.
func (s *CatalogService) List(chain *services.ScopeChain, selected string, req dto.ListRequest) (*dto.ListResponse, error) {
	start := time.Now()

	filter := services.NewProfileFilter().WithScopeKinds(req.ScopeKinds)
	if req.FilterExpression != "" {
		program, err := services.CompileFilter(req.FilterExpression)
		if err != nil {
			return nil, err
		}
		filter.WithFilterExpression(program)
	}

	sels := chain.Effective()
	effectiveCount := len(sels)
	if req.IncludeShadowed {
		sels = append(sels, chain.Shadowed()...)
	}

	resp := &dto.ListResponse{Selected: selected}
	for i, sel := range sels {
		if ok, reason := filter.Matches(sel); !ok {
			s.logger.Debug("profile filtered", "profile", sel.Name.String(), "reason", reason)
			continue
		}
		summary := SummarizeSelector(sel)
		summary.Shadowed = i >= effectiveCount
		summary.Selected = !summary.Shadowed && sel.Name.String() == selected
		resp.Profiles = append(resp.Profiles, summary)
	}
	resp.Metadata = dto.ResponseMetadata{ProcessedAt: start, Duration: time.Since(start)}
	return resp, nil
}

// SummarizeSelector converts a selector into its listing form.
func SummarizeSelector(sel entities.Selector) dto.ProfileSummary {
	return dto.ProfileSummary{
		Name:           sel.Name.String(),
		Kind:           string(sel.Kind),
		Scope:          string(sel.Scope.Kind),
		ScopeLabel:     sel.Scope.Label,
		Directory:      sel.Directory,
		DefinitionPath: sel.DefinitionPath,
	}
}

// DescribeProfile converts a materialized profile into its full description.
func DescribeProfile(p *entities.Profile, project *entities.Project) dto.ProfileInfo {
	info := dto.ProfileInfo{
		Name:            p.Name().String(),
		Kind:            string(p.Kind()),
		Scope:           p.Origin().Scope.String(),
		Directory:       p.Directory(),
		OutputDirectory: p.OutputDirectory(project.BuildDirectory()),
		Dependencies: dto.DependencyInfo{
			Name:      p.Dependencies().Name(),
			Files:     p.Dependencies().Files(),
			Notations: p.Dependencies().Notations(),
		},
	}
	p.Properties().Each(func(k, v string) {
		info.Properties = append(info.Properties, dto.Property{Key: k, Value: v})
	})
	for _, phase := range entities.HookPhases {
		p.Hooks().Visit(phase, func(a entities.Action) {
			info.Hooks = append(info.Hooks, dto.HookInfo{
				Phase:   string(phase),
				Owner:   p.Name().String(),
				Name:    a.Name,
				Command: a.Command,
			})
		})
	}
	return info
}
