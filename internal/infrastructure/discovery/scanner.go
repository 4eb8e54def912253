package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

// Recognized layout names.
const (
	// DriverDirectory holds a directory profile's driver artifacts.
	DriverDirectory = "jdbc"
	// PropertiesFile holds a directory profile's connection properties.
	PropertiesFile = "hibernate.properties"
	// ResourcesDirectory may hold the properties file of a rich profile.
	ResourcesDirectory = "resources"
	// DefaultFragmentSuffix marks a multi-profile definition file.
	DefaultFragmentSuffix = ".profiles.yaml"
)

// DefaultMarkerFiles are the rich definition file names, in lookup order.
var DefaultMarkerFiles = []string{"profile.yaml", "profile.yml"}

// ScanOptions configures the scanner.
type ScanOptions struct {
	// MarkerFiles overrides DefaultMarkerFiles.
	MarkerFiles []string
	// FragmentSuffix overrides DefaultFragmentSuffix.
	FragmentSuffix string
	// Resilient logs and skips malformed fragments instead of failing the scan.
	Resilient bool
}

// Scanner walks search roots and yields a selector per profile definition.
// It never writes to the filesystem and never resolves name conflicts.
type Scanner struct {
	loader *DefinitionLoader
	logger *slog.Logger
	opts   ScanOptions
}

// NewScanner creates a scanner.
func NewScanner(loader *DefinitionLoader, opts ScanOptions, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.MarkerFiles) == 0 {
		opts.MarkerFiles = DefaultMarkerFiles
	}
	if opts.FragmentSuffix == "" {
		opts.FragmentSuffix = DefaultFragmentSuffix
	}
	return &Scanner{loader: loader, logger: logger, opts: opts}
}

// Scan visits every root's children recursively. Missing or unreadable roots
// are skipped. Selectors are tagged with scope.
func (s *Scanner) Scan(ctx context.Context, scope entities.ScopeRef, roots ...string) ([]entities.Selector, error) {
	w := &walk{
		scanner: s,
		scope:   scope,
		visited: make(map[string]bool),
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			s.logger.Debug("skipping missing search root", "scope", scope.String(), "root", root)
			continue
		}
		if err := w.children(ctx, root); err != nil {
			return nil, err
		}
	}
	return w.found, nil
}

// walk carries the state of one Scan call.
type walk struct {
	scanner *Scanner
	visited map[string]bool
	scope   entities.ScopeRef
	found   []entities.Selector
}

func (w *walk) children(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		if w.visited[real] {
			return nil
		}
		w.visited[real] = true
	}

	// os.ReadDir sorts by name; unreadable directories count as absent
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.scanner.logger.Debug("skipping unreadable directory", "dir", dir, "error", err)
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			if info.Mode().IsRegular() && w.isFragment(entry.Name()) {
				if err := w.fragment(path); err != nil {
					return err
				}
			}
			continue
		}

		if kind, defPath, ok := w.scanner.classify(path); ok {
			w.add(path, kind, defPath)
			continue
		}
		if err := w.children(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) isFragment(name string) bool {
	suffix := w.scanner.opts.FragmentSuffix
	return strings.HasSuffix(name, suffix) && len(name) > len(suffix)
}

func (w *walk) add(dir string, kind values.ProfileKind, defPath string) {
	name, err := values.NewProfileName(filepath.Base(dir))
	if err != nil {
		w.scanner.logger.Warn("ignoring profile directory with invalid name", "dir", dir, "error", err)
		return
	}
	w.found = append(w.found, entities.Selector{
		Scope:          w.scope,
		Name:           name,
		Kind:           kind,
		Directory:      dir,
		DefinitionPath: defPath,
	})
}

// fragment parses a multi-profile file during the scan.
func (w *walk) fragment(path string) error {
	frag, err := w.scanner.loader.LoadFragment(path)
	if err == nil {
		err = w.addFragment(path, frag)
	}
	if err == nil {
		return nil
	}

	malformed := entities.NewMalformedDefinitionError(path, "", err)
	if w.scanner.opts.Resilient {
		w.scanner.logger.Warn("skipping malformed profile fragment", "path", path, "error", err)
		return nil
	}
	return malformed
}

func (w *walk) addFragment(path string, frag *Fragment) error {
	sels := make([]entities.Selector, 0, len(frag.Profiles))
	for _, raw := range frag.Names() {
		name, err := values.NewProfileName(raw)
		if err != nil {
			return err
		}
		sels = append(sels, entities.Selector{
			Scope:          w.scope,
			Name:           name,
			Kind:           values.KindFragment,
			Directory:      filepath.Dir(path),
			DefinitionPath: path,
		})
	}
	w.found = append(w.found, sels...)
	return nil
}

// classify reports whether dir is a profile directory.
// A rich definition wins over the flat layouts.
func (s *Scanner) classify(dir string) (values.ProfileKind, string, bool) {
	for _, marker := range s.opts.MarkerFiles {
		path := filepath.Join(dir, marker)
		if isRegularFile(path) {
			return values.KindMarkerFile, path, true
		}
	}

	if isDir(filepath.Join(dir, DriverDirectory)) {
		return values.KindDirectory, directoryPropertiesFile(dir), true
	}
	if path := filepath.Join(dir, PropertiesFile); isRegularFile(path) {
		return values.KindDirectory, path, true
	}
	return "", "", false
}

// directoryPropertiesFile returns the properties file of a directory
// profile, or "" when it has none.
func directoryPropertiesFile(dir string) string {
	for _, path := range []string{
		filepath.Join(dir, DriverDirectory, PropertiesFile),
		filepath.Join(dir, PropertiesFile),
	} {
		if isRegularFile(path) {
			return path
		}
	}
	return ""
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
