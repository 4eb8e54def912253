// Package filesystem provides file-backed adapters for .properties files
// and the profile stash.
package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// PropertiesCodec reads and writes Java-style .properties files.
// ${...} expansion is disabled: values are stored as written.
type PropertiesCodec struct{}

// NewPropertiesCodec creates a new codec.
func NewPropertiesCodec() *PropertiesCodec {
	return &PropertiesCodec{}
}

// Load reads the file at path into an ordered map.
// If the file does not exist, it returns nil without error.
func (c *PropertiesCodec) Load(_ context.Context, path string) (*entities.PropertyMap, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}
	return DecodeProperties(data, path)
}

// Save writes props to path behind a header comment.
// The file is replaced atomically.
func (c *PropertiesCodec) Save(_ context.Context, path string, props *entities.PropertyMap, comment string) error {
	data, err := EncodeProperties(props, comment)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

// DecodeProperties parses .properties content. path is only used in errors.
func DecodeProperties(data []byte, path string) (*entities.PropertyMap, error) {
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse properties file %s: %w", path, err)
	}

	out := entities.NewPropertyMap()
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		out.Set(key, value)
	}
	return out, nil
}

// EncodeProperties renders props in insertion order.
func EncodeProperties(props *entities.PropertyMap, comment string) ([]byte, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true

	var setErr error
	props.Each(func(key, value string) {
		if setErr != nil {
			return
		}
		if _, _, err := p.Set(key, value); err != nil {
			setErr = fmt.Errorf("failed to set property %s: %w", key, err)
		}
	})
	if setErr != nil {
		return nil, setErr
	}

	var buf bytes.Buffer
	for _, line := range strings.Split(comment, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			buf.WriteString("# " + line + "\n")
		}
	}
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, fmt.Errorf("failed to encode properties: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, creating parent directories first.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	//nolint:gosec // G301: build output directories are world-readable
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op once renamed
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
