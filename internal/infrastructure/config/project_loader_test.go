package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

func writeDescriptor(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, entities.DescriptorFile), []byte(content), 0o600))
}

func TestProjectLoader_Hierarchy(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()

	writeDescriptor(t, filepath.Join(tmp, "outside"), "name: outside\n")
	top := filepath.Join(tmp, "outside", "repo")
	writeDescriptor(t, top, "name: repo\nroot: true\ndefault_profile: pgsql\n")
	// no descriptor in modules/: skipped during the walk
	child := filepath.Join(top, "modules", "core")
	writeDescriptor(t, child, `
build_dir: target
search_directories: [../../shared-dbs]
properties:
  database_profile_name: mysql
  retries: 3
hooks:
  before-test-task:
    - command: [docker, compose, up]
`)

	project, err := NewProjectLoader(nil).Load(context.Background(), child)
	require.NoError(t, err)

	assert.Equal(t, "core", project.Name, "name defaults to the directory name")
	assert.Equal(t, filepath.Join(child, "target"), project.BuildDirectory())
	assert.Equal(t, []string{"../../shared-dbs"}, project.SearchDirectories)
	assert.Equal(t, "mysql", project.Properties["database_profile_name"])
	assert.Equal(t, "3", project.Properties["retries"])

	var hooks []entities.Action
	project.Hooks.VisitBeforeTestTask(func(a entities.Action) { hooks = append(hooks, a) })
	require.Len(t, hooks, 1)
	assert.Equal(t, child, hooks[0].Dir)
	assert.Equal(t, "before-test-task-1", hooks[0].Name)

	ancestors := project.Ancestors()
	require.Len(t, ancestors, 1, "walk stops at root: true")
	assert.Equal(t, "repo", ancestors[0].Name)
	assert.Equal(t, "pgsql", ancestors[0].DefaultProfile)
	assert.Equal(t, ":core", project.Path())
}

func TestProjectLoader_NoDescriptor(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	project, err := NewProjectLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "plain", project.Name)
	assert.Equal(t, ":", project.Path())
	assert.Equal(t, filepath.Join(dir, "databases"), project.DatabasesDir())
}

func TestProjectLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown field", content: "profile_dir: x\n", wantErr: "profile_dir"},
		{name: "unknown hook phase", content: "hooks:\n  before-build:\n    - command: [echo]\n", wantErr: "unknown hook phases"},
		{name: "hook without command", content: "hooks:\n  after-test-task:\n    - name: x\n", wantErr: "command is required"},
		{name: "nested property", content: "properties:\n  a:\n    b: c\n", wantErr: "must be a scalar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeDescriptor(t, dir, tt.content+"root: true\n")

			_, err := NewProjectLoader(nil).Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := NewProjectLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDecodeDescriptor_Empty(t *testing.T) {
	desc, err := DecodeDescriptor(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, &ProjectDescriptor{}, desc)
}
