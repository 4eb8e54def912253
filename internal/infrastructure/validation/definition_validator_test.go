package validation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionValidator_ValidateDefinition(t *testing.T) {
	t.Parallel()
	v := NewDefinitionValidator()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "full definition",
			doc: `
tool_version: ">= 0.1.0"
connection:
  dialect: org.hibernate.dialect.H2Dialect
  url: jdbc:h2:mem:db1
properties:
  hibernate.show_sql: true
  hibernate.jdbc.batch_size: 20
dependencies:
  - com.h2database:h2:2.2.224
hooks:
  before-test-task:
    - name: start
      command: [docker, compose, up, -d]
`,
		},
		{name: "empty document", doc: ""},
		{name: "null document", doc: "~\n"},
		{
			name: "numeric property values",
			doc:  "properties:\n  hibernate.jdbc.fetch_size: 18446744073709551615\n  hibernate.c3p0.timeout: 1.5\n",
		},
		{
			name:    "numeric url",
			doc:     "connection:\n  url: 42\n",
			wantErr: "/connection/url",
		},
		{
			name:    "unknown top-level key",
			doc:     "driver_jar: h2.jar\n",
			wantErr: "additionalProperties",
		},
		{
			name: "hook without command",
			doc: `
hooks:
  after-each-test:
    - name: truncate
`,
			wantErr: "/hooks/after-each-test/0",
		},
		{
			name:    "unknown hook phase",
			doc:     "hooks:\n  before-build: []\n",
			wantErr: "before-build",
		},
		{
			name:    "nested property value",
			doc:     "properties:\n  a:\n    b: c\n",
			wantErr: "/properties/a",
		},
		{
			name:    "not yaml",
			doc:     "connection: [unclosed\n",
			wantErr: "invalid YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.ValidateDefinition([]byte(tt.doc))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinitionValidator_ValidateFragment(t *testing.T) {
	t.Parallel()
	v := NewDefinitionValidator()

	require.NoError(t, v.ValidateFragment([]byte(`
profiles:
  mysql:
    connection:
      url: jdbc:mysql://localhost/test
  pgsql: {}
`)))

	err := v.ValidateFragment([]byte("profiles: {}\n"))
	assert.Error(t, err, "a fragment defines at least one profile")

	err = v.ValidateFragment([]byte("profiles:\n  mysql:\n    jdbc: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/profiles/mysql")
}

func TestDefinitionValidator_ConcurrentUse(t *testing.T) {
	t.Parallel()
	v := NewDefinitionValidator()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = v.ValidateDefinition([]byte("connection:\n  url: jdbc:h2:mem:x\n"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}
