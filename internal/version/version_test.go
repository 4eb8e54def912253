package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info{Version: "1.4.0", Commit: "abc123", BuildDate: "2026-02-03", GoVersion: "go1.25.5", Platform: "linux/amd64"}
	assert.Equal(t, "1.4.0", info.String())
	assert.Equal(t, "1.4.0 (abc123) built 2026-02-03 go1.25.5 linux/amd64", info.Full())
	assert.True(t, info.IsRelease())

	assert.Equal(t, "1.4.0", info.Semantic().String())

	assert.False(t, Info{Version: "dev"}.IsRelease())
	assert.Nil(t, Info{Version: "dev"}.Semantic())
	assert.NotEmpty(t, Get().GoVersion)
}
