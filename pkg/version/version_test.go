package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfo_String(t *testing.T) {
	t.Parallel()

	info := Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02", GoVersion: "go1.24.5", Platform: "linux/amd64"}

	out := info.String()

	assert.True(t, strings.HasPrefix(out, "phprefactor v1.2.3"))
	assert.Contains(t, out, "commit abc123")
	assert.Contains(t, out, "linux/amd64")
}
