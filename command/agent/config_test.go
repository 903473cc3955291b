package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fedcloud/catalogd/ci"
	"github.com/stretchr/testify/require"
)

func TestConfig_Merge(t *testing.T) {
	ci.Parallel(t)

	base := DefaultConfig()
	out := base.Merge(&Config{
		LogLevel: "WARN",
		HTTPPort: 9999,
	})

	require.Equal(t, "WARN", out.LogLevel)
	require.Equal(t, 9999, out.HTTPPort)
	require.Equal(t, "0.0.0.0", out.BindAddr)
	require.False(t, out.EnableDebug)

	// The receiver is left untouched.
	require.Equal(t, "INFO", base.LogLevel)
	require.Equal(t, 4646, base.HTTPPort)

	out = base.Merge(&Config{EnableDebug: true, LogJson: true})
	require.True(t, out.EnableDebug)
	require.True(t, out.LogJson)
}

func TestConfig_HTTPAddr(t *testing.T) {
	ci.Parallel(t)

	require.Equal(t, "0.0.0.0:4646", DefaultConfig().HTTPAddr())
	require.Equal(t, "127.0.0.1:4646", DevConfig().HTTPAddr())
}

func TestConfig_DevConfig(t *testing.T) {
	ci.Parallel(t)

	conf := DevConfig()
	require.Equal(t, "DEBUG", conf.LogLevel)
	require.True(t, conf.EnableDebug)
}

func TestParseConfigFile(t *testing.T) {
	ci.Parallel(t)

	path := filepath.Join(t.TempDir(), "agent.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level  = "WARN"
log_json   = true
bind_addr  = "10.0.0.5"
http_port  = 8080
`), 0o644))

	conf, err := ParseConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "WARN", conf.LogLevel)
	require.True(t, conf.LogJson)
	require.Equal(t, "10.0.0.5", conf.BindAddr)
	require.Equal(t, 8080, conf.HTTPPort)

	// Fields absent from the file stay zero so Merge does not clobber the
	// defaults.
	require.False(t, conf.EnableDebug)

	_, err = ParseConfigFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}
