package serverfx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestModuleGraph(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module(WithService("test"))))
}

func TestManifestPath(t *testing.T) {
	t.Cleanup(xdg.Reload)
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	xdg.Reload()

	cfg := defaultConfig()
	cfg.DefaultManifest = filepath.Join(t.TempDir(), "modview.toml")
	t.Setenv(cfg.ManifestEnv, "")

	// nothing exists yet
	assert.Equal(t, cfg.DefaultManifest, ManifestPath(cfg))

	userFile := filepath.Join(home, "modview", "modview.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userFile), 0o700))
	require.NoError(t, os.WriteFile(userFile, nil, 0o600))
	assert.Equal(t, userFile, ManifestPath(cfg))

	require.NoError(t, os.WriteFile(cfg.DefaultManifest, nil, 0o600))
	assert.Equal(t, cfg.DefaultManifest, ManifestPath(cfg))

	t.Setenv(cfg.ManifestEnv, "/etc/site.toml")
	assert.Equal(t, "/etc/site.toml", ManifestPath(cfg))
}
