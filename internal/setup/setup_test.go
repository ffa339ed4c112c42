package setup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/inputkit/internal/config"
)

func testEnv(vars map[string]string, uinputErr error) Env {
	return Env{
		Getenv:          func(k string) string { return vars[k] },
		Geteuid:         func() int { return 1000 },
		Stat:            os.Stat,
		UInputAvailable: func(string) error { return uinputErr },
	}
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig
	cfg.Journal.Path = filepath.Join(dir, "journal.db")
	path := filepath.Join(dir, "inputkit.toml")
	require.NoError(t, os.WriteFile(path, nil, 0600))
	return &cfg, path
}

func find(t *testing.T, r Report, name string) Check {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		vars        map[string]string
		uinputErr   error
		wantOK      bool
		recommended string
	}{
		{
			name:        "x11 with uinput",
			vars:        map[string]string{"DISPLAY": ":0"},
			wantOK:      true,
			recommended: config.BackendRobot,
		},
		{
			name:        "wayland only with uinput",
			vars:        map[string]string{"WAYLAND_DISPLAY": "wayland-1"},
			wantOK:      false,
			recommended: config.BackendUInput,
		},
		{
			name:        "nothing available",
			uinputErr:   errors.New("permission denied"),
			wantOK:      false,
			recommended: config.BackendRobot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, path := testConfig(t)
			r := Run(testEnv(tt.vars, tt.uinputErr), cfg, path)
			assert.Equal(t, tt.wantOK, r.OK())
			assert.Equal(t, tt.recommended, r.Recommended)
		})
	}
}

func TestChecks(t *testing.T) {
	t.Run("uinput failure carries hint", func(t *testing.T) {
		cfg, path := testConfig(t)
		r := Run(testEnv(map[string]string{"DISPLAY": ":0"}, errors.New("permission denied")), cfg, path)

		c := find(t, r, "uinput access")
		assert.False(t, c.OK)
		assert.Equal(t, "permission denied", c.Detail)
		assert.Contains(t, c.Hint, "modprobe uinput")
		assert.Contains(t, c.Hint, cfg.Engine.UInputPath)
	})

	t.Run("wayland session explains robot limits", func(t *testing.T) {
		cfg, path := testConfig(t)
		r := Run(testEnv(map[string]string{"WAYLAND_DISPLAY": "wayland-1"}, nil), cfg, path)

		c := find(t, r, "X11 display")
		assert.False(t, c.OK)
		assert.Contains(t, c.Detail, "wayland-1")
		assert.Contains(t, c.Hint, "uinput")
	})

	t.Run("missing config file", func(t *testing.T) {
		cfg, _ := testConfig(t)
		r := Run(testEnv(map[string]string{"DISPLAY": ":0"}, nil), cfg, filepath.Join(t.TempDir(), "missing.toml"))

		c := find(t, r, "config file")
		assert.False(t, c.OK)
		assert.Contains(t, c.Hint, "config init")
	})

	t.Run("missing journal directory is fine", func(t *testing.T) {
		cfg, path := testConfig(t)
		cfg.Journal.Path = filepath.Join(t.TempDir(), "sub", "journal.db")
		r := Run(testEnv(map[string]string{"DISPLAY": ":0"}, nil), cfg, path)

		c := find(t, r, "journal directory")
		assert.True(t, c.OK)
		assert.Contains(t, c.Detail, "will be created")
	})

	t.Run("journal parent is a file", func(t *testing.T) {
		cfg, path := testConfig(t)
		cfg.Journal.Path = filepath.Join(path, "journal.db")
		r := Run(testEnv(map[string]string{"DISPLAY": ":0"}, nil), cfg, path)

		c := find(t, r, "journal directory")
		assert.False(t, c.OK)
		assert.Contains(t, c.Detail, "not a directory")
	})
}

func TestApplyBackendRejectsUnknown(t *testing.T) {
	err := ApplyBackend("wayland")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
