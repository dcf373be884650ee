package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nljewellers/ledger/pkg/config"
)

func TestDefaultPurityConfig(t *testing.T) {
	cfg := config.DefaultPurityConfig()

	assert.Equal(t, []string{"916", "750", "585", "999", "925"}, cfg.Codes())

	p, ok := cfg.Get("916")
	require.True(t, ok)
	assert.Equal(t, "22K", p.Label)
	assert.Equal(t, 0.916, p.Fineness)
	assert.Equal(t, "gold", p.Metal)

	p, ok = cfg.Get("925")
	require.True(t, ok)
	assert.Equal(t, "silver", p.Metal)

	assert.True(t, cfg.IsValidCode("750"))
	assert.False(t, cfg.IsValidCode("833"))
}

func TestLoadPurityConfig(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "purities.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("Empty_Path_Uses_Defaults", func(t *testing.T) {
		cfg, err := config.LoadPurityConfig("")
		require.NoError(t, err)
		assert.True(t, cfg.IsValidCode("916"))
	})

	t.Run("Valid_File", func(t *testing.T) {
		path := writeFile(t, `
purities:
  - code: "833"
    label: "20K"
    fineness: 0.833
    metal: gold
`)
		cfg, err := config.LoadPurityConfig(path)
		require.NoError(t, err)

		f, ok := cfg.Fineness("833")
		require.True(t, ok)
		assert.Equal(t, 0.833, f)
		assert.False(t, cfg.IsValidCode("916"), "file replaces the defaults, it does not merge")
	})

	t.Run("Missing_File", func(t *testing.T) {
		_, err := config.LoadPurityConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Empty_Table_Rejected", func(t *testing.T) {
		path := writeFile(t, "purities: []\n")
		_, err := config.LoadPurityConfig(path)
		assert.Error(t, err)
	})

	t.Run("Fineness_Out_Of_Range_Rejected", func(t *testing.T) {
		path := writeFile(t, `
purities:
  - code: "916"
    fineness: 91.6
`)
		_, err := config.LoadPurityConfig(path)
		assert.Error(t, err)
	})
}
