package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipebook.yaml")
	yml := `
data_dir: /srv/recipes
base_url: https://recipes.example.org/
store:
  backend: sqlite
  path: /var/lib/recipebook/kv.db
timing:
  view_debounce: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("RECIPEBOOK_LOG__LEVEL", "verbose")
	t.Setenv("RECIPEBOOK_LANGUAGES", "no, pb, en")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/recipes", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 3*time.Second, cfg.Timing.ViewDebounce)
	assert.Equal(t, 10*time.Second, cfg.Timing.ResortDebounce)
	assert.Equal(t, "verbose", cfg.Log.Level)
	assert.Equal(t, []string{"no", "pb", "en"}, cfg.Languages)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Store.Backend = "redis" }},
		{"default not supported", func(c *Config) { c.DefaultLanguage = "sv" }},
		{"no languages", func(c *Config) { c.Languages = nil }},
		{"bad url", func(c *Config) { c.BaseURL = "not a url" }},
		{"negative debounce", func(c *Config) { c.Timing.ViewDebounce = -time.Second }},
		{"bad collation", func(c *Config) { c.Collation["no"] = "???" }},
		{"file store without path", func(c *Config) { c.Store.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCollationTag(t *testing.T) {
	cfg := Default()
	assert.Equal(t, language.MustParse("nn"), cfg.CollationTag("no"))
	assert.Equal(t, language.Und, cfg.CollationTag("xx"))
}

func TestNorwegianCollationPutsAEAfterZ(t *testing.T) {
	c := collate.New(Default().CollationTag("no"))
	assert.Equal(t, 1, c.CompareString("Ærtesuppe", "Tacos"))
	assert.Equal(t, 1, c.CompareString("Ørret", "Zucchini"))
	assert.Equal(t, -1, c.CompareString("Eplekake", "Fiskesuppe"))
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "store.backend", envTransformFunc("RECIPEBOOK_STORE__BACKEND"))
	assert.Equal(t, "data_dir", envTransformFunc("RECIPEBOOK_DATA_DIR"))
}
