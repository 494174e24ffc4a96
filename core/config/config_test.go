package config

import (
	"os"
	"path/filepath"
	"testing"

	"sheet-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "config", cfg.Merge.ConfigDir)
	assert.Equal(t, 50, cfg.Merge.MaxAttempts)
	assert.False(t, cfg.Merge.Upload)
	assert.Equal(t, "merged", cfg.Merge.UploadPrefix)
	assert.Equal(t, "sheets", cfg.Storage.Bucket)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MERGE_MAX_ATTEMPTS", "7")
	t.Setenv("MERGE_UPLOAD", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Merge.MaxAttempts)
	assert.True(t, cfg.Merge.Upload)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MERGE_CONFIG_DIR=sheets\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MERGE_CONFIG_DIR") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "sheets", cfg.Merge.ConfigDir)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "owners.json", `{"location": "data/owners.csv", "id_column": "APN", "id_char_count": 10}`)
	writeFile(t, dir, "contacts.yaml", "location: s3://sheets/contacts.csv\nid_column: parcel\nid_char_count: mixed\n")
	writeFile(t, dir, "leases.toml", "location = \"leases.tsv\"\nid_column = \"id\"\nid_char_count = \"6\"\n")
	writeFile(t, dir, "partial.json", `{"location": "data/owners.csv"}`)
	writeFile(t, dir, "zero.json", `{"location": "a.csv", "id_column": "id", "id_char_count": 0}`)
	writeFile(t, dir, "blank.json", `{"location": "", "id_column": "id", "id_char_count": 4}`)
	direct := writeFile(t, t.TempDir(), "direct.json", `{"location": "b.csv", "id_column": "id", "id_char_count": 3}`)

	tests := []struct {
		name    string
		arg     string
		want    reconcile.DatasetConfig
		wantKey string
	}{
		{"JSON", "owners", reconcile.DatasetConfig{Location: "data/owners.csv", IDColumn: "APN", IDCharCount: 10}, ""},
		{"YAMLMixed", "contacts", reconcile.DatasetConfig{Location: "s3://sheets/contacts.csv", IDColumn: "parcel", IDCharCount: reconcile.Mixed}, ""},
		{"TOMLStringWidth", "leases", reconcile.DatasetConfig{Location: "leases.tsv", IDColumn: "id", IDCharCount: 6}, ""},
		{"DirectPath", direct, reconcile.DatasetConfig{Location: "b.csv", IDColumn: "id", IDCharCount: 3}, ""},
		{"MissingKeys", "partial", reconcile.DatasetConfig{}, "id_column"},
		{"ZeroWidth", "zero", reconcile.DatasetConfig{}, "id_char_count"},
		{"BlankLocation", "blank", reconcile.DatasetConfig{}, "location"},
		{"NotFound", "nope", reconcile.DatasetConfig{}, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadDataset(dir, tt.arg)
			if tt.wantKey == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var cfgErr *reconcile.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.True(t, reconcile.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}
