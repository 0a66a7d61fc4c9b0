package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "xmllint", c.Validator.Command)
	assert.Equal(t, 10*time.Second, c.Timeout())
	assert.Equal(t, 4, c.Format.Indent)
}

func TestLoadFullConfigProject(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	content := `
[validator]
timeout_seconds = 3
schema = "AUTOSAR_4-2-2.xsd"

[format]
indent = 2
keep_mixed_text = true

[rules]
file = "rules.cue"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	c, err := LoadFullConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "xmllint", c.Validator.Command)
	assert.Equal(t, 3*time.Second, c.Timeout())
	assert.Equal(t, "AUTOSAR_4-2-2.xsd", c.Validator.Schema)
	assert.Equal(t, 2, c.Format.Indent)
	assert.True(t, c.Format.KeepMixedText)
	assert.Equal(t, "rules.cue", c.Rules.File)
}

func TestLoadFullConfigUserThenProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	userDir := filepath.Join(home, ".config/adt")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "adt.toml"),
		[]byte("[validator]\ncommand = \"/opt/xmllint\"\ntimeout_seconds = 20\n"), 0644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte("[validator]\ntimeout_seconds = 5\n"), 0644))

	c, err := LoadFullConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/opt/xmllint", c.Validator.Command)
	assert.Equal(t, 5*time.Second, c.Timeout())
}

func TestLoadFullConfigInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[validator\n"), 0644))

	_, err := LoadFullConfig(dir)
	assert.Error(t, err)
}

func TestLoadFullConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := LoadFullConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}
