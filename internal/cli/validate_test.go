package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllInputsValid(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/author-year.cue", "testdata/smith.yaml"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `OK: style "author-year", 3 entries, locale en-US`)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	badStyle := filepath.Join(dir, "bad.cue")
	badEntries := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badStyle, []byte(`style: {name: "x"}`), 0o644))
	require.NoError(t, os.WriteFile(badEntries, []byte("entries:\n  - type: book\n"), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{badStyle, badEntries})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 validation error(s)", "both inputs are checked")
}

func TestValidate_BadLocale(t *testing.T) {
	badLocale := filepath.Join(t.TempDir(), "locale.yaml")
	require.NoError(t, os.WriteFile(badLocale, []byte("locale:\n  months: [Jan]\n"), 0o644))

	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/author-year.cue", "testdata/smith.yaml", "--locale", badLocale})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
