package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_FinalTextAfterRefresh(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--cite", "alpha", "--cite", "beta",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "[1] (Smith, 2020a)", "earlier render shows the refreshed suffix")
	assert.Contains(t, buf.String(), "[2] (Smith, 2020b)")
}

func TestRender_BibliographyAndCluster(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--cite", "alpha,jones", "--bibliography",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "[1] (Smith, 2020; Jones, 2021)")
	assert.Contains(t, buf.String(), "Bibliography:")
	assert.Contains(t, buf.String(), "Jones (2021). Delta.")
	assert.Contains(t, buf.String(), "Smith (2020). Alpha.")
}

func TestRender_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRenderCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--cite", "alpha", "--session", "fixed-token",
	})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fixed-token", data["session"])
}

func TestRender_UnknownEntry(t *testing.T) {
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--cite", "ghost",
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestRender_BadCiteSpec(t *testing.T) {
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--cite", "alpha@",
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "empty locator")
}

func TestRender_LogsSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cites.db")
	cmd := NewRenderCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--cite", "alpha", "--cite", "beta",
		"--db", dbPath, "--session", "draft-1",
	})

	require.NoError(t, cmd.Execute())

	// The logged session replays deterministically.
	buf := &bytes.Buffer{}
	replay := NewReplayCommand(&RootOptions{Format: "text"})
	replay.SetOut(buf)
	replay.SetErr(&bytes.Buffer{})
	replay.SetArgs([]string{
		"testdata/author-year.cue", "testdata/smith.yaml",
		"--db", dbPath,
	})

	require.NoError(t, replay.Execute())
	assert.Contains(t, buf.String(), "draft-1: 2 event(s), ok")
}

func TestParseCiteSpec(t *testing.T) {
	testCases := []struct {
		name    string
		spec    string
		items   int
		wantErr string
	}{
		{name: "single id", spec: "alpha", items: 1},
		{name: "cluster", spec: "alpha, beta", items: 2},
		{name: "locator", spec: "alpha@12", items: 1},
		{name: "empty item", spec: "alpha,,beta", wantErr: "empty item"},
		{name: "missing id", spec: "@12", wantErr: "missing entry id"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := parseCiteSpec(tc.spec)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tc.items)
		})
	}
}

func TestParseCiteSpec_LocatorLabelDefaultsToPage(t *testing.T) {
	items, err := parseCiteSpec("alpha@12")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "12", items[0].Locator)
	assert.Equal(t, "page", items[0].LocatorLabel)
}
