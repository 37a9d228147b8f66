package jsonproj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcfkit/internal/bcferr"
)

type unit struct {
	VersionID string `json:"versionId"`
	Note      string `json:"note,omitempty"`
}

func TestUnitsRoundTrip(t *testing.T) {
	d := New(memfs.New(), "")

	require.NoError(t, d.WriteUnit("version", unit{VersionID: "3.0"}))
	require.NoError(t, d.WriteUnit("b-topic", unit{VersionID: "x", Note: "<&>"}))
	require.NoError(t, d.WriteUnit("a-topic", unit{VersionID: "y"}))

	var got unit
	require.NoError(t, d.ReadUnit("b-topic", &got))
	assert.Equal(t, unit{VersionID: "x", Note: "<&>"}, got)

	raw, ok, err := d.Raw("version")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{\n  \"versionId\": \"3.0\"\n}\n", string(raw))

	names, err := d.Units()
	require.NoError(t, err)
	assert.Equal(t, []string{"a-topic", "b-topic", "version"}, names)

	topics, err := d.TopicUnits("version", "project")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-topic", "b-topic"}, topics)
}

func TestMissingAndMalformedUnits(t *testing.T) {
	fsys := memfs.New()
	d := New(fsys, "\t")

	var got unit
	err := d.ReadUnit("version", &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, bcferr.ErrMalformedJSON)
	assert.Contains(t, err.Error(), "version.json")

	ok, err := d.OptionalUnit("project", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, util.WriteFile(fsys, "broken.json", []byte("{not json"), 0o644))
	ok, err = d.OptionalUnit("broken", &got)
	assert.True(t, ok)
	assert.ErrorIs(t, err, bcferr.ErrMalformedJSON)
}

func TestUnitsIgnoresOtherFiles(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "notes.txt", []byte("x"), 0o644))
	require.NoError(t, fsys.MkdirAll("nested.json", 0o755))
	require.NoError(t, util.WriteFile(fsys, "t1.json", []byte("{}"), 0o644))

	names, err := New(fsys, "").Units()
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, names)
}

func TestOpenAndStageOnDisk(t *testing.T) {
	base := t.TempDir()

	_, err := Open(filepath.Join(base, "missing"), "")
	assert.ErrorIs(t, err, bcferr.ErrInvalidPath)

	file := filepath.Join(base, "file.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	_, err = Open(file, "")
	assert.ErrorIs(t, err, bcferr.ErrInvalidPath)
	_, err = Stage(file, "")
	assert.ErrorIs(t, err, bcferr.ErrInvalidPath)

	target := filepath.Join(base, "out", "json")
	d, err := Stage(target, "")
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.WriteUnit("version", unit{VersionID: "2.1"}))
	assert.NoDirExists(t, target)
	require.NoError(t, d.Commit())
	assert.FileExists(t, filepath.Join(target, "version.json"))

	reopened, err := Open(target, "")
	require.NoError(t, err)
	var got unit
	require.NoError(t, reopened.ReadUnit("version", &got))
	assert.Equal(t, "2.1", got.VersionID)
}

func TestStageCommitReplacesUnitSet(t *testing.T) {
	target := filepath.Join(t.TempDir(), "json")
	require.NoError(t, os.MkdirAll(target, 0o755))
	for _, name := range []string{"version.json", "project.json", "stale-topic.json", "kept-topic.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(target, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(target, "notes.txt"), []byte("x"), 0o644))

	d, err := Stage(target, "")
	require.NoError(t, err)
	require.NoError(t, d.WriteUnit("version", unit{VersionID: "3.0"}))
	require.NoError(t, d.WriteUnit("kept-topic", unit{VersionID: "t"}))
	require.NoError(t, d.Commit())
	require.NoError(t, d.Close())

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"kept-topic.json", "notes.txt", "version.json"}, names)

	var got unit
	require.NoError(t, mustOpen(t, target).ReadUnit("version", &got))
	assert.Equal(t, "3.0", got.VersionID)

	siblings, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "staging directory left behind")
}

func TestStageCloseLeavesTargetUntouched(t *testing.T) {
	target := filepath.Join(t.TempDir(), "json")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "old-topic.json"), []byte("{}"), 0o644))

	d, err := Stage(target, "")
	require.NoError(t, err)
	require.NoError(t, d.WriteUnit("version", unit{VersionID: "2.1"}))
	require.NoError(t, d.Close())
	require.NoError(t, d.Commit())

	names, err := mustOpen(t, target).Units()
	require.NoError(t, err)
	assert.Equal(t, []string{"old-topic"}, names)

	siblings, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "staging directory left behind")
}

func mustOpen(t *testing.T, path string) *Dir {
	t.Helper()
	d, err := Open(path, "")
	require.NoError(t, err)
	return d
}
