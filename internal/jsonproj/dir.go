// Package jsonproj stores the JSON projection of a BCF graph: one JSON unit
// per file in a flat directory.
package jsonproj

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"bcfkit/internal/bcferr"
)

// Ext is the file extension of every unit.
const Ext = ".json"

// DefaultIndent is used when no indent is configured.
const DefaultIndent = "  "

// Dir is a JSON projection directory.
type Dir struct {
	fs     billy.Filesystem
	root   string
	indent string
}

// Open opens an existing directory.
func Open(path, indent string) (*Dir, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "open json directory", "no such directory", nil)
		}
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "open json directory", "", err)
	}
	if !info.IsDir() {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "open json directory", "not a directory", nil)
	}
	return newDir(osfs.New(path), path, indent), nil
}

// New wraps an arbitrary filesystem; tests pass memfs.New().
func New(fsys billy.Filesystem, indent string) *Dir {
	return newDir(fsys, fsys.Root(), indent)
}

func newDir(fsys billy.Filesystem, root, indent string) *Dir {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Dir{fs: fsys, root: root, indent: indent}
}

// Root returns the directory path used in error messages.
func (d *Dir) Root() string {
	return d.root
}

// WriteUnit encodes v into <name>.json, replacing any existing unit.
func (d *Dir) WriteUnit(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", d.indent)
	if err := enc.Encode(v); err != nil {
		return bcferr.Wrap(bcferr.ErrMalformedJSON, d.root, "encode unit", name+Ext, err)
	}
	if err := util.WriteFile(d.fs, name+Ext, buf.Bytes(), 0o644); err != nil {
		return bcferr.Wrap(bcferr.ErrInvalidPath, d.root, "write unit", name+Ext, err)
	}
	return nil
}

// ReadUnit decodes a unit that must exist.
func (d *Dir) ReadUnit(name string, v any) error {
	ok, err := d.OptionalUnit(name, v)
	if err != nil {
		return err
	}
	if !ok {
		return bcferr.Wrap(bcferr.ErrMalformedJSON, d.root, "read unit", "missing required unit "+name+Ext, nil)
	}
	return nil
}

// OptionalUnit decodes a unit if present and reports whether it was.
func (d *Dir) OptionalUnit(name string, v any) (bool, error) {
	raw, ok, err := d.Raw(name)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, bcferr.Wrap(bcferr.ErrMalformedJSON, d.root, "decode unit", name+Ext, err)
	}
	return true, nil
}

// Raw returns the bytes of a unit without decoding them.
func (d *Dir) Raw(name string) ([]byte, bool, error) {
	data, err := util.ReadFile(d.fs, name+Ext)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, bcferr.Wrap(bcferr.ErrInvalidPath, d.root, "read unit", name+Ext, err)
	}
	return data, true, nil
}

// Units lists the unit names (without extension) in the directory, sorted.
func (d *Dir) Units() ([]string, error) {
	entries, err := d.fs.ReadDir("/")
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, d.root, "list units", "", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), Ext); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// TopicUnits lists every unit that is not one of the reserved shared units.
func (d *Dir) TopicUnits(reserved ...string) ([]string, error) {
	names, err := d.Units()
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		skip[name] = struct{}{}
	}
	topics := names[:0]
	for _, name := range names {
		if _, ok := skip[name]; !ok {
			topics = append(topics, name)
		}
	}
	return topics, nil
}
