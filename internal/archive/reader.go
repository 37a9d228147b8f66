package archive

import (
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"bcfkit/internal/bcferr"
)

// MarkupEntry is the per-topic entry that marks a folder as a topic.
const MarkupEntry = "markup.bcf"

// Reader gives random access to the entries of a BCF archive.
type Reader struct {
	path   string
	closer io.Closer
	files  map[string]*zip.File
	topics []*Folder
}

// Folder is one topic directory inside an archive.
type Folder struct {
	ID string
	r  *Reader
}

// Open opens the archive at path. The caller must Close the reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "open archive", "no such file", nil)
		}
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "open archive", "", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "stat archive", "", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, path, "open archive", "is a directory", nil)
	}
	r, err := newReader(f, info.Size(), path)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader indexes the archive behind ra without taking ownership of it.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	return newReader(ra, size, "<stream>")
}

func newReader(ra io.ReaderAt, size int64, name string) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrMalformedArchive, name, "open archive", "", err)
	}
	r := &Reader{path: name, files: make(map[string]*zip.File, len(zr.File))}
	seen := make(map[string]bool)
	for _, f := range zr.File {
		entry := normalize(f.Name)
		if entry == "" || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if _, dup := r.files[entry]; dup {
			continue
		}
		r.files[entry] = f
		dir, base := path.Split(entry)
		dir = strings.TrimSuffix(dir, "/")
		if base == MarkupEntry && dir != "" && !strings.Contains(dir, "/") && !seen[dir] {
			seen[dir] = true
			r.topics = append(r.topics, &Folder{ID: dir, r: r})
		}
	}
	sort.Slice(r.topics, func(i, j int) bool { return r.topics[i].ID < r.topics[j].ID })
	return r, nil
}

// Path returns the file path the reader was opened from, or "<stream>".
func (r *Reader) Path() string {
	return r.path
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Topics returns the topic folders sorted by name.
func (r *Reader) Topics() []*Folder {
	out := make([]*Folder, len(r.topics))
	copy(out, r.topics)
	return out
}

// Required reads an entry that must exist.
func (r *Reader) Required(name string) ([]byte, error) {
	data, ok, err := r.Optional(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, bcferr.Wrap(bcferr.ErrMalformedArchive, r.path, "read entry", "missing required entry "+name, nil)
	}
	return data, nil
}

// Optional reads an entry that may be absent. A missing entry yields
// (nil, false, nil).
func (r *Reader) Optional(name string) ([]byte, bool, error) {
	f, ok := r.files[normalize(name)]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, bcferr.Wrap(bcferr.ErrMalformedArchive, r.path, "open entry", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, bcferr.Wrap(bcferr.ErrMalformedArchive, r.path, "read entry", name, err)
	}
	return data, true, nil
}

// ReadPath reads an arbitrary entry such as documents/<guid>.
func (r *Reader) ReadPath(name string) ([]byte, bool, error) {
	return r.Optional(name)
}

// Has reports whether the archive holds an entry.
func (r *Reader) Has(name string) bool {
	_, ok := r.files[normalize(name)]
	return ok
}

// Name returns the folder name, which is the topic GUID.
func (f *Folder) Name() string {
	return f.ID
}

// Read reads an entry relative to the folder. References that climb out of
// the folder ("../documents/a.pdf") resolve against the archive root.
func (f *Folder) Read(name string) ([]byte, bool, error) {
	entry, ok := f.Resolve(name)
	if !ok {
		return nil, false, nil
	}
	return f.r.Optional(entry)
}

// Resolve maps a folder-relative reference to an archive entry name. It
// reports false for references that escape the archive root.
func (f *Folder) Resolve(name string) (string, bool) {
	return Resolve(f.ID, name)
}

// Names lists the entries of the folder, relative to it, sorted.
func (f *Folder) Names() []string {
	prefix := f.ID + "/"
	var names []string
	for entry := range f.r.files {
		if rest, ok := strings.CutPrefix(entry, prefix); ok {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve joins a folder-relative reference onto folder and cleans it.
func Resolve(folder, name string) (string, bool) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if name == "" {
		return "", false
	}
	var joined string
	if strings.HasPrefix(name, "/") {
		joined = path.Clean(strings.TrimPrefix(name, "/"))
	} else {
		joined = path.Clean(path.Join(folder, name))
	}
	if joined == "." || joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	return joined, true
}

func normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}
