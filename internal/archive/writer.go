package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/renameio"

	"bcfkit/internal/bcferr"
	"bcfkit/internal/logging"
)

// ErrDuplicateEntry is returned when an entry name is written twice.
var ErrDuplicateEntry = errors.New("duplicate archive entry")

// Writer emits archive entries. It is not safe for concurrent use; callers
// serialize writes to one container.
type Writer struct {
	target  string
	zw      *zip.Writer
	pending *renameio.PendingFile
	lock    *flock.Flock
	written map[string]struct{}
	shared  map[string][sha256.Size]byte
	logger  *slog.Logger
	done    bool
}

// Create prepares an archive that replaces path on Commit. Concurrent writers
// targeting the same path serialize on an advisory lock.
func Create(target string) (*Writer, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "resolve target", "", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "create target directory", "", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "create archive", "target is a directory", nil)
	}

	lock := flock.New(lockPath(abs))
	if err := lock.Lock(); err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "lock target", "", err)
	}
	pending, err := renameio.TempFile(dir, abs)
	if err != nil {
		_ = lock.Unlock()
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "create temp file", "", err)
	}
	_ = pending.Chmod(0o644)
	return &Writer{
		target:  target,
		zw:      zip.NewWriter(pending),
		pending: pending,
		lock:    lock,
		written: make(map[string]struct{}),
		shared:  make(map[string][sha256.Size]byte),
	}, nil
}

// NewWriter streams an archive into w. Commit finishes the zip directory but
// does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		target:  "<stream>",
		zw:      zip.NewWriter(w),
		written: make(map[string]struct{}),
		shared:  make(map[string][sha256.Size]byte),
	}
}

// SetLogger sets the logger that receives warnings about shared entries.
func (w *Writer) SetLogger(logger *slog.Logger) {
	w.logger = logger
}

// WriteFile adds one entry. Names use forward slashes relative to the root.
func (w *Writer) WriteFile(name string, data []byte) error {
	if w.done {
		return fmt.Errorf("archive %s: write after commit", w.target)
	}
	entry := normalize(name)
	if entry == "" || entry == ".." || strings.HasPrefix(entry, "../") {
		return bcferr.Wrap(bcferr.ErrInvalidPath, w.target, "write entry", fmt.Sprintf("invalid entry name %q", name), nil)
	}
	if _, dup := w.written[entry]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry)
	}
	fw, err := w.zw.CreateHeader(&zip.FileHeader{Name: entry, Method: zip.Deflate})
	if err != nil {
		return bcferr.Wrap(bcferr.ErrInvalidPath, w.target, "write entry", entry, err)
	}
	if _, err := fw.Write(data); err != nil {
		return bcferr.Wrap(bcferr.ErrInvalidPath, w.target, "write entry", entry, err)
	}
	w.written[entry] = struct{}{}
	return nil
}

// Entry is one prepared archive entry. Shared entries (documents referenced
// from several topics) tolerate being emitted more than once; the first copy
// wins and a differing later copy is reported as a warning.
type Entry struct {
	Name   string
	Data   []byte
	Shared bool
}

// WriteEntries writes entries in order.
func (w *Writer) WriteEntries(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		err := w.WriteFile(e.Name, e.Data)
		switch {
		case err == nil:
			if e.Shared {
				w.shared[normalize(e.Name)] = sha256.Sum256(e.Data)
			}
		case e.Shared && errors.Is(err, ErrDuplicateEntry):
			w.checkShared(ctx, e)
		default:
			return err
		}
	}
	return nil
}

func (w *Writer) checkShared(ctx context.Context, e Entry) {
	name := normalize(e.Name)
	first, ok := w.shared[name]
	if !ok {
		return
	}
	if sum := sha256.Sum256(e.Data); bytes.Equal(sum[:], first[:]) {
		return
	}
	logging.WarnWithContext(ctx, w.logger, "shared entry differs from first copy", "duplicate_document",
		logging.String("entry", name),
		logging.String(logging.FieldErrorHint, "two topics reference one document with different contents; only the first is kept"),
	)
}

// WriteTopic adds an entry inside the folder of topicID.
func (w *Writer) WriteTopic(topicID, name string, data []byte) error {
	return w.WriteFile(path.Join(topicID, name), data)
}

// Entries returns the number of entries written so far.
func (w *Writer) Entries() int {
	return len(w.written)
}

// Commit finalizes the archive and, for file targets, atomically replaces the
// target and releases the lock.
func (w *Writer) Commit() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.unlock()
	if err := w.zw.Close(); err != nil {
		w.discard()
		return bcferr.Wrap(bcferr.ErrInvalidPath, w.target, "finalize archive", "", err)
	}
	if w.pending == nil {
		return nil
	}
	if err := w.pending.CloseAtomicallyReplace(); err != nil {
		w.discard()
		return bcferr.Wrap(bcferr.ErrInvalidPath, w.target, "replace target", "", err)
	}
	w.pending = nil
	return nil
}

// Close discards an uncommitted archive. It is safe to call after Commit.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.unlock()
	_ = w.zw.Close()
	w.discard()
	return nil
}

func (w *Writer) discard() {
	if w.pending != nil {
		_ = w.pending.Cleanup()
		w.pending = nil
	}
}

func (w *Writer) unlock() {
	if w.lock != nil {
		_ = w.lock.Unlock()
		w.lock = nil
	}
}

// lockPath keeps lock files out of the target directory.
func lockPath(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "bcfkit-"+hex.EncodeToString(sum[:8])+".lock")
}
