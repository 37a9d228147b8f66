package jsonproj

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/gofrs/flock"
	"github.com/samber/lo"

	"bcfkit/internal/bcferr"
)

// Staged collects units in a scratch directory next to the target. The
// target only changes on Commit, which makes its unit set exactly the staged
// one. Concurrent writers to the same target serialize on an advisory lock.
type Staged struct {
	*Dir
	target string
	tmp    string
	lock   *flock.Flock
	done   bool
}

// Stage prepares a projection that replaces the units under target on Commit.
// The caller must Close the result.
func Stage(target, indent string) (*Staged, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "resolve json directory", "", err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "create json directory", "target is a file", nil)
	}
	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "create json directory", "", err)
	}

	lock := flock.New(lockPath(abs))
	if err := lock.Lock(); err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "lock json directory", "", err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(abs)+".tmp-")
	if err != nil {
		_ = lock.Unlock()
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, target, "create staging directory", "", err)
	}
	return &Staged{
		Dir:    newDir(osfs.New(tmp), target, indent),
		target: abs,
		tmp:    tmp,
		lock:   lock,
	}, nil
}

// Commit moves the staged units into the target. Units already in the target
// that were not staged are removed; files that are not units are left alone.
func (s *Staged) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	defer s.release()

	if _, err := os.Stat(s.target); errors.Is(err, fs.ErrNotExist) {
		if err := os.Rename(s.tmp, s.target); err != nil {
			return bcferr.Wrap(bcferr.ErrInvalidPath, s.root, "replace json directory", "", err)
		}
		return nil
	}

	staged, err := s.Units()
	if err != nil {
		return err
	}
	existing, err := unitsOnDisk(s.target)
	if err != nil {
		return bcferr.Wrap(bcferr.ErrInvalidPath, s.root, "list units", "", err)
	}
	for _, name := range lo.Without(existing, staged...) {
		if err := os.Remove(filepath.Join(s.target, name+Ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return bcferr.Wrap(bcferr.ErrInvalidPath, s.root, "remove stale unit", name+Ext, err)
		}
	}
	for _, name := range staged {
		if err := os.Rename(filepath.Join(s.tmp, name+Ext), filepath.Join(s.target, name+Ext)); err != nil {
			return bcferr.Wrap(bcferr.ErrInvalidPath, s.root, "replace unit", name+Ext, err)
		}
	}
	return nil
}

// Close discards an uncommitted projection. It is safe to call after Commit.
func (s *Staged) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.release()
	return nil
}

func (s *Staged) release() {
	_ = os.RemoveAll(s.tmp)
	if s.lock != nil {
		_ = s.lock.Unlock()
		s.lock = nil
	}
}

func unitsOnDisk(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
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
	return names, nil
}

func lockPath(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "bcfkit-json-"+hex.EncodeToString(sum[:8])+".lock")
}
