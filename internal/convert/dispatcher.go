package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bcfkit/internal/bcferr"
	"bcfkit/internal/logging"
	"bcfkit/internal/model"
	"bcfkit/internal/version"
)

// Dispatcher routes conversions to the strategy of the detected generation.
// It is safe for concurrent use.
type Dispatcher struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	strategy Strategy
}

// New returns an unresolved dispatcher.
func New(opts Options) *Dispatcher {
	return &Dispatcher{opts: opts, logger: opts.ComponentLogger("dispatcher")}
}

// NewForVersion returns a dispatcher bound to v.
func NewForVersion(v version.Version, opts Options) (*Dispatcher, error) {
	d := New(opts)
	if _, err := d.resolve(v, ""); err != nil {
		return nil, err
	}
	return d, nil
}

// Version returns the bound generation, or version.Unknown.
func (d *Dispatcher) Version() version.Version {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.strategy == nil {
		return version.Unknown
	}
	return d.strategy.Version()
}

// resolve binds the dispatcher to v on first use and returns its strategy.
func (d *Dispatcher) resolve(v version.Version, source string) (Strategy, error) {
	factory, ok := strategies[v]
	if !ok {
		return nil, bcferr.Wrap(bcferr.ErrUnsupportedVersion, source, "select converter", "unknown generation "+v.String(), nil)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.strategy != nil {
		if bound := d.strategy.Version(); bound != v {
			return nil, &bcferr.VersionMismatchError{Path: source, Detected: v.String(), Requested: bound.String()}
		}
		return d.strategy, nil
	}
	d.strategy = factory(d.opts)
	d.logger.Debug("dispatcher bound", logging.BcfVersion(v.String()), logging.Path(source))
	return d.strategy, nil
}

type sourceKind int

const (
	kindArchive sourceKind = iota + 1
	kindJSON
)

var archiveExts = []string{".bcfzip", ".bcf", ".zip"}

var zipSignature = []byte("PK\x03\x04")

// classify reports whether source is an archive file or a JSON directory.
func classify(source string) (sourceKind, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, bcferr.Wrap(bcferr.ErrInvalidPath, source, "inspect source", "no such file or directory", nil)
		}
		return 0, bcferr.Wrap(bcferr.ErrInvalidPath, source, "inspect source", "", err)
	}
	if info.IsDir() {
		return kindJSON, nil
	}
	ext := strings.ToLower(filepath.Ext(source))
	for _, known := range archiveExts {
		if ext == known {
			return kindArchive, nil
		}
	}

	f, err := os.Open(source)
	if err != nil {
		return 0, bcferr.Wrap(bcferr.ErrInvalidPath, source, "inspect source", "", err)
	}
	defer f.Close()
	head := make([]byte, len(zipSignature))
	if _, err := io.ReadFull(f, head); err == nil && bytes.Equal(head, zipSignature) {
		return kindArchive, nil
	}
	return 0, bcferr.Wrap(bcferr.ErrMalformedArchive, source, "inspect source", "neither a BCF archive nor a JSON directory", nil)
}

// Convert picks the direction from source: a directory converts JSON to an
// archive, an archive file converts to a JSON directory.
func (d *Dispatcher) Convert(ctx context.Context, source, target string) error {
	kind, err := classify(source)
	if err != nil {
		return err
	}
	if kind == kindJSON {
		return d.JSONToBcf(ctx, source, target)
	}
	return d.BcfToJSON(ctx, source, target)
}

// BcfToJSON converts the archive at source into a JSON directory at target.
func (d *Dispatcher) BcfToJSON(ctx context.Context, source, target string) error {
	v, err := version.FromArchiveFile(source)
	if err != nil {
		return err
	}
	s, err := d.resolve(v, source)
	if err != nil {
		return err
	}
	return s.BcfToJSON(ctx, source, target)
}

// JSONToBcf converts the JSON directory at source into an archive at target.
func (d *Dispatcher) JSONToBcf(ctx context.Context, source, target string) error {
	v, err := version.FromJSONDir(source)
	if err != nil {
		return err
	}
	s, err := d.resolve(v, source)
	if err != nil {
		return err
	}
	return s.JSONToBcf(ctx, source, target)
}

// BuildFromStream reads an archive from r and parses it. r is consumed.
func (d *Dispatcher) BuildFromStream(ctx context.Context, r io.Reader) (model.Bcf, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrMalformedArchive, "<stream>", "read stream", "", err)
	}
	return d.buildArchive(ctx, bytes.NewReader(data), int64(len(data)), "<stream>")
}

// BuildFromFile parses an archive file or a JSON directory.
func (d *Dispatcher) BuildFromFile(ctx context.Context, source string) (model.Bcf, error) {
	kind, err := classify(source)
	if err != nil {
		return nil, err
	}
	if kind == kindJSON {
		v, err := version.FromJSONDir(source)
		if err != nil {
			return nil, err
		}
		s, err := d.resolve(v, source)
		if err != nil {
			return nil, err
		}
		return s.BuildFromJSON(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, source, "open archive", "", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, bcferr.Wrap(bcferr.ErrInvalidPath, source, "stat archive", "", err)
	}
	return d.buildArchive(ctx, f, info.Size(), source)
}

func (d *Dispatcher) buildArchive(ctx context.Context, ra io.ReaderAt, size int64, source string) (model.Bcf, error) {
	v, err := version.FromArchive(ra, size)
	if err != nil {
		return nil, err
	}
	s, err := d.resolve(v, source)
	if err != nil {
		return nil, err
	}
	return s.BuildFromArchive(ctx, ra, size)
}

// ToBcf writes g as an archive at target using the strategy of g's
// generation.
func (d *Dispatcher) ToBcf(ctx context.Context, g model.Bcf, target string) error {
	s, err := d.forGraph(g, target)
	if err != nil {
		return err
	}
	return s.ToBcf(ctx, g, target)
}

// ToBcfStream writes g as an archive into out.
func (d *Dispatcher) ToBcfStream(ctx context.Context, g model.Bcf, out io.Writer) error {
	s, err := d.forGraph(g, "<stream>")
	if err != nil {
		return err
	}
	return s.ToBcfStream(ctx, g, out)
}

// ToJSON writes g as a JSON directory at target.
func (d *Dispatcher) ToJSON(ctx context.Context, g model.Bcf, target string) error {
	s, err := d.forGraph(g, target)
	if err != nil {
		return err
	}
	return s.ToJSON(ctx, g, target)
}

func (d *Dispatcher) forGraph(g model.Bcf, target string) (Strategy, error) {
	if g == nil {
		return nil, bcferr.Wrap(bcferr.ErrValidation, target, "write graph", "graph is nil", nil)
	}
	return d.resolve(g.SchemaVersion(), target)
}

// GetVersion detects the generation of an archive file or JSON directory
// without binding the dispatcher.
func (d *Dispatcher) GetVersion(ctx context.Context, source string) (version.Version, error) {
	if err := ctx.Err(); err != nil {
		return version.Unknown, err
	}
	if _, err := classify(source); err != nil {
		return version.Unknown, err
	}
	return version.Detect(source)
}
