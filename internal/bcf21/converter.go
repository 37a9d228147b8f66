package bcf21

import (
	"context"
	"io"
	"log/slog"

	"bcfkit/internal/archive"
	"bcfkit/internal/bcferr"
	"bcfkit/internal/jsonproj"
	"bcfkit/internal/logging"
	"bcfkit/internal/model"
	"bcfkit/internal/pipeline"
	"bcfkit/internal/version"
)

// Converter moves 2.1 graphs between archives, JSON directories and memory.
// It holds no per-call state and is safe for concurrent use.
type Converter struct {
	opts   pipeline.Options
	logger *slog.Logger
}

// NewConverter returns a 2.1 converter.
func NewConverter(opts pipeline.Options) *Converter {
	return &Converter{opts: opts, logger: opts.ComponentLogger("bcf21")}
}

// Version reports the generation this converter handles.
func (c *Converter) Version() version.Version {
	return version.V21
}

// BcfToJSON converts the archive at source into a JSON directory at target.
func (c *Converter) BcfToJSON(ctx context.Context, source, target string) error {
	ctx = logging.WithSource(logging.WithOperation(ctx, "bcf_to_json"), source)
	r, err := archive.Open(source)
	if err != nil {
		return err
	}
	defer r.Close()

	b, err := c.readArchive(ctx, r)
	if err != nil {
		return err
	}
	if err := c.writeJSON(ctx, b, target); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "archive converted to json",
		logging.String("target", target), logging.Int("topics", len(b.Markups)), logging.BcfVersion("2.1"))
	return nil
}

// JSONToBcf converts the JSON directory at source into an archive at target.
func (c *Converter) JSONToBcf(ctx context.Context, source, target string) error {
	ctx = logging.WithSource(logging.WithOperation(ctx, "json_to_bcf"), source)
	d, err := jsonproj.Open(source, c.opts.Indent)
	if err != nil {
		return err
	}
	b, err := c.readJSON(ctx, d)
	if err != nil {
		return err
	}
	if err := c.writeFile(ctx, b, target); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "json converted to archive",
		logging.String("target", target), logging.Int("topics", len(b.Markups)), logging.BcfVersion("2.1"))
	return nil
}

// BuildFromArchive parses the archive behind ra into a graph.
func (c *Converter) BuildFromArchive(ctx context.Context, ra io.ReaderAt, size int64) (model.Bcf, error) {
	r, err := archive.NewReader(ra, size)
	if err != nil {
		return nil, err
	}
	b, err := c.readArchive(logging.WithOperation(ctx, "build_from_archive"), r)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BuildFromJSON parses the JSON directory at dir into a graph.
func (c *Converter) BuildFromJSON(ctx context.Context, dir string) (model.Bcf, error) {
	d, err := jsonproj.Open(dir, c.opts.Indent)
	if err != nil {
		return nil, err
	}
	b, err := c.readJSON(logging.WithSource(logging.WithOperation(ctx, "build_from_json"), dir), d)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ToBcf writes g as an archive at target, replacing it atomically.
func (c *Converter) ToBcf(ctx context.Context, g model.Bcf, target string) error {
	b, err := c.graph(g, target)
	if err != nil {
		return err
	}
	return c.writeFile(logging.WithOperation(ctx, "to_bcf"), b, target)
}

// ToBcfStream writes g as an archive into out.
func (c *Converter) ToBcfStream(ctx context.Context, g model.Bcf, out io.Writer) error {
	b, err := c.graph(g, "<stream>")
	if err != nil {
		return err
	}
	w := archive.NewWriter(out)
	defer w.Close()
	if err := c.writeArchive(logging.WithOperation(ctx, "to_bcf_stream"), b, w, "<stream>"); err != nil {
		return err
	}
	return w.Commit()
}

// ToJSON writes g as a JSON directory at target.
func (c *Converter) ToJSON(ctx context.Context, g model.Bcf, target string) error {
	b, err := c.graph(g, target)
	if err != nil {
		return err
	}
	return c.writeJSON(logging.WithOperation(ctx, "to_json"), b, target)
}

func (c *Converter) writeFile(ctx context.Context, b *Bcf, target string) error {
	w, err := archive.Create(target)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := c.writeArchive(ctx, b, w, target); err != nil {
		return err
	}
	return w.Commit()
}

// graph narrows g to a 2.1 graph.
func (c *Converter) graph(g model.Bcf, target string) (*Bcf, error) {
	switch b := g.(type) {
	case *Bcf:
		if b == nil {
			return nil, bcferr.Wrap(bcferr.ErrValidation, target, "write graph", "graph is nil", nil)
		}
		if b.Version != nil {
			if err := c.confirm(b.Version, target); err != nil {
				return nil, err
			}
		}
		return b, nil
	case nil:
		return nil, bcferr.Wrap(bcferr.ErrValidation, target, "write graph", "graph is nil", nil)
	default:
		return nil, &bcferr.VersionMismatchError{Path: target, Detected: g.SchemaVersion().String(), Requested: version.V21.String()}
	}
}

func (c *Converter) confirm(ver *Version, source string) error {
	if ver == nil {
		return bcferr.Wrap(bcferr.ErrUnsupportedVersion, source, "confirm version", "no version tag", nil)
	}
	return version.Expect(ver.VersionID, version.V21, source)
}

// keepProject validates p and applies the topic error policy to it: under
// skip an invalid project is dropped with a warning.
func (c *Converter) keepProject(ctx context.Context, p *ProjectExtension, source string) (*ProjectExtension, error) {
	err := ValidateProject(p, source, c.opts.IDRules())
	if err == nil {
		return p, nil
	}
	if c.opts.Policy == pipeline.PolicyAbort {
		return nil, err
	}
	logging.WarnWithContext(ctx, c.logger, "project dropped", "project_skipped", logging.Error(err))
	return nil, nil
}
