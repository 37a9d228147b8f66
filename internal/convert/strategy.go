package convert

import (
	"context"
	"io"

	"bcfkit/internal/bcf21"
	"bcfkit/internal/bcf30"
	"bcfkit/internal/model"
	"bcfkit/internal/pipeline"
	"bcfkit/internal/version"
)

// Options configures the converters a Dispatcher creates.
type Options = pipeline.Options

// Strategy is the conversion surface of one schema generation.
type Strategy interface {
	Version() version.Version
	BcfToJSON(ctx context.Context, source, target string) error
	JSONToBcf(ctx context.Context, source, target string) error
	BuildFromArchive(ctx context.Context, ra io.ReaderAt, size int64) (model.Bcf, error)
	BuildFromJSON(ctx context.Context, dir string) (model.Bcf, error)
	ToBcf(ctx context.Context, g model.Bcf, target string) error
	ToBcfStream(ctx context.Context, g model.Bcf, out io.Writer) error
	ToJSON(ctx context.Context, g model.Bcf, target string) error
}

var (
	_ Strategy = (*bcf21.Converter)(nil)
	_ Strategy = (*bcf30.Converter)(nil)
)

// strategies maps each known generation to its converter factory. It is
// never modified after init.
var strategies = map[version.Version]func(Options) Strategy{
	version.V21: func(opts Options) Strategy { return bcf21.NewConverter(opts) },
	version.V30: func(opts Options) Strategy { return bcf30.NewConverter(opts) },
}
