package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bcfkit/internal/bcferr"
	"bcfkit/internal/logging"
)

// ErrNoIdentifier marks a topic that carries no GUID. Such topics are
// skipped under every policy.
var ErrNoIdentifier = errors.New("topic has no identifier")

// Collect runs fn for every input on at most opts.WorkerCount() goroutines
// and returns the successful results. label names an input in logs and
// errors. Result order is not defined.
func Collect[I, O any](ctx context.Context, inputs []I, opts Options, logger *slog.Logger, label func(I) string, fn func(context.Context, I) (O, error)) ([]O, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(inputs) == 0 {
		return nil, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.WorkerCount())

	results := make(chan O)
	collected := make(chan []O, 1)
	go func() {
		var out []O
		for r := range results {
			out = append(out, r)
		}
		collected <- out
	}()

	for _, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := fn(gctx, in)
			if err != nil {
				return handle(gctx, logger, opts.Policy, label(in), err)
			}
			select {
			case results <- out:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err := g.Wait()
	close(results)
	out := <-collected
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func handle(ctx context.Context, logger *slog.Logger, policy Policy, name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrNoIdentifier) {
		logger.DebugContext(ctx, "topic without guid skipped", logging.String(logging.FieldTopic, name), logging.Error(err))
		return nil
	}
	if policy == PolicyAbort {
		return err
	}
	logging.WarnWithContext(ctx, logger, "topic skipped", "topic_skipped",
		logging.Topic(name),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint(err)),
	)
	return nil
}

func hint(err error) string {
	switch {
	case errors.Is(err, bcferr.ErrValidation):
		return "fill in the listed fields or set topic_error_policy = \"abort\" to fail instead"
	case errors.Is(err, bcferr.ErrMalformedArchive), errors.Is(err, bcferr.ErrMalformedJSON):
		return "the topic content could not be decoded; inspect the named entry"
	default:
		return "check logs for details"
	}
}
