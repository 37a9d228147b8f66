package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"bcfkit/internal/logging"
)

// UniqueByKey sorts items by key and drops every item whose key was already
// seen, logging a warning for each. Output order is deterministic.
func UniqueByKey[T any](ctx context.Context, logger *slog.Logger, items []T, key func(T) string) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	out := make([]T, 0, len(sorted))
	for i, item := range sorted {
		if i > 0 && key(item) == key(sorted[i-1]) {
			logging.WarnWithContext(ctx, logger, "duplicate topic dropped", "duplicate_topic",
				logging.Topic(key(item)),
				logging.String(logging.FieldErrorHint, "two topics share one guid; only the first is kept"),
			)
			continue
		}
		out = append(out, item)
	}
	return out
}
