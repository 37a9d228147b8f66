// Package pipeline runs per-topic work on a bounded worker pool and gathers
// the results, applying the topic error policy.
//
// Each topic is parsed and validated independently; results are funnelled
// through a channel into a slice whose order is not significant. Under
// PolicySkip a failing topic is logged and dropped. Under PolicyAbort the
// first failure cancels the remaining work and is returned. Topics without
// an identifier (ErrNoIdentifier) are dropped under both policies.
package pipeline
