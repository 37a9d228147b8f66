package pipeline

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"bcfkit/internal/logging"
	"bcfkit/internal/model"
)

// Policy decides what a per-topic failure does to the whole conversion.
type Policy int

const (
	// PolicySkip logs the failure and omits the topic.
	PolicySkip Policy = iota
	// PolicyAbort fails the conversion on the first topic failure.
	PolicyAbort
)

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "skip"
}

// ParsePolicy maps "skip" or "abort" to a Policy. Empty selects PolicySkip.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicySkip, fmt.Errorf("unsupported topic error policy %q", value)
	}
}

// Options configures a converter. The zero value is usable: one worker per
// CPU, skip policy, loose GUIDs, two-space JSON indent and no logging.
type Options struct {
	Workers     int
	Policy      Policy
	StrictGUIDs bool
	// Indent is passed to the JSON projection, which defaults it when empty.
	Indent      string
	Logger      *slog.Logger
}

// WorkerCount resolves Workers, substituting the CPU count for zero.
func (o Options) WorkerCount() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return max(runtime.NumCPU(), 1)
}

// IDRules returns the identifier rules the options select.
func (o Options) IDRules() model.IDRules {
	return model.IDRules{StrictGUIDs: o.StrictGUIDs}
}

// ComponentLogger returns the configured logger tagged with component.
func (o Options) ComponentLogger(component string) *slog.Logger {
	return logging.NewComponentLogger(o.Logger, component)
}
