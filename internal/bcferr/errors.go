package bcferr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath        = errors.New("invalid path")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrValidation         = errors.New("validation error")
	ErrMalformedArchive   = errors.New("malformed archive")
	ErrMalformedJSON      = errors.New("malformed json")
)

// Wrap builds an error message that includes the offending path and operation
// while tagging it with the provided marker. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, path, operation, message string, err error) error {
	detail := buildDetail(path, operation, message)
	if marker == nil {
		marker = ErrMalformedArchive
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ValidationError lists every violated field of one entity.
type ValidationError struct {
	Path   string
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	b.WriteString(": ")
	if e.Entity != "" {
		b.WriteString(e.Entity)
	} else {
		b.WriteString("entity")
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if len(e.Fields) > 0 {
		b.WriteString(": missing or invalid ")
		b.WriteString(strings.Join(e.Fields, ", "))
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// VersionMismatchError reports a source whose schema generation differs from
// the one the caller is bound to.
type VersionMismatchError struct {
	Path      string
	Detected  string
	Requested string
}

func (e *VersionMismatchError) Error() string {
	detail := fmt.Sprintf("source is BCF %s, converter is bound to BCF %s", orUnknown(e.Detected), orUnknown(e.Requested))
	if e.Path != "" {
		detail = e.Path + ": " + detail
	}
	return ErrUnsupportedVersion.Error() + ": " + detail
}

func (e *VersionMismatchError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// Kind returns a short label for the marker carried by err, suitable for the
// event_type log field. Unclassified errors map to "error".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPath):
		return "invalid_path"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrMalformedArchive):
		return "malformed_archive"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	default:
		return "error"
	}
}

func orUnknown(tag string) string {
	if strings.TrimSpace(tag) == "" {
		return "unknown"
	}
	return tag
}

func buildDetail(path, operation, message string) string {
	parts := make([]string, 0, 3)
	if path = strings.TrimSpace(path); path != "" {
		parts = append(parts, path)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
