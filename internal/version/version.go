// Package version models the closed set of BCF schema generations and
// detects which one a source carries.
package version

import (
	"strings"

	"bcfkit/internal/bcferr"
)

// Version is a BCF schema generation.
type Version int

const (
	Unknown Version = iota
	V21
	V30
)

const (
	// ArchiveEntry is the archive root entry holding the version tag.
	ArchiveEntry = "bcf.version"
	// JSONUnit is the JSON unit holding the version tag.
	JSONUnit = "version"
)

var known = []Version{V21, V30}

func (v Version) String() string {
	switch v {
	case V21:
		return "2.1"
	case V30:
		return "3.0"
	default:
		return "unknown"
	}
}

// Known reports whether v is a supported generation.
func (v Version) Known() bool {
	return v == V21 || v == V30
}

// All returns the supported generations in ascending order.
func All() []Version {
	out := make([]Version, len(known))
	copy(out, known)
	return out
}

// Parse maps a version tag ("2.1", "3.0") to its generation. Tags such as
// "2.1.0" are accepted; anything else fails with ErrUnsupportedVersion.
func Parse(tag string) (Version, error) {
	trimmed := strings.TrimSpace(tag)
	switch {
	case trimmed == "2.1" || strings.HasPrefix(trimmed, "2.1."):
		return V21, nil
	case trimmed == "3.0" || strings.HasPrefix(trimmed, "3.0."):
		return V30, nil
	case trimmed == "":
		return Unknown, bcferr.Wrap(bcferr.ErrUnsupportedVersion, "", "parse version", "empty version tag", nil)
	default:
		return Unknown, bcferr.Wrap(bcferr.ErrUnsupportedVersion, "", "parse version", "unknown version tag "+quote(trimmed), nil)
	}
}

// Expect parses tag and fails with a VersionMismatchError when it names a
// generation other than want.
func Expect(tag string, want Version, path string) error {
	got, err := Parse(tag)
	if err != nil {
		return bcferr.Wrap(bcferr.ErrUnsupportedVersion, path, "confirm version", "", err)
	}
	if got != want {
		return &bcferr.VersionMismatchError{Path: path, Detected: got.String(), Requested: want.String()}
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
