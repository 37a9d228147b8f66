package version

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"bcfkit/internal/archive"
	"bcfkit/internal/bcferr"
	"bcfkit/internal/jsonproj"
	"bcfkit/internal/xmlcodec"
)

var versionIDPath = jp.MustParseString("$.versionId")

var versionKind = xmlcodec.Kind{Name: "version", Root: "Version"}

type versionTag struct {
	VersionID string `xml:"VersionId,attr"`
}

// FromArchive reads only the version entry of the archive behind ra. The
// reader is never consumed, so callers can parse the same bytes afterwards.
func FromArchive(ra io.ReaderAt, size int64) (Version, error) {
	r, err := archive.NewReader(ra, size)
	if err != nil {
		return Unknown, err
	}
	return FromReader(r)
}

// FromReader reads the version entry of an already opened archive.
func FromReader(r *archive.Reader) (Version, error) {
	data, ok, err := r.Optional(ArchiveEntry)
	if err != nil {
		return Unknown, err
	}
	if !ok {
		return Unknown, bcferr.Wrap(bcferr.ErrUnsupportedVersion, r.Path(), "detect version", "archive has no "+ArchiveEntry, nil)
	}
	var tag versionTag
	if err := xmlcodec.Decode(data, r.Path()+"!"+ArchiveEntry, versionKind, &tag); err != nil {
		return Unknown, err
	}
	v, err := Parse(tag.VersionID)
	if err != nil {
		return Unknown, bcferr.Wrap(bcferr.ErrUnsupportedVersion, r.Path(), "detect version", "", err)
	}
	return v, nil
}

// FromArchiveFile detects the generation of the archive at path.
func FromArchiveFile(path string) (Version, error) {
	r, err := archive.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer r.Close()
	return FromReader(r)
}

// FromJSONDir reads only version.json of the JSON directory at path.
func FromJSONDir(path string) (Version, error) {
	dir, err := jsonproj.Open(path, "")
	if err != nil {
		return Unknown, err
	}
	return FromDir(dir)
}

// FromDir reads the version unit of an already opened JSON directory.
func FromDir(dir *jsonproj.Dir) (Version, error) {
	raw, ok, err := dir.Raw(JSONUnit)
	if err != nil {
		return Unknown, err
	}
	if !ok {
		return Unknown, bcferr.Wrap(bcferr.ErrUnsupportedVersion, dir.Root(), "detect version", "directory has no "+JSONUnit+".json", nil)
	}
	doc, err := oj.Parse(raw)
	if err != nil {
		return Unknown, bcferr.Wrap(bcferr.ErrMalformedJSON, dir.Root(), "detect version", JSONUnit+".json", err)
	}
	tag, _ := versionIDPath.First(doc).(string)
	v, err := Parse(tag)
	if err != nil {
		return Unknown, bcferr.Wrap(bcferr.ErrUnsupportedVersion, dir.Root(), "detect version", "", err)
	}
	return v, nil
}

// Detect inspects path: directories are read as JSON projections, anything
// else as an archive.
func Detect(path string) (Version, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Unknown, bcferr.Wrap(bcferr.ErrInvalidPath, path, "detect version", "no such file or directory", nil)
		}
		return Unknown, bcferr.Wrap(bcferr.ErrInvalidPath, path, "detect version", "", err)
	}
	if info.IsDir() {
		return FromJSONDir(path)
	}
	return FromArchiveFile(path)
}
