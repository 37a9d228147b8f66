package model

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

const defaultMediaType = "application/octet-stream"

// FileData is a binary attachment at the JSON boundary. Mime holds the data
// URL prefix ("data:image/png;base64") and Data the base64 payload.
type FileData struct {
	Mime string `json:"mime"`
	Data string `json:"data"`
}

// NewFileData encodes content. The media type comes from the extension of
// name, falling back to content sniffing.
func NewFileData(name string, content []byte) *FileData {
	url := dataurl.New(content, mediaType(name, content)).String()
	prefix, payload, _ := strings.Cut(url, ",")
	return &FileData{Mime: prefix, Data: payload}
}

// Bytes decodes the payload.
func (f *FileData) Bytes() ([]byte, error) {
	prefix := f.Mime
	if strings.TrimSpace(prefix) == "" {
		prefix = "data:" + defaultMediaType + ";base64"
	}
	du, err := dataurl.DecodeString(prefix + "," + f.Data)
	if err != nil {
		return nil, err
	}
	return du.Data, nil
}

// MediaType returns the media type named by Mime, e.g. "image/png".
func (f *FileData) MediaType() string {
	prefix := strings.TrimPrefix(strings.TrimSpace(f.Mime), "data:")
	mt, _, _ := strings.Cut(prefix, ";")
	if mt == "" {
		return defaultMediaType
	}
	return mt
}

// Extension returns a file extension (with dot) for the media type, or "".
func (f *FileData) Extension() string {
	switch mt := f.MediaType(); mt {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		exts, err := mime.ExtensionsByType(mt)
		if err != nil || len(exts) == 0 {
			return ""
		}
		return exts[0]
	}
}

func mediaType(name string, content []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(name))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	if len(content) == 0 {
		return defaultMediaType
	}
	sniffed, _, err := mime.ParseMediaType(http.DetectContentType(content))
	if err != nil {
		return defaultMediaType
	}
	return sniffed
}
