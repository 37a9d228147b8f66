package bcf30

import (
	"bcfkit/internal/xmlcodec"
)

// Archive entry names. Document payloads live under DocumentsDir.
const (
	VersionEntry    = "bcf.version"
	ProjectEntry    = "project.bcfp"
	ExtensionsEntry = "extensions.xml"
	DocumentsEntry  = "documents.xml"
	DocumentsDir    = "documents"
)

var (
	markupKind     = xmlcodec.Kind{Name: "markup", Root: "Markup"}
	visinfoKind    = xmlcodec.Kind{Name: "visinfo", Root: "VisualizationInfo"}
	projectKind    = xmlcodec.Kind{Name: "project", Root: "ProjectInfo"}
	versionKind    = xmlcodec.Kind{Name: "version", Root: "Version"}
	extensionsKind = xmlcodec.Kind{Name: "extensions", Root: "Extensions"}
	documentsKind  = xmlcodec.Kind{Name: "documents", Root: "DocumentInfo"}
)

func decode[T any](data []byte, path string, kind xmlcodec.Kind) (*T, error) {
	var v T
	if err := xmlcodec.Decode(data, path, kind, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseMarkup decodes a markup.bcf fragment. path only labels errors.
func ParseMarkup(data []byte, path string) (*Markup, error) {
	return decode[Markup](data, path, markupKind)
}

func ParseVisualizationInfo(data []byte, path string) (*VisualizationInfo, error) {
	return decode[VisualizationInfo](data, path, visinfoKind)
}

func ParseProject(data []byte, path string) (*ProjectInfo, error) {
	return decode[ProjectInfo](data, path, projectKind)
}

func ParseVersion(data []byte, path string) (*Version, error) {
	return decode[Version](data, path, versionKind)
}

func ParseExtensions(data []byte, path string) (*Extensions, error) {
	return decode[Extensions](data, path, extensionsKind)
}

// ParseDocumentInfo decodes documents.xml. Document bytes are read
// separately.
func ParseDocumentInfo(data []byte, path string) (*DocumentInfo, error) {
	return decode[DocumentInfo](data, path, documentsKind)
}

// MarshalMarkup renders m as markup.bcf. JSON-only attachments are left out.
func MarshalMarkup(m *Markup) ([]byte, error) {
	return xmlcodec.Encode(m)
}

func MarshalVisualizationInfo(v *VisualizationInfo) ([]byte, error) {
	return xmlcodec.Encode(v)
}

func MarshalProject(p *ProjectInfo) ([]byte, error) {
	return xmlcodec.Encode(p)
}

func MarshalVersion(v *Version) ([]byte, error) {
	return xmlcodec.Encode(v)
}

func MarshalExtensions(e *Extensions) ([]byte, error) {
	return xmlcodec.Encode(e)
}

func MarshalDocumentInfo(d *DocumentInfo) ([]byte, error) {
	return xmlcodec.Encode(d)
}
