package bcf21

import (
	"bcfkit/internal/xmlcodec"
)

// Archive entry names and their root elements.
const (
	VersionEntry = "bcf.version"
	ProjectEntry = "project.bcfp"
)

var (
	markupKind  = xmlcodec.Kind{Name: "markup", Root: "Markup"}
	visinfoKind = xmlcodec.Kind{Name: "visinfo", Root: "VisualizationInfo"}
	projectKind = xmlcodec.Kind{Name: "project", Root: "ProjectExtension"}
	versionKind = xmlcodec.Kind{Name: "version", Root: "Version"}
)

// ParseMarkup decodes a markup.bcf fragment. path only labels errors.
func ParseMarkup(data []byte, path string) (*Markup, error) {
	var m Markup
	if err := xmlcodec.Decode(data, path, markupKind, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseVisualizationInfo decodes a .bcfv fragment.
func ParseVisualizationInfo(data []byte, path string) (*VisualizationInfo, error) {
	var v VisualizationInfo
	if err := xmlcodec.Decode(data, path, visinfoKind, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseProject decodes project.bcfp.
func ParseProject(data []byte, path string) (*ProjectExtension, error) {
	var p ProjectExtension
	if err := xmlcodec.Decode(data, path, projectKind, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseVersion decodes bcf.version.
func ParseVersion(data []byte, path string) (*Version, error) {
	var v Version
	if err := xmlcodec.Decode(data, path, versionKind, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// MarshalMarkup renders m as markup.bcf. JSON-only attachments are left out.
func MarshalMarkup(m *Markup) ([]byte, error) {
	return xmlcodec.Encode(m)
}

func MarshalVisualizationInfo(v *VisualizationInfo) ([]byte, error) {
	return xmlcodec.Encode(v)
}

func MarshalProject(p *ProjectExtension) ([]byte, error) {
	return xmlcodec.Encode(p)
}

func MarshalVersion(v *Version) ([]byte, error) {
	return xmlcodec.Encode(v)
}
