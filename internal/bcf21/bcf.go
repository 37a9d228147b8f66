package bcf21

import (
	"sort"

	"bcfkit/internal/model"
	"bcfkit/internal/version"
)

// Bcf is a complete 2.1 graph. Markups are unordered.
type Bcf struct {
	Markups []*Markup
	Project *ProjectExtension
	Version *Version
}

var _ model.Bcf = (*Bcf)(nil)

func (b *Bcf) SchemaVersion() version.Version {
	return version.V21
}

// Topics summarizes the markups in GUID order.
func (b *Bcf) Topics() []model.TopicSummary {
	out := make([]model.TopicSummary, 0, len(b.Markups))
	for _, m := range b.Markups {
		if m == nil || m.Topic == nil {
			continue
		}
		out = append(out, model.TopicSummary{
			GUID:       m.Topic.GUID,
			Title:      m.Topic.Title,
			Type:       m.Topic.TopicType,
			Status:     m.Topic.TopicStatus,
			Author:     m.Topic.CreationAuthor,
			Created:    m.Topic.CreationDate,
			Comments:   len(m.Comments),
			Viewpoints: len(m.Viewpoints),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GUID < out[j].GUID })
	return out
}

// GUID returns the topic GUID or "".
func (m *Markup) GUID() string {
	if m == nil || m.Topic == nil {
		return ""
	}
	return m.Topic.GUID
}
