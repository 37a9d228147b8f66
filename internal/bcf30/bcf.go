package bcf30

import (
	"sort"

	"bcfkit/internal/model"
	"bcfkit/internal/version"
)

// Bcf is a complete 3.0 graph. Markups are unordered.
type Bcf struct {
	Markups    []*Markup
	Project    *ProjectInfo
	Extensions *Extensions
	Document   *DocumentInfo
	Version    *Version
}

var _ model.Bcf = (*Bcf)(nil)

func (b *Bcf) SchemaVersion() version.Version {
	return version.V30
}

// Topics summarizes the markups in GUID order.
func (b *Bcf) Topics() []model.TopicSummary {
	out := make([]model.TopicSummary, 0, len(b.Markups))
	for _, m := range b.Markups {
		if m == nil || m.Topic == nil {
			continue
		}
		t := m.Topic
		out = append(out, model.TopicSummary{
			GUID:       t.GUID,
			Title:      t.Title,
			Type:       t.TopicType,
			Status:     t.TopicStatus,
			Author:     t.CreationAuthor,
			Created:    t.CreationDate,
			Comments:   len(t.Comments),
			Viewpoints: len(t.Viewpoints),
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
