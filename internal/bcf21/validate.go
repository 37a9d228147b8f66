package bcf21

import (
	"fmt"

	"bcfkit/internal/model"
)

// ValidateMarkup checks the required fields of one markup and every node it
// owns. All violations are reported together; m is never modified.
func ValidateMarkup(m *Markup, path string, rules model.IDRules) error {
	var v model.Violations
	if m == nil || m.Topic == nil {
		v.Add("topic")
		return v.Err(path, "markup")
	}

	t := m.Topic
	v.ID("topic.guid", t.GUID, rules)
	v.Require("topic.title", t.Title)
	v.Date("topic.creationDate", t.CreationDate)
	v.Require("topic.creationAuthor", t.CreationAuthor)
	v.OptionalDate("topic.modifiedDate", t.ModifiedDate)
	v.OptionalDate("topic.dueDate", t.DueDate)
	for i, ref := range t.DocumentReferences {
		v.OptionalID(fmt.Sprintf("topic.documentReference[%d].guid", i), ref.GUID, rules)
	}
	for i, rel := range t.RelatedTopics {
		v.ID(fmt.Sprintf("topic.relatedTopic[%d].guid", i), rel.GUID, rules)
	}

	for i, c := range m.Comments {
		field := fmt.Sprintf("comment[%d]", i)
		v.ID(field+".guid", c.GUID, rules)
		v.Date(field+".date", c.Date)
		v.Require(field+".author", c.Author)
		v.Require(field+".comment", c.Comment)
		v.OptionalDate(field+".modifiedDate", c.ModifiedDate)
	}

	ids := make([]string, 0, len(m.Viewpoints))
	for i, vp := range m.Viewpoints {
		field := fmt.Sprintf("viewpoints[%d]", i)
		v.ID(field+".guid", vp.GUID, rules)
		ids = append(ids, vp.GUID)
		if vp.VisualizationInfo != nil {
			validateVisualizationInfo(&v, field+".visualizationInfo", vp.VisualizationInfo, rules)
		}
	}
	v.Unique("viewpoints.guid", ids)

	return v.Err(path, "markup")
}

// ValidateVisualizationInfo checks one .bcfv graph on its own.
func ValidateVisualizationInfo(vi *VisualizationInfo, path string, rules model.IDRules) error {
	var v model.Violations
	validateVisualizationInfo(&v, "visualizationInfo", vi, rules)
	return v.Err(path, "visualization info")
}

func validateVisualizationInfo(v *model.Violations, field string, vi *VisualizationInfo, rules model.IDRules) {
	v.ID(field+".guid", vi.GUID, rules)
	if vi.OrthogonalCamera != nil && vi.PerspectiveCamera != nil {
		v.Add(field + ".camera (orthogonal and perspective are exclusive)")
	}
	if vi.OrthogonalCamera != nil {
		v.RequireSet(field+".orthogonalCamera.viewToWorldScale", vi.OrthogonalCamera.ViewToWorldScale != nil)
	}
	if vi.PerspectiveCamera != nil {
		v.RequireSet(field+".perspectiveCamera.fieldOfView", vi.PerspectiveCamera.FieldOfView != nil)
	}
	for i, b := range vi.Bitmaps {
		v.Require(fmt.Sprintf("%s.bitmap[%d].reference", field, i), b.Reference)
	}
}

// ValidateProject checks project.bcfp.
func ValidateProject(p *ProjectExtension, path string, rules model.IDRules) error {
	var v model.Violations
	if p.Project != nil {
		v.ID("project.projectId", p.Project.ProjectID, rules)
	}
	return v.Err(path, "project")
}
