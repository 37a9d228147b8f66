package bcf30

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
	v.Require("topic.topicType", t.TopicType)
	v.Require("topic.topicStatus", t.TopicStatus)
	v.Require("topic.title", t.Title)
	v.Date("topic.creationDate", t.CreationDate)
	v.Require("topic.creationAuthor", t.CreationAuthor)
	v.OptionalDate("topic.modifiedDate", t.ModifiedDate)
	v.OptionalDate("topic.dueDate", t.DueDate)

	for i, ref := range t.DocumentReferences {
		field := fmt.Sprintf("topic.documentReferences[%d]", i)
		v.OptionalID(field+".guid", ref.GUID, rules)
		if (ref.DocumentGUID == "") == (ref.URL == "") {
			v.Add(field + ".documentGuid|url (exactly one)")
		}
		v.OptionalID(field+".documentGuid", ref.DocumentGUID, rules)
	}
	for i, rel := range t.RelatedTopics {
		v.ID(fmt.Sprintf("topic.relatedTopics[%d].guid", i), rel.GUID, rules)
	}

	for i, c := range t.Comments {
		field := fmt.Sprintf("topic.comments[%d]", i)
		v.ID(field+".guid", c.GUID, rules)
		v.Date(field+".date", c.Date)
		v.Require(field+".author", c.Author)
		v.OptionalDate(field+".modifiedDate", c.ModifiedDate)
	}

	ids := make([]string, 0, len(t.Viewpoints))
	for i, vp := range t.Viewpoints {
		field := fmt.Sprintf("topic.viewpoints[%d]", i)
		v.ID(field+".guid", vp.GUID, rules)
		ids = append(ids, vp.GUID)
		if vp.VisualizationInfo != nil {
			validateVisualizationInfo(&v, field+".visualizationInfo", vp.VisualizationInfo, rules)
		}
	}
	v.Unique("topic.viewpoints.guid", ids)

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
	if c := vi.OrthogonalCamera; c != nil {
		v.RequireSet(field+".orthogonalCamera.viewToWorldScale", c.ViewToWorldScale != nil)
		v.RequireSet(field+".orthogonalCamera.aspectRatio", c.AspectRatio != nil)
	}
	if c := vi.PerspectiveCamera; c != nil {
		v.RequireSet(field+".perspectiveCamera.fieldOfView", c.FieldOfView != nil)
		v.RequireSet(field+".perspectiveCamera.aspectRatio", c.AspectRatio != nil)
	}
	for i, b := range vi.Bitmaps {
		v.Require(fmt.Sprintf("%s.bitmaps[%d].format", field, i), b.Format)
		v.Require(fmt.Sprintf("%s.bitmaps[%d].reference", field, i), b.Reference)
	}
}

// ValidateProject checks project.bcfp.
func ValidateProject(p *ProjectInfo, path string, rules model.IDRules) error {
	var v model.Violations
	if p.Project != nil {
		v.ID("project.projectId", p.Project.ProjectID, rules)
	}
	return v.Err(path, "project")
}

// ValidateDocumentInfo checks every catalog entry of documents.xml.
func ValidateDocumentInfo(d *DocumentInfo, path string, rules model.IDRules) error {
	var v model.Violations
	ids := make([]string, 0, len(d.Documents))
	for i, doc := range d.Documents {
		validateDocument(&v, fmt.Sprintf("documents[%d]", i), doc, rules)
		ids = append(ids, doc.GUID)
	}
	v.Unique("documents.guid", ids)
	return v.Err(path, "document info")
}

// ValidateDocument checks one catalog entry.
func ValidateDocument(doc Document, path string, rules model.IDRules) error {
	var v model.Violations
	validateDocument(&v, "document", doc, rules)
	return v.Err(path, "document")
}

func validateDocument(v *model.Violations, field string, doc Document, rules model.IDRules) {
	v.ID(field+".guid", doc.GUID, rules)
	v.Require(field+".filename", doc.Filename)
}
