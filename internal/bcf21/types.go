package bcf21

import "bcfkit/internal/model"

// Version is the content of bcf.version and version.json.
type Version struct {
	VersionID       string `xml:"VersionId,attr" json:"versionId"`
	DetailedVersion string `xml:"DetailedVersion,omitempty" json:"detailedVersion,omitempty"`
}

// ProjectExtension is the content of project.bcfp and project.json.
type ProjectExtension struct {
	Project         *Project `xml:"Project,omitempty" json:"project,omitempty"`
	ExtensionSchema string   `xml:"ExtensionSchema,omitempty" json:"extensionSchema,omitempty"`
}

type Project struct {
	ProjectID string `xml:"ProjectId,attr,omitempty" json:"projectId,omitempty"`
	Name      string `xml:"Name,omitempty" json:"name,omitempty"`
}

// Markup is one topic with its comments and viewpoints.
type Markup struct {
	Header     *Header     `xml:"Header,omitempty" json:"header,omitempty"`
	Topic      *Topic      `xml:"Topic" json:"topic"`
	Comments   []Comment   `xml:"Comment" json:"comment,omitempty"`
	Viewpoints []ViewPoint `xml:"Viewpoints" json:"viewpoints,omitempty"`
}

type Header struct {
	Files []HeaderFile `xml:"File" json:"file,omitempty"`
}

type HeaderFile struct {
	IfcProject                 string `xml:"IfcProject,attr,omitempty" json:"ifcProject,omitempty"`
	IfcSpatialStructureElement string `xml:"IfcSpatialStructureElement,attr,omitempty" json:"ifcSpatialStructureElement,omitempty"`
	IsExternal                 *bool  `xml:"isExternal,attr,omitempty" json:"isExternal,omitempty"`
	Filename                   string `xml:"Filename,omitempty" json:"filename,omitempty"`
	Date                       string `xml:"Date,omitempty" json:"date,omitempty"`
	Reference                  string `xml:"Reference,omitempty" json:"reference,omitempty"`
}

type Topic struct {
	GUID               string              `xml:"Guid,attr,omitempty" json:"guid,omitempty"`
	TopicType          string              `xml:"TopicType,attr,omitempty" json:"topicType,omitempty"`
	TopicStatus        string              `xml:"TopicStatus,attr,omitempty" json:"topicStatus,omitempty"`
	ReferenceLinks     []string            `xml:"ReferenceLink" json:"referenceLink,omitempty"`
	Title              string              `xml:"Title" json:"title"`
	Priority           string              `xml:"Priority,omitempty" json:"priority,omitempty"`
	Index              *int                `xml:"Index,omitempty" json:"index,omitempty"`
	Labels             []string            `xml:"Labels" json:"labels,omitempty"`
	CreationDate       string              `xml:"CreationDate" json:"creationDate"`
	CreationAuthor     string              `xml:"CreationAuthor" json:"creationAuthor"`
	ModifiedDate       string              `xml:"ModifiedDate,omitempty" json:"modifiedDate,omitempty"`
	ModifiedAuthor     string              `xml:"ModifiedAuthor,omitempty" json:"modifiedAuthor,omitempty"`
	DueDate            string              `xml:"DueDate,omitempty" json:"dueDate,omitempty"`
	AssignedTo         string              `xml:"AssignedTo,omitempty" json:"assignedTo,omitempty"`
	Stage              string              `xml:"Stage,omitempty" json:"stage,omitempty"`
	Description        string              `xml:"Description,omitempty" json:"description,omitempty"`
	BimSnippet         *BimSnippet         `xml:"BimSnippet,omitempty" json:"bimSnippet,omitempty"`
	DocumentReferences []DocumentReference `xml:"DocumentReference" json:"documentReference,omitempty"`
	RelatedTopics      []RelatedTopic      `xml:"RelatedTopic" json:"relatedTopic,omitempty"`
}

type BimSnippet struct {
	SnippetType     string `xml:"SnippetType,attr,omitempty" json:"snippetType,omitempty"`
	IsExternal      *bool  `xml:"isExternal,attr,omitempty" json:"isExternal,omitempty"`
	Reference       string `xml:"Reference" json:"reference"`
	ReferenceSchema string `xml:"ReferenceSchema,omitempty" json:"referenceSchema,omitempty"`
}

// DocumentReference points at a document by relative path or URL. Internal
// references (isExternal false) carry the file bytes as DocumentData in JSON.
type DocumentReference struct {
	GUID               string          `xml:"Guid,attr,omitempty" json:"guid,omitempty"`
	IsExternal         *bool           `xml:"isExternal,attr,omitempty" json:"isExternal,omitempty"`
	ReferencedDocument string          `xml:"ReferencedDocument,omitempty" json:"referencedDocument,omitempty"`
	Description        string          `xml:"Description,omitempty" json:"description,omitempty"`
	DocumentData       *model.FileData `xml:"-" json:"documentData,omitempty"`
}

// External reports whether the referenced document lives outside the archive.
// The schema default is false.
func (d DocumentReference) External() bool {
	return d.IsExternal != nil && *d.IsExternal
}

type RelatedTopic struct {
	GUID string `xml:"Guid,attr" json:"guid"`
}

type Comment struct {
	GUID           string            `xml:"Guid,attr,omitempty" json:"guid,omitempty"`
	Date           string            `xml:"Date" json:"date"`
	Author         string            `xml:"Author" json:"author"`
	Comment        string            `xml:"Comment" json:"comment"`
	Viewpoint      *CommentViewpoint `xml:"Viewpoint,omitempty" json:"viewpoint,omitempty"`
	ModifiedDate   string            `xml:"ModifiedDate,omitempty" json:"modifiedDate,omitempty"`
	ModifiedAuthor string            `xml:"ModifiedAuthor,omitempty" json:"modifiedAuthor,omitempty"`
}

type CommentViewpoint struct {
	GUID string `xml:"Guid,attr" json:"guid"`
}

// ViewPoint names the visualization and snapshot files of one viewpoint. The
// parsed visualization and the snapshot bytes travel with it in JSON only.
type ViewPoint struct {
	GUID              string             `xml:"Guid,attr,omitempty" json:"guid,omitempty"`
	Viewpoint         string             `xml:"Viewpoint,omitempty" json:"viewpoint,omitempty"`
	Snapshot          string             `xml:"Snapshot,omitempty" json:"snapshot,omitempty"`
	Index             *int               `xml:"Index,omitempty" json:"index,omitempty"`
	VisualizationInfo *VisualizationInfo `xml:"-" json:"visualizationInfo,omitempty"`
	SnapshotData      *model.FileData    `xml:"-" json:"snapshotData,omitempty"`
}

// VisualizationInfo is the content of a .bcfv file.
type VisualizationInfo struct {
	GUID              string             `xml:"Guid,attr,omitempty" json:"guid,omitempty"`
	Components        *Components        `xml:"Components,omitempty" json:"components,omitempty"`
	OrthogonalCamera  *OrthogonalCamera  `xml:"OrthogonalCamera,omitempty" json:"orthogonalCamera,omitempty"`
	PerspectiveCamera *PerspectiveCamera `xml:"PerspectiveCamera,omitempty" json:"perspectiveCamera,omitempty"`
	Lines             []Line             `xml:"Lines>Line" json:"lines,omitempty"`
	ClippingPlanes    []ClippingPlane    `xml:"ClippingPlanes>ClippingPlane" json:"clippingPlanes,omitempty"`
	Bitmaps           []Bitmap           `xml:"Bitmap" json:"bitmap,omitempty"`
}

type Components struct {
	ViewSetupHints *ViewSetupHints          `xml:"ViewSetupHints,omitempty" json:"viewSetupHints,omitempty"`
	Selection      []Component              `xml:"Selection>Component" json:"selection,omitempty"`
	Visibility     *ComponentVisibility     `xml:"Visibility,omitempty" json:"visibility,omitempty"`
	Coloring       []ComponentColoringColor `xml:"Coloring>Color" json:"coloring,omitempty"`
}

type ViewSetupHints struct {
	SpacesVisible          *bool `xml:"SpacesVisible,attr,omitempty" json:"spacesVisible,omitempty"`
	SpaceBoundariesVisible *bool `xml:"SpaceBoundariesVisible,attr,omitempty" json:"spaceBoundariesVisible,omitempty"`
	OpeningsVisible        *bool `xml:"OpeningsVisible,attr,omitempty" json:"openingsVisible,omitempty"`
}

type Component struct {
	IfcGUID           string `xml:"IfcGuid,attr,omitempty" json:"ifcGuid,omitempty"`
	OriginatingSystem string `xml:"OriginatingSystem,omitempty" json:"originatingSystem,omitempty"`
	AuthoringToolID   string `xml:"AuthoringToolId,omitempty" json:"authoringToolId,omitempty"`
}

type ComponentVisibility struct {
	DefaultVisibility *bool       `xml:"DefaultVisibility,attr,omitempty" json:"defaultVisibility,omitempty"`
	Exceptions        []Component `xml:"Exceptions>Component" json:"exceptions,omitempty"`
}

type ComponentColoringColor struct {
	Color      string      `xml:"Color,attr" json:"color"`
	Components []Component `xml:"Component" json:"component,omitempty"`
}

type Point struct {
	X float64 `xml:"X" json:"x"`
	Y float64 `xml:"Y" json:"y"`
	Z float64 `xml:"Z" json:"z"`
}

type Direction struct {
	X float64 `xml:"X" json:"x"`
	Y float64 `xml:"Y" json:"y"`
	Z float64 `xml:"Z" json:"z"`
}

type OrthogonalCamera struct {
	CameraViewPoint  Point     `xml:"CameraViewPoint" json:"cameraViewPoint"`
	CameraDirection  Direction `xml:"CameraDirection" json:"cameraDirection"`
	CameraUpVector   Direction `xml:"CameraUpVector" json:"cameraUpVector"`
	ViewToWorldScale *float64  `xml:"ViewToWorldScale,omitempty" json:"viewToWorldScale,omitempty"`
}

type PerspectiveCamera struct {
	CameraViewPoint Point     `xml:"CameraViewPoint" json:"cameraViewPoint"`
	CameraDirection Direction `xml:"CameraDirection" json:"cameraDirection"`
	CameraUpVector  Direction `xml:"CameraUpVector" json:"cameraUpVector"`
	FieldOfView     *float64  `xml:"FieldOfView,omitempty" json:"fieldOfView,omitempty"`
}

type Line struct {
	StartPoint Point `xml:"StartPoint" json:"startPoint"`
	EndPoint   Point `xml:"EndPoint" json:"endPoint"`
}

type ClippingPlane struct {
	Location  Point     `xml:"Location" json:"location"`
	Direction Direction `xml:"Direction" json:"direction"`
}

type Bitmap struct {
	Format    string    `xml:"Bitmap" json:"bitmap"`
	Reference string    `xml:"Reference" json:"reference"`
	Location  Point     `xml:"Location" json:"location"`
	Normal    Direction `xml:"Normal" json:"normal"`
	Up        Direction `xml:"Up" json:"up"`
	Height    float64   `xml:"Height" json:"height"`
}
