package bcf21_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"bcfkit/internal/bcf21"
	"bcfkit/internal/bcferr"
	"bcfkit/internal/model"
	"bcfkit/internal/pipeline"
	"bcfkit/internal/testsupport"
	"bcfkit/internal/version"
)

const (
	topicA = "0f6d0f3a-2b4e-4f0e-9b1a-6b2f2b8f1a01"
	topicB = "7c1e5d2a-9a4f-4c3b-8e6d-1f2a3b4c5d02"
	vpA    = "a1b2c3d4-0000-4000-8000-000000000001"
)

const markupWithViewpoint = `<?xml version="1.0" encoding="UTF-8"?>
<Markup>
  <Topic Guid="` + topicA + `" TopicType="Issue" TopicStatus="Open">
    <ReferenceLink>https://example.com/issue/1</ReferenceLink>
    <Title>Clash at grid B4</Title>
    <Labels>Structure</Labels>
    <Labels>MEP</Labels>
    <CreationDate>2024-03-01T10:00:00Z</CreationDate>
    <CreationAuthor>jane@example.com</CreationAuthor>
    <DocumentReference Guid="d0c0e0f0-1111-4111-8111-000000000001" isExternal="false">
      <ReferencedDocument>../documents/spec.txt</ReferencedDocument>
      <Description>Design note</Description>
    </DocumentReference>
  </Topic>
  <Comment Guid="c0000000-0000-4000-8000-000000000001">
    <Date>2024-03-02T08:30:00Z</Date>
    <Author>sam@example.com</Author>
    <Comment>Moved the duct.</Comment>
    <Viewpoint Guid="` + vpA + `"/>
  </Comment>
  <Viewpoints Guid="` + vpA + `">
    <Viewpoint>viewpoint.bcfv</Viewpoint>
    <Snapshot>snapshot.png</Snapshot>
  </Viewpoints>
</Markup>`

const visinfo = `<?xml version="1.0" encoding="UTF-8"?>
<VisualizationInfo Guid="` + vpA + `">
  <Components>
    <Selection>
      <Component IfcGuid="2MF28NhmDBiRVyFakgdbCT"/>
    </Selection>
    <Visibility DefaultVisibility="true"/>
  </Components>
  <PerspectiveCamera>
    <CameraViewPoint><X>1</X><Y>2</Y><Z>3</Z></CameraViewPoint>
    <CameraDirection><X>0</X><Y>1</Y><Z>0</Z></CameraDirection>
    <CameraUpVector><X>0</X><Y>0</Y><Z>1</Z></CameraUpVector>
    <FieldOfView>60</FieldOfView>
  </PerspectiveCamera>
</VisualizationInfo>`

func richArchive() map[string]string {
	files := testsupport.Archive21(topicB)
	files["project.bcfp"] = `<?xml version="1.0" encoding="UTF-8"?>
<ProjectExtension>
  <Project ProjectId="p-1"><Name>Tower</Name></Project>
  <ExtensionSchema>extensions.xsd</ExtensionSchema>
</ProjectExtension>`
	files[topicA+"/markup.bcf"] = markupWithViewpoint
	files[topicA+"/viewpoint.bcfv"] = visinfo
	files[topicA+"/snapshot.png"] = string(testsupport.PNG)
	files["documents/spec.txt"] = "design note body"
	return files
}

func newConverter(policy pipeline.Policy) *bcf21.Converter {
	return bcf21.NewConverter(pipeline.Options{Workers: 4, Policy: policy})
}

func buildFile(t *testing.T, c *bcf21.Converter, path string) *bcf21.Bcf {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	g, err := c.BuildFromArchive(context.Background(), f, info.Size())
	if err != nil {
		t.Fatalf("BuildFromArchive(%s): %v", path, err)
	}
	b, ok := g.(*bcf21.Bcf)
	if !ok {
		t.Fatalf("expected *bcf21.Bcf, got %T", g)
	}
	return b
}

var graphOpts = cmp.Options{
	cmpopts.SortSlices(func(a, b *bcf21.Markup) bool { return a.GUID() < b.GUID() }),
	cmpopts.EquateEmpty(),
}

func TestRoundTripPreservesGraph(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteZip(t, dir, "in.bcfzip", richArchive())
	jsonDir := filepath.Join(dir, "json")
	target := filepath.Join(dir, "out.bcfzip")

	c := newConverter(pipeline.PolicySkip)
	ctx := context.Background()
	if err := c.BcfToJSON(ctx, source, jsonDir); err != nil {
		t.Fatalf("BcfToJSON: %v", err)
	}
	if err := c.JSONToBcf(ctx, jsonDir, target); err != nil {
		t.Fatalf("JSONToBcf: %v", err)
	}

	want := buildFile(t, c, source)
	got := buildFile(t, c, target)
	if diff := cmp.Diff(want, got, graphOpts); diff != "" {
		t.Fatalf("graph changed across round trip (-want +got):\n%s", diff)
	}

	entries := testsupport.ReadZip(t, target)
	for _, name := range []string{
		"bcf.version",
		"project.bcfp",
		topicA + "/markup.bcf",
		topicA + "/viewpoint.bcfv",
		topicA + "/snapshot.png",
		topicB + "/markup.bcf",
		"documents/spec.txt",
	} {
		if _, ok := entries[name]; !ok {
			t.Fatalf("expected entry %s in output, got %v", name, keys(entries))
		}
	}
	if !bytes.Equal(entries[topicA+"/snapshot.png"], testsupport.PNG) {
		t.Fatalf("snapshot bytes changed")
	}
	if string(entries["documents/spec.txt"]) != "design note body" {
		t.Fatalf("document bytes changed: %q", entries["documents/spec.txt"])
	}
}

func TestBcfToJSONWritesUnits(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteZip(t, dir, "in.bcfzip", richArchive())
	jsonDir := filepath.Join(dir, "json")

	if err := newConverter(pipeline.PolicySkip).BcfToJSON(context.Background(), source, jsonDir); err != nil {
		t.Fatalf("BcfToJSON: %v", err)
	}

	for _, unit := range []string{"version.json", "project.json", topicA + ".json", topicB + ".json"} {
		if _, err := os.Stat(filepath.Join(jsonDir, unit)); err != nil {
			t.Fatalf("expected unit %s: %v", unit, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(jsonDir, topicA+".json"))
	if err != nil {
		t.Fatalf("read unit: %v", err)
	}
	var unit struct {
		Topic struct {
			GUID   string   `json:"guid"`
			Labels []string `json:"labels"`
		} `json:"topic"`
		Viewpoints []struct {
			SnapshotData *model.FileData `json:"snapshotData"`
		} `json:"viewpoints"`
	}
	if err := json.Unmarshal(raw, &unit); err != nil {
		t.Fatalf("decode unit: %v", err)
	}
	if unit.Topic.GUID != topicA || len(unit.Topic.Labels) != 2 {
		t.Fatalf("unexpected topic: %+v", unit.Topic)
	}
	if len(unit.Viewpoints) != 1 || unit.Viewpoints[0].SnapshotData == nil {
		t.Fatalf("expected inline snapshot, got %+v", unit.Viewpoints)
	}
	if got := unit.Viewpoints[0].SnapshotData.Mime; got != "data:image/png;base64" {
		t.Fatalf("snapshot mime = %q", got)
	}
}

func TestTopicWithoutGUIDIsSkippedUnderEveryPolicy(t *testing.T) {
	files := testsupport.Archive21(topicA)
	files["orphan/markup.bcf"] = testsupport.MarkupWithoutGUID
	source := testsupport.WriteZip(t, t.TempDir(), "in.bcfzip", files)

	for _, policy := range []pipeline.Policy{pipeline.PolicySkip, pipeline.PolicyAbort} {
		b := buildFile(t, newConverter(policy), source)
		if len(b.Markups) != 1 || b.Markups[0].GUID() != topicA {
			t.Fatalf("policy %s: expected only %s, got %d markups", policy, topicA, len(b.Markups))
		}
	}
}

func TestInvalidTopicFollowsPolicy(t *testing.T) {
	files := testsupport.Archive21(topicA)
	files[topicB+"/markup.bcf"] = testsupport.Markup(topicB, "")
	source := testsupport.WriteZip(t, t.TempDir(), "in.bcfzip", files)

	b := buildFile(t, newConverter(pipeline.PolicySkip), source)
	if len(b.Markups) != 1 || b.Markups[0].GUID() != topicA {
		t.Fatalf("skip: expected only %s, got %+v", topicA, b.Topics())
	}

	target := filepath.Join(t.TempDir(), "json")
	err := newConverter(pipeline.PolicyAbort).BcfToJSON(context.Background(), source, target)
	if !errors.Is(err, bcferr.ErrValidation) {
		t.Fatalf("abort: expected validation error, got %v", err)
	}
	var verr *bcferr.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0] != "topic.title" {
		t.Fatalf("expected topic.title violation, got %v", err)
	}
}

func TestRejectsOtherGeneration(t *testing.T) {
	source := testsupport.WriteZip(t, t.TempDir(), "in.bcfzip", testsupport.Archive30(topicA))

	err := newConverter(pipeline.PolicySkip).BcfToJSON(context.Background(), source, filepath.Join(t.TempDir(), "out"))
	var mismatch *bcferr.VersionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
	if mismatch.Detected != "3.0" || mismatch.Requested != "2.1" {
		t.Fatalf("unexpected mismatch %+v", mismatch)
	}
	if !errors.Is(err, bcferr.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version marker")
	}
}

type foreignGraph struct{}

func (foreignGraph) SchemaVersion() version.Version { return version.V30 }
func (foreignGraph) Topics() []model.TopicSummary   { return nil }

func TestWritersRejectForeignGraph(t *testing.T) {
	c := newConverter(pipeline.PolicySkip)
	err := c.ToBcf(context.Background(), foreignGraph{}, filepath.Join(t.TempDir(), "out.bcfzip"))
	if !errors.Is(err, bcferr.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version, got %v", err)
	}
	if err := c.ToJSON(context.Background(), nil, t.TempDir()); !errors.Is(err, bcferr.ErrValidation) {
		t.Fatalf("expected validation error for nil graph, got %v", err)
	}
}

func TestToBcfStreamDerivesAttachmentNames(t *testing.T) {
	fov := 45.0
	g := &bcf21.Bcf{Markups: []*bcf21.Markup{{
		Topic: &bcf21.Topic{
			GUID:           topicA,
			Title:          "Derived",
			CreationDate:   "2024-03-01T10:00:00Z",
			CreationAuthor: "jane@example.com",
		},
		Viewpoints: []bcf21.ViewPoint{{
			GUID: vpA,
			VisualizationInfo: &bcf21.VisualizationInfo{
				GUID: vpA,
				PerspectiveCamera: &bcf21.PerspectiveCamera{
					CameraDirection: bcf21.Direction{Y: 1},
					CameraUpVector:  bcf21.Direction{Z: 1},
					FieldOfView:     &fov,
				},
			},
			SnapshotData: model.NewFileData("snap.png", testsupport.PNG),
		}},
	}}}

	var buf bytes.Buffer
	if err := newConverter(pipeline.PolicyAbort).ToBcfStream(context.Background(), g, &buf); err != nil {
		t.Fatalf("ToBcfStream: %v", err)
	}
	if g.Markups[0].Viewpoints[0].Viewpoint != "" {
		t.Fatalf("writer must not modify the graph")
	}

	path := filepath.Join(t.TempDir(), "out.bcfzip")
	testsupport.WriteFile(t, path, buf.Bytes())
	entries := testsupport.ReadZip(t, path)
	for _, name := range []string{"bcf.version", topicA + "/markup.bcf", topicA + "/" + vpA + ".bcfv", topicA + "/" + vpA + ".png"} {
		if _, ok := entries[name]; !ok {
			t.Fatalf("expected entry %s, got %v", name, keys(entries))
		}
	}

	back := buildFile(t, newConverter(pipeline.PolicyAbort), path)
	vp := back.Markups[0].Viewpoints[0]
	if vp.VisualizationInfo == nil || vp.VisualizationInfo.PerspectiveCamera == nil || *vp.VisualizationInfo.PerspectiveCamera.FieldOfView != 45 {
		t.Fatalf("visualization info lost: %+v", vp)
	}
}

func TestDuplicateGUIDsWriteOneTopic(t *testing.T) {
	topic := func(title string) *bcf21.Markup {
		return &bcf21.Markup{Topic: &bcf21.Topic{
			GUID:           topicA,
			Title:          title,
			CreationDate:   "2024-03-01T10:00:00Z",
			CreationAuthor: "jane@example.com",
		}}
	}
	g := &bcf21.Bcf{Markups: []*bcf21.Markup{topic("first"), topic("second")}}

	target := t.TempDir()
	if err := newConverter(pipeline.PolicySkip).ToJSON(context.Background(), g, target); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := newConverter(pipeline.PolicySkip).BuildFromJSON(context.Background(), target)
	if err != nil {
		t.Fatalf("BuildFromJSON: %v", err)
	}
	if n := len(back.Topics()); n != 1 {
		t.Fatalf("expected one topic, got %d", n)
	}
}

func TestReservedGUIDRejected(t *testing.T) {
	g := &bcf21.Bcf{Markups: []*bcf21.Markup{{Topic: &bcf21.Topic{
		GUID:           "project",
		Title:          "clash",
		CreationDate:   "2024-03-01T10:00:00Z",
		CreationAuthor: "jane@example.com",
	}}}}
	err := newConverter(pipeline.PolicyAbort).ToJSON(context.Background(), g, t.TempDir())
	if !errors.Is(err, bcferr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMissingVersionUnit(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, topicA+".json"), []byte(`{"topic":{"guid":"`+topicA+`"}}`))

	_, err := newConverter(pipeline.PolicySkip).BuildFromJSON(context.Background(), dir)
	if !errors.Is(err, bcferr.ErrMalformedJSON) {
		t.Fatalf("expected malformed json, got %v", err)
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
