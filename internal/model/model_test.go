package model

import (
	"bytes"
	"errors"
	"testing"

	"bcfkit/internal/bcferr"
)

func TestFileDataRoundTrip(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	fd := NewFileData("snapshot.png", png)
	if fd.Mime != "data:image/png;base64" {
		t.Fatalf("unexpected mime %q", fd.Mime)
	}
	if fd.MediaType() != "image/png" || fd.Extension() != ".png" {
		t.Fatalf("unexpected media type %q ext %q", fd.MediaType(), fd.Extension())
	}
	got, err := fd.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(got, png) {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestFileDataSniffsUnknownExtension(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	fd := NewFileData("snapshot", png)
	if fd.MediaType() != "image/png" {
		t.Fatalf("expected sniffed png, got %q", fd.MediaType())
	}
}

func TestFileDataWithoutMimeDecodes(t *testing.T) {
	fd := &FileData{Data: "aGVsbG8="}
	got, err := fd.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	if fd.MediaType() != "application/octet-stream" {
		t.Fatalf("unexpected default media type %q", fd.MediaType())
	}
}

func TestIDRules(t *testing.T) {
	loose := IDRules{}
	strict := IDRules{StrictGUIDs: true}
	cases := []struct {
		id            string
		loose, strict bool
	}{
		{"T1", true, false},
		{"3ffb4df2-0187-49a9-8a4a-23992696bafd", true, true},
		{"", false, false},
		{" T1", false, false},
		{"..", false, false},
		{"a/b", false, false},
		{`a\b`, false, false},
	}
	for _, tc := range cases {
		if got := loose.Valid(tc.id); got != tc.loose {
			t.Fatalf("loose.Valid(%q) = %v, want %v", tc.id, got, tc.loose)
		}
		if got := strict.Valid(tc.id); got != tc.strict {
			t.Fatalf("strict.Valid(%q) = %v, want %v", tc.id, got, tc.strict)
		}
	}
}

func TestValidDate(t *testing.T) {
	for _, value := range []string{"2024-03-01T10:00:00Z", "2024-03-01T10:00:00.123+02:00", "2024-03-01T10:00:00", "2024-03-01"} {
		if !ValidDate(value) {
			t.Fatalf("expected %q to parse", value)
		}
	}
	for _, value := range []string{"", "yesterday", "2024-13-01T00:00:00Z"} {
		if ValidDate(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestViolationsCollectEveryField(t *testing.T) {
	var v Violations
	if err := v.Err("p", "markup"); err != nil {
		t.Fatalf("expected nil error for no violations, got %v", err)
	}
	v.Require("topic.title", " ")
	v.Date("topic.creationDate", "not a date")
	v.OptionalDate("topic.dueDate", "")
	v.ID("topic.guid", "a/b", IDRules{})
	v.Unique("viewpoints.guid", []string{"v1", "v2", "v1", "", ""})
	err := v.Err("T1/markup.bcf", "markup")

	var verr *bcferr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"topic.title", "topic.creationDate", "topic.guid", "viewpoints.guid[v1]"}
	if len(verr.Fields) != len(want) {
		t.Fatalf("fields = %v, want %v", verr.Fields, want)
	}
	for i := range want {
		if verr.Fields[i] != want[i] {
			t.Fatalf("fields = %v, want %v", verr.Fields, want)
		}
	}
}
