package convert_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bcfkit/internal/archive"
	"bcfkit/internal/bcf21"
	"bcfkit/internal/bcf30"
	"bcfkit/internal/bcferr"
	"bcfkit/internal/convert"
	"bcfkit/internal/pipeline"
	"bcfkit/internal/testsupport"
	"bcfkit/internal/version"
)

const (
	guidA = "11111111-1111-4111-8111-111111111111"
	guidB = "22222222-2222-4222-8222-222222222222"
)

func opts() convert.Options {
	return convert.Options{Workers: 4}
}

func TestConvertRoundTripsBothGenerations(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		want  version.Version
	}{
		{name: "2.1", files: testsupport.Archive21(guidA, guidB), want: version.V21},
		{name: "3.0", files: testsupport.Archive30(guidA, guidB), want: version.V30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			source := testsupport.WriteZip(t, dir, "in.bcfzip", tc.files)
			jsonDir := filepath.Join(dir, "json")
			target := filepath.Join(dir, "out.bcfzip")

			d := convert.New(opts())
			if d.Version() != version.Unknown {
				t.Fatalf("new dispatcher should be unresolved")
			}
			ctx := context.Background()
			if err := d.Convert(ctx, source, jsonDir); err != nil {
				t.Fatalf("Convert archive: %v", err)
			}
			if d.Version() != tc.want {
				t.Fatalf("bound to %s, want %s", d.Version(), tc.want)
			}
			if err := d.Convert(ctx, jsonDir, target); err != nil {
				t.Fatalf("Convert json: %v", err)
			}

			got, err := d.GetVersion(ctx, target)
			if err != nil || got != tc.want {
				t.Fatalf("GetVersion = %s, %v", got, err)
			}

			want, err := d.BuildFromFile(ctx, source)
			if err != nil {
				t.Fatalf("BuildFromFile(source): %v", err)
			}
			back, err := d.BuildFromFile(ctx, target)
			if err != nil {
				t.Fatalf("BuildFromFile(target): %v", err)
			}
			if diff := cmp.Diff(want.Topics(), back.Topics()); diff != "" {
				t.Fatalf("topics changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoundDispatcherRejectsOtherGeneration(t *testing.T) {
	dir := t.TempDir()
	src21 := testsupport.WriteZip(t, dir, "a.bcfzip", testsupport.Archive21(guidA))
	src30 := testsupport.WriteZip(t, dir, "b.bcfzip", testsupport.Archive30(guidA))

	d, err := convert.NewForVersion(version.V21, opts())
	if err != nil {
		t.Fatalf("NewForVersion: %v", err)
	}
	err = d.Convert(context.Background(), src30, filepath.Join(dir, "out30"))
	var mismatch *bcferr.VersionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if mismatch.Detected != "3.0" || mismatch.Requested != "2.1" {
		t.Fatalf("unexpected mismatch %+v", mismatch)
	}

	lazy := convert.New(opts())
	if err := lazy.Convert(context.Background(), src21, filepath.Join(dir, "out21")); err != nil {
		t.Fatalf("Convert 2.1: %v", err)
	}
	if err := lazy.Convert(context.Background(), src30, filepath.Join(dir, "out30b")); !errors.Is(err, bcferr.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version after binding, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out30b")); !os.IsNotExist(err) {
		t.Fatalf("rejected conversion must not create output, stat err %v", err)
	}
}

func TestNewForVersionRejectsUnknown(t *testing.T) {
	if _, err := convert.NewForVersion(version.Unknown, opts()); !errors.Is(err, bcferr.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version, got %v", err)
	}
}

func TestInvalidSources(t *testing.T) {
	dir := t.TempDir()
	d := convert.New(opts())
	ctx := context.Background()

	err := d.Convert(ctx, filepath.Join(dir, "missing.bcfzip"), filepath.Join(dir, "out"))
	if !errors.Is(err, bcferr.ErrInvalidPath) {
		t.Fatalf("missing source: expected invalid path, got %v", err)
	}
	if got := bcferr.Kind(err); got != "invalid_path" {
		t.Fatalf("kind = %q", got)
	}

	text := filepath.Join(dir, "notes.txt")
	testsupport.WriteFile(t, text, []byte("not an archive"))
	if err := d.Convert(ctx, text, filepath.Join(dir, "out")); !errors.Is(err, bcferr.ErrMalformedArchive) {
		t.Fatalf("text source: expected malformed archive, got %v", err)
	}

	noExt := filepath.Join(dir, "export")
	testsupport.WriteFile(t, noExt, testsupport.ZipBytes(t, testsupport.Archive21(guidA)))
	if err := d.Convert(ctx, noExt, filepath.Join(dir, "json")); err != nil {
		t.Fatalf("zip signature should be detected: %v", err)
	}

	if _, err := d.GetVersion(ctx, filepath.Join(dir, "nope")); !errors.Is(err, bcferr.ErrInvalidPath) {
		t.Fatalf("GetVersion: expected invalid path, got %v", err)
	}
}

func TestTopicWithoutIdentifierNeverPersisted(t *testing.T) {
	dir := t.TempDir()
	files := testsupport.Archive21("T1")
	files["untitled/markup.bcf"] = testsupport.MarkupWithoutGUID
	source := testsupport.WriteZip(t, dir, "in.bcfzip", files)
	jsonDir := filepath.Join(dir, "json")
	target := filepath.Join(dir, "out.bcfzip")

	for _, policy := range []pipeline.Policy{pipeline.PolicySkip, pipeline.PolicyAbort} {
		d := convert.New(convert.Options{Policy: policy})
		if err := d.Convert(context.Background(), source, jsonDir); err != nil {
			t.Fatalf("%s: archive to json: %v", policy, err)
		}
		units := listDir(t, jsonDir)
		if diff := cmp.Diff([]string{"T1.json", "version.json"}, units); diff != "" {
			t.Fatalf("%s: json units (-want +got):\n%s", policy, diff)
		}

		if err := d.Convert(context.Background(), jsonDir, target); err != nil {
			t.Fatalf("%s: json to archive: %v", policy, err)
		}
		f, err := os.Open(target)
		if err != nil {
			t.Fatalf("open target: %v", err)
		}
		info, _ := f.Stat()
		r, err := archive.NewReader(f, info.Size())
		if err != nil {
			f.Close()
			t.Fatalf("read target: %v", err)
		}
		topics := r.Topics()
		f.Close()
		if len(topics) != 1 || topics[0].ID != "T1" {
			t.Fatalf("%s: expected one topic folder T1, got %d", policy, len(topics))
		}
	}
}

func TestReusedJSONTargetHoldsOnlyNewTopics(t *testing.T) {
	cases := []struct {
		name  string
		build func(...string) map[string]string
	}{
		{name: "2.1", build: testsupport.Archive21},
		{name: "3.0", build: testsupport.Archive30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			both := testsupport.WriteZip(t, dir, "both.bcfzip", tc.build(guidA, guidB))
			only := testsupport.WriteZip(t, dir, "only.bcfzip", tc.build(guidA))
			jsonDir := filepath.Join(dir, "json")
			target := filepath.Join(dir, "out.bcfzip")
			ctx := context.Background()

			d := convert.New(opts())
			if err := d.Convert(ctx, both, jsonDir); err != nil {
				t.Fatalf("first conversion: %v", err)
			}
			if err := d.Convert(ctx, only, jsonDir); err != nil {
				t.Fatalf("second conversion: %v", err)
			}
			for _, name := range listDir(t, jsonDir) {
				if name == guidB+".json" {
					t.Fatalf("stale unit %s left in %v", name, listDir(t, jsonDir))
				}
			}

			if err := d.Convert(ctx, jsonDir, target); err != nil {
				t.Fatalf("json to archive: %v", err)
			}
			want, err := d.BuildFromFile(ctx, only)
			if err != nil {
				t.Fatalf("BuildFromFile(only): %v", err)
			}
			got, err := d.BuildFromFile(ctx, target)
			if err != nil {
				t.Fatalf("BuildFromFile(target): %v", err)
			}
			if diff := cmp.Diff(want.Topics(), got.Topics()); diff != "" {
				t.Fatalf("topics changed (-want +got):\n%s", diff)
			}

			siblings := listDir(t, dir)
			if diff := cmp.Diff([]string{"both.bcfzip", "json", "only.bcfzip", "out.bcfzip"}, siblings); diff != "" {
				t.Fatalf("unexpected files next to target (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConcurrentBatchMatchesSequential(t *testing.T) {
	const n = 8
	dir := t.TempDir()
	sources := make([]string, n)
	for i := range sources {
		guids := []string{fmt.Sprintf("%08d-0000-4000-8000-000000000000", i), guidA, guidB}
		sources[i] = testsupport.WriteZip(t, dir, fmt.Sprintf("in%d.bcfzip", i), testsupport.Archive21(guids...))
	}

	sequential := make([]map[string]string, n)
	for i, source := range sources {
		out := filepath.Join(dir, "seq", fmt.Sprint(i))
		if err := convert.New(opts()).Convert(context.Background(), source, out); err != nil {
			t.Fatalf("sequential %d: %v", i, err)
		}
		sequential[i] = readDir(t, out)
	}

	d := convert.New(opts())
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, source := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = d.Convert(context.Background(), source, filepath.Join(dir, "par", fmt.Sprint(i)))
		}()
	}
	wg.Wait()

	for i := range sources {
		if errs[i] != nil {
			t.Fatalf("concurrent %d: %v", i, errs[i])
		}
		got := readDir(t, filepath.Join(dir, "par", fmt.Sprint(i)))
		if diff := cmp.Diff(sequential[i], got); diff != "" {
			t.Fatalf("output %d differs (-sequential +concurrent):\n%s", i, diff)
		}
	}
}

func TestStreamsAndGraphWriters(t *testing.T) {
	ctx := context.Background()
	data := testsupport.ZipBytes(t, testsupport.Archive30(guidA))

	d := convert.New(opts())
	g, err := d.BuildFromStream(ctx, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("BuildFromStream: %v", err)
	}
	if _, ok := g.(*bcf30.Bcf); !ok {
		t.Fatalf("expected *bcf30.Bcf, got %T", g)
	}

	var buf bytes.Buffer
	if err := d.ToBcfStream(ctx, g, &buf); err != nil {
		t.Fatalf("ToBcfStream: %v", err)
	}
	back, err := d.BuildFromStream(ctx, &buf)
	if err != nil {
		t.Fatalf("BuildFromStream(round trip): %v", err)
	}
	if diff := cmp.Diff(g.Topics(), back.Topics()); diff != "" {
		t.Fatalf("topics changed (-want +got):\n%s", diff)
	}

	if err := d.ToJSON(ctx, &bcf21.Bcf{}, t.TempDir()); !errors.Is(err, bcferr.ErrUnsupportedVersion) {
		t.Fatalf("2.1 graph on 3.0 dispatcher: expected unsupported version, got %v", err)
	}
	if err := d.ToBcf(ctx, nil, filepath.Join(t.TempDir(), "x.bcfzip")); !errors.Is(err, bcferr.ErrValidation) {
		t.Fatalf("nil graph: expected validation error, got %v", err)
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	for _, name := range listDir(t, dir) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		out[name] = string(data)
	}
	return out
}
