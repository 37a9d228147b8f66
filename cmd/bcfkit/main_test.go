package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bcfkit/internal/testsupport"
)

const (
	guidA = "11111111-1111-4111-8111-111111111111"
	guidB = "22222222-2222-4222-8222-222222222222"
)

// isolate points HOME and the working directory at temp dirs so no user or
// project config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	for _, key := range []string{"BCFKIT_LOG_LEVEL", "BCFKIT_LOG_FORMAT", "BCFKIT_WORKERS", "BCFKIT_TOPIC_ERROR_POLICY"} {
		t.Setenv(key, "")
	}
	work := filepath.Join(base, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	t.Chdir(work)
	return work
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	dir := isolate(t)
	source := testsupport.WriteZip(t, dir, "in.bcfzip", testsupport.Archive21(guidA, guidB))
	jsonDir := filepath.Join(dir, "json")
	target := filepath.Join(dir, "out.bcfzip")

	out, _, err := runCLI(t, "-s", source, "-t", jsonDir)
	if err != nil {
		t.Fatalf("archive to json: %v", err)
	}
	requireContains(t, out, "BCF 2.1")
	if _, err := os.Stat(filepath.Join(jsonDir, guidA+".json")); err != nil {
		t.Fatalf("expected topic unit: %v", err)
	}

	if _, _, err := runCLI(t, "--source", jsonDir, "--target", target, "--log-level", "debug"); err != nil {
		t.Fatalf("json to archive: %v", err)
	}
	entries := testsupport.ReadZip(t, target)
	for _, name := range []string{"bcf.version", guidA + "/markup.bcf", guidB + "/markup.bcf"} {
		if _, ok := entries[name]; !ok {
			t.Fatalf("expected entry %s", name)
		}
	}
}

func TestMissingFlagsNamed(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, "-t", "out")
	if err == nil {
		t.Fatal("expected error without --source")
	}
	requireContains(t, err.Error(), "source")

	_, _, err = runCLI(t, "-s", "in.bcfzip")
	if err == nil {
		t.Fatal("expected error without --target")
	}
	requireContains(t, err.Error(), "target")
}

func TestExplicitVersionRejectsOtherGeneration(t *testing.T) {
	dir := isolate(t)
	source := testsupport.WriteZip(t, dir, "in.bcfzip", testsupport.Archive30(guidA))

	_, _, err := runCLI(t, "-s", source, "-t", filepath.Join(dir, "json"), "-b", "2.1")
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	requireContains(t, err.Error(), "3.0")
	requireContains(t, err.Error(), "2.1")

	if _, _, err := runCLI(t, "-s", source, "-t", filepath.Join(dir, "json")); err != nil {
		t.Fatalf("detected conversion should succeed: %v", err)
	}

	if _, _, err := runCLI(t, "-s", source, "-t", filepath.Join(dir, "json2"), "-b", "4.0"); err == nil {
		t.Fatal("expected unsupported version for -b 4.0")
	}
}

func TestDetectAndInfo(t *testing.T) {
	dir := isolate(t)
	source := testsupport.WriteZip(t, dir, "in.bcfzip", testsupport.Archive30(guidB, guidA))

	out, _, err := runCLI(t, "detect", "--source", source)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if strings.TrimSpace(out) != "3.0" {
		t.Fatalf("detect printed %q", out)
	}

	out, _, err = runCLI(t, "info", "-s", source)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "GUID\tTitle") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], guidA+"\t") || !strings.HasPrefix(lines[2], guidB+"\t") {
		t.Fatalf("rows not in guid order:\n%s", out)
	}

	if _, _, err := runCLI(t, "detect", "--source", filepath.Join(dir, "missing.bcfzip")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := isolate(t)
	target := filepath.Join(dir, "conf", "bcfkit.toml")

	out, _, err := runCLI(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, "config", "init", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	out, _, err = runCLI(t, "config", "validate", "--config", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigFileDrivesPolicy(t *testing.T) {
	dir := isolate(t)
	files := testsupport.Archive21(guidA)
	files[guidB+"/markup.bcf"] = testsupport.Markup(guidB, "")
	source := testsupport.WriteZip(t, dir, "in.bcfzip", files)

	skip := testsupport.WriteConfig(t, testsupport.NewConfig(t))
	if _, _, err := runCLI(t, "-c", skip, "-s", source, "-t", filepath.Join(dir, "skip")); err != nil {
		t.Fatalf("skip policy: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "skip", guidB+".json")); !os.IsNotExist(err) {
		t.Fatalf("invalid topic should be skipped, stat err %v", err)
	}

	abort := testsupport.WriteConfig(t, testsupport.NewConfig(t, testsupport.WithPolicy("abort"), testsupport.WithWorkers(1)))
	_, _, err := runCLI(t, "-c", abort, "-s", source, "-t", filepath.Join(dir, "abort"))
	if err == nil {
		t.Fatal("abort policy should fail the conversion")
	}
	requireContains(t, err.Error(), "topic.title")
}
