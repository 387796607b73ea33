package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jbodctl/jbodctl/internal/pack"
)

func writeOptionsFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jbodctl.hujson")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write options file: %v", err)
	}
	return path
}

func TestLoadParsesCommentedHuJSON(t *testing.T) {
	path := writeOptionsFile(t, `{
  // only consolidate media libraries
  "min_size": "1MiB",
  "path_prefixes": ["media/"],
  "policy": "first-fit",
  "k_max": 2,
}`)

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if opts.MinSize != "1MiB" {
		t.Errorf("expected min_size 1MiB, got %q", opts.MinSize)
	}
	if len(opts.PathPrefixes) != 1 || opts.PathPrefixes[0] != "media/" {
		t.Errorf("expected path prefix media/, got %v", opts.PathPrefixes)
	}
	if opts.Policy != "first-fit" {
		t.Errorf("expected policy first-fit, got %q", opts.Policy)
	}
	if opts.KMax != 2 {
		t.Errorf("expected k_max 2, got %d", opts.KMax)
	}
}

func writeYAMLOptionsFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "jbodctl.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write options file: %v", err)
	}
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeYAMLOptionsFile(t, `
min_size: 1MiB
path_prefixes:
  - media/
policy: first-fit
k_max: 2
`)

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if opts.MinSize != "1MiB" {
		t.Errorf("expected min_size 1MiB, got %q", opts.MinSize)
	}
	if len(opts.PathPrefixes) != 1 || opts.PathPrefixes[0] != "media/" {
		t.Errorf("expected path prefix media/, got %v", opts.PathPrefixes)
	}
	if opts.Policy != "first-fit" {
		t.Errorf("expected policy first-fit, got %q", opts.Policy)
	}
	if opts.KMax != 2 {
		t.Errorf("expected k_max 2, got %d", opts.KMax)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.hujson")); err == nil {
		t.Fatal("expected an error for a missing options file")
	}
}

func TestToPlannerOptionsAppliesOverridesOverDefaults(t *testing.T) {
	opts := PlanOptions{
		MinSize:         "2MiB",
		FolderThreshold: 0.5,
		Policy:          "first-fit",
		KMax:            7,
	}

	planOpts, err := opts.ToPlannerOptions()
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if planOpts.Filter.MinSizeBytes != 2*1024*1024 {
		t.Errorf("expected 2MiB in bytes, got %d", planOpts.Filter.MinSizeBytes)
	}
	if planOpts.Group.FolderThreshold != 0.5 {
		t.Errorf("expected folder threshold override 0.5, got %v", planOpts.Group.FolderThreshold)
	}
	if planOpts.Pack.Policy != pack.FirstFit {
		t.Errorf("expected first-fit policy, got %v", planOpts.Pack.Policy)
	}
	if planOpts.Pack.KMax != 7 {
		t.Errorf("expected k_max override 7, got %d", planOpts.Pack.KMax)
	}
}

func TestToPlannerOptionsLeavesDefaultsWhenUnset(t *testing.T) {
	planOpts, err := PlanOptions{}.ToPlannerOptions()
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if planOpts.Pack.Policy != pack.BestFit {
		t.Errorf("expected default best-fit policy, got %v", planOpts.Pack.Policy)
	}
	if planOpts.Pack.KMax != 4 {
		t.Errorf("expected default k_max 4, got %d", planOpts.Pack.KMax)
	}
}

func TestToPlannerOptionsRejectsUnknownPolicy(t *testing.T) {
	if _, err := (PlanOptions{Policy: "random-fit"}).ToPlannerOptions(); err == nil {
		t.Fatal("expected an error for an unrecognized policy")
	}
}
