package filter

import (
	"testing"

	"github.com/jbodctl/jbodctl/internal/model"
)

func files() []model.FileRecord {
	return []model.FileRecord{
		{AbsolutePath: "/mnt/a/movies/x.mkv", RelativePath: "movies/x.mkv", SizeBytes: 1000, SourceVolume: "/mnt/a"},
		{AbsolutePath: "/mnt/a/photos/y.jpg", RelativePath: "photos/y.jpg", SizeBytes: 10, SourceVolume: "/mnt/a"},
		{AbsolutePath: "/mnt/a/tmp/z.tmp", RelativePath: "tmp/z.tmp", SizeBytes: 500, SourceVolume: "/mnt/a"},
	}
}

func TestApplyMinSize(t *testing.T) {
	out, err := Apply(files(), Criteria{MinSizeBytes: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d files, want 2", len(out))
	}
}

func TestApplyNegativeMinSizeErrors(t *testing.T) {
	if _, err := Apply(files(), Criteria{MinSizeBytes: -1}); err == nil {
		t.Fatal("expected error for negative MinSizeBytes")
	}
}

func TestApplyPathPrefixTwoWayMatch(t *testing.T) {
	out, err := Apply(files(), Criteria{PathPrefixes: []string{"movies"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].RelativePath != "movies/x.mkv" {
		t.Fatalf("relative-path prefix match failed: %+v", out)
	}

	out, err = Apply(files(), Criteria{PathPrefixes: []string{"/mnt/a/photos"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].RelativePath != "photos/y.jpg" {
		t.Fatalf("absolute-path prefix match failed: %+v", out)
	}
}

func TestApplyIncludeExclude(t *testing.T) {
	out, err := Apply(files(), Criteria{
		IncludePatterns: []string{"*.mkv", "*.jpg"},
		ExcludePatterns: []string{"*.tmp"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d files, want 2: %+v", len(out), out)
	}
}

func TestApplyOrderPreserved(t *testing.T) {
	out, _ := Apply(files(), Criteria{})
	for i, f := range files() {
		if out[i].AbsolutePath != f.AbsolutePath {
			t.Fatalf("order not preserved at index %d", i)
		}
	}
}
