package rank

import (
	"testing"

	"github.com/jbodctl/jbodctl/internal/model"
)

func TestRankDropsEmptyVolumesAndSortsByUsedRatio(t *testing.T) {
	volumes := []model.VolumeState{
		{Path: "/b", TotalBytes: 1000, FreeBytes: 100}, // ratio 0.9
		{Path: "/a", TotalBytes: 1000, FreeBytes: 500}, // ratio 0.5
		{Path: "/c", TotalBytes: 1000, FreeBytes: 900}, // ratio 0.1, but no files
	}
	files := []model.FileRecord{
		{AbsolutePath: "/a/1", SourceVolume: "/a", SizeBytes: 1},
		{AbsolutePath: "/b/1", SourceVolume: "/b", SizeBytes: 1},
	}

	ranked := Rank(volumes, files)
	if len(ranked) != 2 {
		t.Fatalf("got %d ranked volumes, want 2 (volume /c has no files)", len(ranked))
	}
	if ranked[0].Volume.Path != "/a" || ranked[1].Volume.Path != "/b" {
		t.Fatalf("wrong order: %+v", ranked)
	}
}

func TestRankTieBreakByPath(t *testing.T) {
	volumes := []model.VolumeState{
		{Path: "/z", TotalBytes: 1000, FreeBytes: 500},
		{Path: "/a", TotalBytes: 1000, FreeBytes: 500},
	}
	files := []model.FileRecord{
		{AbsolutePath: "/z/1", SourceVolume: "/z", SizeBytes: 1},
		{AbsolutePath: "/a/1", SourceVolume: "/a", SizeBytes: 1},
	}
	ranked := Rank(volumes, files)
	if ranked[0].Volume.Path != "/a" {
		t.Fatalf("tie-break failed, got order: %+v", ranked)
	}
}
