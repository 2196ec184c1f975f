package scan

import (
	"testing"

	"github.com/sverlaine/mediadup/pkg/models"
)

func fileList(paths ...string) []*models.MediaFile {
	files := make([]*models.MediaFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, &models.MediaFile{Path: p, Tree: models.TreeSource, Kind: models.KindPhoto})
	}
	return files
}

func pathsOf(files []*models.MediaFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestFilter(t *testing.T) {
	input := fileList(
		"/photos/2024/a.jpg",
		"/photos/2024/exports/b.jpg",
		"/photos/backup/c.jpg",
		"/photos/d.heic",
	)

	tests := []struct {
		name     string
		patterns []string
		flip     bool
		want     []string
	}{
		{
			name:     "no patterns is a no-op",
			patterns: nil,
			want: []string{
				"/photos/2024/a.jpg",
				"/photos/2024/exports/b.jpg",
				"/photos/backup/c.jpg",
				"/photos/d.heic",
			},
		},
		{
			name:     "no patterns with flip is still a no-op",
			patterns: []string{},
			flip:     true,
			want: []string{
				"/photos/2024/a.jpg",
				"/photos/2024/exports/b.jpg",
				"/photos/backup/c.jpg",
				"/photos/d.heic",
			},
		},
		{
			name:     "substring exclusion",
			patterns: []string{"exports"},
			want: []string{
				"/photos/2024/a.jpg",
				"/photos/backup/c.jpg",
				"/photos/d.heic",
			},
		},
		{
			name:     "glob on base name",
			patterns: []string{"*.heic"},
			want: []string{
				"/photos/2024/a.jpg",
				"/photos/2024/exports/b.jpg",
				"/photos/backup/c.jpg",
			},
		},
		{
			name:     "flip retains only matches",
			patterns: []string{"2024"},
			flip:     true,
			want: []string{
				"/photos/2024/a.jpg",
				"/photos/2024/exports/b.jpg",
			},
		},
		{
			name:     "matching is case-sensitive",
			patterns: []string{"EXPORTS"},
			want: []string{
				"/photos/2024/a.jpg",
				"/photos/2024/exports/b.jpg",
				"/photos/backup/c.jpg",
				"/photos/d.heic",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pathsOf(Filter(input, tt.patterns, tt.flip))
			if len(got) != len(tt.want) {
				t.Fatalf("retained %d files, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("retained[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestFilterFlipInversion verifies that with a non-empty pattern set,
// flipping the filter retains exactly the complement set.
func TestFilterFlipInversion(t *testing.T) {
	input := fileList(
		"/a/keep.jpg",
		"/a/skip-me.jpg",
		"/b/keep.jpg",
		"/b/old/skip.jpg",
	)
	patterns := []string{"skip"}

	kept := Filter(input, patterns, false)
	flipped := Filter(input, patterns, true)

	if len(kept)+len(flipped) != len(input) {
		t.Fatalf("partition sizes %d + %d != %d", len(kept), len(flipped), len(input))
	}

	seen := make(map[string]bool)
	for _, f := range kept {
		seen[f.Path] = true
	}
	for _, f := range flipped {
		if seen[f.Path] {
			t.Errorf("file %s retained by both filter directions", f.Path)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		kind models.MediaKind
		ok   bool
	}{
		{"a.jpg", models.KindPhoto, true},
		{"a.JPEG", models.KindPhoto, true},
		{"a.heic", models.KindPhoto, true},
		{"clip.MOV", models.KindVideo, true},
		{"clip.mp4", models.KindVideo, true},
		{"notes.txt", "", false},
		{"archive.tar", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, ok := Classify(tt.path)
			if ok != tt.ok || kind != tt.kind {
				t.Errorf("Classify(%s) = (%s, %v), want (%s, %v)", tt.path, kind, ok, tt.kind, tt.ok)
			}
		})
	}
}
