package match

import (
	"context"
	"testing"
	"time"

	"github.com/sverlaine/mediadup/pkg/fingerprint"
	"github.com/sverlaine/mediadup/pkg/models"
)

func entry(t *testing.T, b *fingerprint.Builder, file *models.MediaFile, record *models.MetadataRecord) Entry {
	t.Helper()
	fp, err := b.Build(file, record)
	if err != nil {
		t.Fatalf("fingerprint for %s failed: %v", file.Path, err)
	}
	return Entry{File: file, Record: record, Fingerprint: fp}
}

func photo(path string, tree models.Tree, size int64) *models.MediaFile {
	return &models.MediaFile{Path: path, Tree: tree, Kind: models.KindPhoto, Size: size}
}

func record(size int64, captured time.Time, rating int) *models.MetadataRecord {
	r := rating
	s := size
	c := captured
	return &models.MetadataRecord{FileSize: &s, CapturedAt: &c, Rating: &r}
}

func TestMatchIgnoresRatingUnderLoose(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	src := []Entry{entry(t, b, photo("/src/a.jpg", models.TreeSource, 1000), record(1000, captured, 5))}
	dest := []Entry{entry(t, b, photo("/dst/b.jpg", models.TreeDest, 1000), record(1000, captured, 1))}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(result.Pairs))
	}
	pair := result.Pairs[0]
	if pair.Source.Path != "/src/a.jpg" || pair.Dest.Path != "/dst/b.jpg" {
		t.Errorf("pair = %s -> %s", pair.Source.Path, pair.Dest.Path)
	}
	if pair.Ambiguous {
		t.Error("single-candidate match flagged ambiguous")
	}
	if len(result.Unmatched) != 0 {
		t.Errorf("unexpected unmatched files: %d", len(result.Unmatched))
	}
}

func TestMatchParanoidRejectsTimestampDrift(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeParanoid)
	width, height := 4000, 3000
	cameraMake, cameraModel := "Canon", "EOS R6"

	fullRecord := func(captured time.Time) *models.MetadataRecord {
		r := record(1000, captured, 0)
		r.Pixels = &models.Dimensions{Width: width, Height: height}
		r.CameraMake = &cameraMake
		r.CameraModel = &cameraModel
		return r
	}

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	src := []Entry{entry(t, b, photo("/src/a.jpg", models.TreeSource, 1000), fullRecord(base))}
	dest := []Entry{entry(t, b, photo("/dst/b.jpg", models.TreeDest, 1000), fullRecord(base.Add(2*time.Second)))}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Pairs) != 0 {
		t.Fatalf("got %d pairs, want 0", len(result.Pairs))
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0].Path != "/src/a.jpg" {
		t.Errorf("unmatched = %v", result.Unmatched)
	}
}

func TestMatchTieBreakPrefersCompleteRecord(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// Same fingerprint, but dest1 carries more metadata than dest2.
	rich := record(1000, captured, 0)
	cameraMake, cameraModel := "Sony", "A7 IV"
	rich.Pixels = &models.Dimensions{Width: 7008, Height: 4672}
	rich.CameraMake = &cameraMake
	rich.CameraModel = &cameraModel
	sparse := record(1000, captured, 0)

	src := []Entry{entry(t, b, photo("/src/a.jpg", models.TreeSource, 1000), record(1000, captured, 0))}
	dest := []Entry{
		entry(t, b, photo("/dst/sparse.jpg", models.TreeDest, 1000), sparse),
		entry(t, b, photo("/dst/rich.jpg", models.TreeDest, 1000), rich),
	}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(result.Pairs))
	}
	if result.Pairs[0].Dest.Path != "/dst/rich.jpg" {
		t.Errorf("matched %s, want /dst/rich.jpg", result.Pairs[0].Dest.Path)
	}
	if !result.Pairs[0].Ambiguous {
		t.Error("multi-candidate match must be flagged ambiguous")
	}
	if len(result.Groups) != 1 || !result.Groups[0].Ambiguous {
		t.Error("group must be flagged ambiguous")
	}
	if result.Groups[0].CandidateCount != 2 {
		t.Errorf("candidate count = %d, want 2", result.Groups[0].CandidateCount)
	}
}

func TestMatchTieBreakFallsBackToSmallestPath(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	src := []Entry{entry(t, b, photo("/src/a.jpg", models.TreeSource, 1000), record(1000, captured, 0))}
	dest := []Entry{
		entry(t, b, photo("/dst/zz.jpg", models.TreeDest, 1000), record(1000, captured, 0)),
		entry(t, b, photo("/dst/aa.jpg", models.TreeDest, 1000), record(1000, captured, 0)),
	}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Pairs) != 1 || result.Pairs[0].Dest.Path != "/dst/aa.jpg" {
		t.Fatalf("pairs = %+v, want match against /dst/aa.jpg", result.Pairs)
	}
}

func TestMatchOneDestManySources(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	src := []Entry{
		entry(t, b, photo("/src/a.jpg", models.TreeSource, 1000), record(1000, captured, 0)),
		entry(t, b, photo("/src/b.jpg", models.TreeSource, 1000), record(1000, captured, 0)),
	}
	dest := []Entry{entry(t, b, photo("/dst/keep.jpg", models.TreeDest, 1000), record(1000, captured, 0))}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	group := result.Groups[0]
	if len(group.Sources) != 2 {
		t.Fatalf("group holds %d sources, want 2", len(group.Sources))
	}
	if group.Sources[0].Path != "/src/a.jpg" || group.Sources[1].Path != "/src/b.jpg" {
		t.Error("sources must keep scan order")
	}

	// Each source appears in exactly one pair.
	seen := map[string]int{}
	for _, pair := range result.Pairs {
		seen[pair.Source.Path]++
	}
	for path, n := range seen {
		if n != 1 {
			t.Errorf("source %s matched %d times", path, n)
		}
	}
}

func TestMatchSamePathGuard(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// Overlapping roots can surface the same file on both sides; it
	// must not be declared a duplicate of itself.
	src := []Entry{entry(t, b, photo("/photos/a.jpg", models.TreeSource, 1000), record(1000, captured, 0))}
	dest := []Entry{entry(t, b, photo("/photos/a.jpg", models.TreeDest, 1000), record(1000, captured, 0))}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Pairs) != 0 {
		t.Fatalf("file matched itself: %+v", result.Pairs)
	}
	if len(result.NearMisses) != 0 {
		t.Errorf("self near-miss reported: %+v", result.NearMisses)
	}
}

func TestMatchReportsBasenameNearMiss(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)

	src := []Entry{entry(t, b, photo("/src/IMG_0042.jpg", models.TreeSource, 1000),
		record(1000, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 0))}
	dest := []Entry{entry(t, b, photo("/dst/2024/IMG_0042.jpg", models.TreeDest, 2000),
		record(2000, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 0))}

	result := NewMatcher(nil).Match(context.Background(), src, dest)

	if len(result.Pairs) != 0 {
		t.Fatal("files with different sizes must not match")
	}
	if len(result.NearMisses) != 1 {
		t.Fatalf("got %d near misses, want 1", len(result.NearMisses))
	}
	miss := result.NearMisses[0]
	if miss.SourcePath != "/src/IMG_0042.jpg" || miss.DestPath != "/dst/2024/IMG_0042.jpg" {
		t.Errorf("near miss = %+v", miss)
	}
}

func TestMatchDeterministic(t *testing.T) {
	b := fingerprint.NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	var src, dest []Entry
	for _, path := range []string{"/src/a.jpg", "/src/b.jpg", "/src/c.jpg"} {
		src = append(src, entry(t, b, photo(path, models.TreeSource, 1000), record(1000, captured, 0)))
	}
	for _, path := range []string{"/dst/x.jpg", "/dst/y.jpg"} {
		dest = append(dest, entry(t, b, photo(path, models.TreeDest, 1000), record(1000, captured, 0)))
	}

	matcher := NewMatcher(nil)
	first := matcher.Match(context.Background(), src, dest)
	second := matcher.Match(context.Background(), src, dest)

	if len(first.Pairs) != len(second.Pairs) {
		t.Fatalf("pair counts differ: %d vs %d", len(first.Pairs), len(second.Pairs))
	}
	for i := range first.Pairs {
		if first.Pairs[i].Source.Path != second.Pairs[i].Source.Path ||
			first.Pairs[i].Dest.Path != second.Pairs[i].Dest.Path {
			t.Fatalf("pair %d differs between runs", i)
		}
	}
}
