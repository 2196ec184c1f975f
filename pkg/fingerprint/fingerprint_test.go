package fingerprint

import (
	"errors"
	"testing"
	"time"

	"github.com/sverlaine/mediadup/pkg/models"
)

func photoFile(path string) *models.MediaFile {
	return &models.MediaFile{Path: path, Tree: models.TreeSource, Kind: models.KindPhoto, Size: 2048}
}

func videoFile(path string) *models.MediaFile {
	return &models.MediaFile{Path: path, Tree: models.TreeSource, Kind: models.KindVideo, Size: 2048}
}

func fullRecord(captured time.Time) *models.MetadataRecord {
	size := int64(2048)
	cameraMake := "Canon"
	cameraModel := "EOS R6"
	duration := int64(12500)
	return &models.MetadataRecord{
		CapturedAt:  &captured,
		Pixels:      &models.Dimensions{Width: 5472, Height: 3648},
		CameraMake:  &cameraMake,
		CameraModel: &cameraModel,
		DurationMS:  &duration,
		FileSize:    &size,
	}
}

func mustBuild(t *testing.T, b *Builder, file *models.MediaFile, record *models.MetadataRecord) *Fingerprint {
	t.Helper()
	fp, err := b.Build(file, record)
	if err != nil {
		t.Fatalf("Build(%s) failed: %v", file.Path, err)
	}
	return fp
}

func TestLooseTruncatesToMinute(t *testing.T) {
	b := NewBuilder(models.ModeLoose)

	a := mustBuild(t, b, photoFile("/src/a.jpg"), fullRecord(time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)))
	c := mustBuild(t, b, photoFile("/dst/a.jpg"), fullRecord(time.Date(2024, 6, 1, 12, 30, 47, 0, time.UTC)))

	if !a.Equal(c) {
		t.Error("timestamps within the same minute should match in loose mode")
	}
	if a.Key() != c.Key() {
		t.Error("equal fingerprints must share a bucket key")
	}

	d := mustBuild(t, b, photoFile("/dst/b.jpg"), fullRecord(time.Date(2024, 6, 1, 12, 31, 0, 0, time.UTC)))
	if a.Equal(d) {
		t.Error("timestamps in different minutes must not match")
	}
}

func TestParanoidRequiresExactSecond(t *testing.T) {
	b := NewBuilder(models.ModeParanoid)

	a := mustBuild(t, b, photoFile("/src/a.jpg"), fullRecord(time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)))
	c := mustBuild(t, b, photoFile("/dst/a.jpg"), fullRecord(time.Date(2024, 6, 1, 12, 30, 7, 0, time.UTC)))

	if a.Equal(c) {
		t.Error("timestamps two seconds apart must not match in paranoid mode")
	}
}

func TestParanoidComparesCameraFields(t *testing.T) {
	b := NewBuilder(models.ModeParanoid)
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)

	a := mustBuild(t, b, photoFile("/src/a.jpg"), fullRecord(captured))

	other := fullRecord(captured)
	otherModel := "EOS R5"
	other.CameraModel = &otherModel
	c := mustBuild(t, b, photoFile("/dst/a.jpg"), other)

	if a.Equal(c) {
		t.Error("differing camera models must not match in paranoid mode")
	}
}

func TestUnknownFieldsNeverMatch(t *testing.T) {
	b := NewBuilder(models.ModeParanoid)
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)

	// Both sides lack the camera make; absence is not agreement.
	left := fullRecord(captured)
	left.CameraMake = nil
	right := fullRecord(captured)
	right.CameraMake = nil

	a := mustBuild(t, b, photoFile("/src/a.jpg"), left)
	c := mustBuild(t, b, photoFile("/dst/a.jpg"), right)

	if a.Equal(c) {
		t.Error("fingerprints with an absent required field must not match")
	}
}

func TestLooseIgnoresParanoidFields(t *testing.T) {
	b := NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)

	full := fullRecord(captured)
	bare := fullRecord(captured)
	bare.Pixels = nil
	bare.CameraMake = nil
	bare.CameraModel = nil

	a := mustBuild(t, b, photoFile("/src/a.jpg"), full)
	c := mustBuild(t, b, photoFile("/dst/a.jpg"), bare)

	if !a.Equal(c) {
		t.Error("loose mode must not consider dimensions or camera fields")
	}
}

func TestModeMonotonicity(t *testing.T) {
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)
	src := photoFile("/src/a.jpg")
	dst := photoFile("/dst/a.jpg")

	paranoid := NewBuilder(models.ModeParanoid)
	pa := mustBuild(t, paranoid, src, fullRecord(captured))
	pc := mustBuild(t, paranoid, dst, fullRecord(captured))
	if !pa.Equal(pc) {
		t.Fatal("identical full records must match in paranoid mode")
	}

	loose := NewBuilder(models.ModeLoose)
	la := mustBuild(t, loose, src, fullRecord(captured))
	lc := mustBuild(t, loose, dst, fullRecord(captured))
	if !la.Equal(lc) {
		t.Error("a paranoid match must also be a loose match")
	}
}

func TestRatingNeverParticipates(t *testing.T) {
	b := NewBuilder(models.ModeParanoid)
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)

	rated := fullRecord(captured)
	five := 5
	rated.Rating = &five
	unrated := fullRecord(captured)

	a := mustBuild(t, b, photoFile("/src/a.jpg"), rated)
	c := mustBuild(t, b, photoFile("/dst/a.jpg"), unrated)

	if !a.Equal(c) {
		t.Error("rating must not affect equivalence")
	}
	if a.Key() != c.Key() {
		t.Error("rating must not affect the bucket key")
	}
}

func TestVideoDurationOnlyForVideos(t *testing.T) {
	b := NewBuilder(models.ModeParanoid)
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)

	left := fullRecord(captured)
	right := fullRecord(captured)
	otherDuration := int64(99000)
	right.DurationMS = &otherDuration

	pa := mustBuild(t, b, photoFile("/src/a.jpg"), left)
	pc := mustBuild(t, b, photoFile("/dst/a.jpg"), right)
	if !pa.Equal(pc) {
		t.Error("duration must be ignored for photos")
	}

	va := mustBuild(t, b, videoFile("/src/a.mp4"), left)
	vc := mustBuild(t, b, videoFile("/dst/a.mp4"), right)
	if va.Equal(vc) {
		t.Error("differing durations must not match for videos")
	}
}

func TestPhotoNeverMatchesVideo(t *testing.T) {
	b := NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 6, 1, 12, 30, 5, 0, time.UTC)

	photo := mustBuild(t, b, photoFile("/src/a.jpg"), fullRecord(captured))
	video := mustBuild(t, b, videoFile("/dst/a.mp4"), fullRecord(captured))

	if photo.Equal(video) {
		t.Error("files of different kinds must not match")
	}
}

func TestInsufficientMetadata(t *testing.T) {
	b := NewBuilder(models.ModeLoose)

	_, err := b.Build(photoFile("/src/blank.jpg"), &models.MetadataRecord{})
	var insufficient *InsufficientMetadataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Build with empty record = %v, want *InsufficientMetadataError", err)
	}
	if insufficient.Path != "/src/blank.jpg" {
		t.Errorf("error path = %s", insufficient.Path)
	}

	// One present field is enough to produce a fingerprint, even if it
	// can never match anything.
	size := int64(10)
	fp, err := b.Build(photoFile("/src/size-only.jpg"), &models.MetadataRecord{FileSize: &size})
	if err != nil {
		t.Fatalf("Build with size only failed: %v", err)
	}
	if fp.CapturedAt != nil {
		t.Error("capture time should be absent")
	}
}

func TestKeySeparatesPresenceSets(t *testing.T) {
	b := NewBuilder(models.ModeLoose)
	captured := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	size := int64(captured.Unix())
	sizeOnly, err := b.Build(photoFile("/src/a.jpg"), &models.MetadataRecord{FileSize: &size})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	timeOnly, err := b.Build(photoFile("/src/b.jpg"), &models.MetadataRecord{CapturedAt: &captured})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if sizeOnly.Key() == timeOnly.Key() {
		t.Error("same bytes under different field tags must hash differently")
	}
}
