package metadata

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	// Register decoders for the pixel-dimension fallback
	_ "image/jpeg"
	_ "image/png"

	gomp4 "github.com/abema/go-mp4"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/sverlaine/mediadup/pkg/models"
)

// mp4EpochOffset is the number of seconds between the MP4 epoch
// (1904-01-01) and the Unix epoch (1970-01-01).
const mp4EpochOffset = 2082844800

// Extractor produces a MetadataRecord for a media file
type Extractor interface {
	Extract(ctx context.Context, file *models.MediaFile) (*models.MetadataRecord, error)
}

// FileExtractor reads metadata directly from the file containers:
// EXIF for photos, the moov/mvhd and moov/trak/tkhd boxes for videos.
type FileExtractor struct{}

// NewFileExtractor creates an extractor backed by container parsing
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract builds the metadata record for one file. Unreadable or
// unparseable containers yield an *ExtractionError; a readable container
// with missing tags yields a record with the corresponding fields unknown.
func (e *FileExtractor) Extract(ctx context.Context, file *models.MediaFile) (*models.MetadataRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	size := file.Size
	record := &models.MetadataRecord{FileSize: &size}

	switch file.Kind {
	case models.KindPhoto:
		if err := e.extractPhoto(file.Path, record); err != nil {
			return nil, &ExtractionError{Path: file.Path, Err: err}
		}
	case models.KindVideo:
		if err := e.extractVideo(file.Path, record); err != nil {
			return nil, &ExtractionError{Path: file.Path, Err: err}
		}
	default:
		return nil, &ExtractionError{Path: file.Path, Err: fmt.Errorf("unsupported media kind %q", file.Kind)}
	}

	return record, nil
}

// extractPhoto fills capture time, camera identity, dimensions and
// rating from EXIF. A missing or undecodable EXIF block is not an
// error; the affected fields stay unknown. Dimensions fall back to the
// image header when EXIF has no pixel tags.
func (e *FileExtractor) extractPhoto(path string, record *models.MetadataRecord) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if x, err := exif.Decode(f); err == nil {
		if t, err := x.DateTime(); err == nil {
			t = t.UTC()
			record.CapturedAt = &t
		}
		if s, ok := tagString(x, exif.Make); ok {
			record.CameraMake = &s
		}
		if s, ok := tagString(x, exif.Model); ok {
			record.CameraModel = &s
		}
		if w, ok := tagInt(x, exif.PixelXDimension); ok {
			if h, ok := tagInt(x, exif.PixelYDimension); ok {
				record.Pixels = &models.Dimensions{Width: w, Height: h}
			}
		}
		if r, ok := tagInt(x, exif.FieldName("Rating")); ok {
			record.Rating = &r
		}
	}

	if record.Pixels == nil {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			if cfg, _, err := image.DecodeConfig(f); err == nil {
				record.Pixels = &models.Dimensions{Width: cfg.Width, Height: cfg.Height}
			}
		}
	}

	return nil
}

// extractVideo fills capture time, duration and frame dimensions from
// the MP4 movie header. Containers without a parseable moov box (avi,
// truncated files) are extraction failures.
func (e *FileExtractor) extractVideo(path string, record *models.MetadataRecord) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	boxes, err := gomp4.ExtractBoxWithPayload(f, nil,
		gomp4.BoxPath{gomp4.BoxTypeMoov(), gomp4.BoxTypeMvhd()})
	if err != nil {
		return fmt.Errorf("unreadable container: %w", err)
	}
	if len(boxes) == 0 {
		return fmt.Errorf("no movie header box")
	}

	mvhd, ok := boxes[0].Payload.(*gomp4.Mvhd)
	if !ok {
		return fmt.Errorf("unexpected movie header payload")
	}

	if creation := mvhd.GetCreationTime(); creation > mp4EpochOffset {
		t := time.Unix(int64(creation)-mp4EpochOffset, 0).UTC()
		record.CapturedAt = &t
	}
	if mvhd.Timescale > 0 {
		ms := int64(mvhd.GetDuration()) * 1000 / int64(mvhd.Timescale)
		record.DurationMS = &ms
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil
	}
	tracks, err := gomp4.ExtractBoxWithPayload(f, nil,
		gomp4.BoxPath{gomp4.BoxTypeMoov(), gomp4.BoxTypeTrak(), gomp4.BoxTypeTkhd()})
	if err != nil {
		return nil
	}
	for _, box := range tracks {
		tkhd, ok := box.Payload.(*gomp4.Tkhd)
		if !ok {
			continue
		}
		// Track width/height are 16.16 fixed point; audio tracks are zero
		w := int(tkhd.Width >> 16)
		h := int(tkhd.Height >> 16)
		if w > 0 && h > 0 {
			record.Pixels = &models.Dimensions{Width: w, Height: h}
			break
		}
	}

	return nil
}

func tagString(x *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return "", false
	}
	s, err := tag.StringVal()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func tagInt(x *exif.Exif, name exif.FieldName) (int, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return v, true
}
