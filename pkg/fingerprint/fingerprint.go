package fingerprint

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/sverlaine/mediadup/pkg/models"
)

// InsufficientMetadataError indicates that every field the matching
// mode requires is absent from a file's metadata record. The file
// cannot be fingerprinted and is reported as unmatched, like an
// extraction failure.
type InsufficientMetadataError struct {
	Path string
	Mode models.Mode
}

func (e *InsufficientMetadataError) Error() string {
	return fmt.Sprintf("no usable metadata for %s in %s mode", e.Path, e.Mode)
}

// Fingerprint is the mode-dependent comparison key derived from a
// metadata record. Fields are nil when unknown; an unknown field never
// equals another unknown field.
//
// Loose selects file size and capture time truncated to the minute.
// Paranoid selects file size, capture time truncated to the second,
// pixel dimensions, camera make and model, and duration for videos.
type Fingerprint struct {
	Mode  models.Mode
	Video bool

	Size        *int64
	CapturedAt  *time.Time
	Pixels      *models.Dimensions
	CameraMake  *string
	CameraModel *string
	DurationMS  *int64
}

// Builder derives fingerprints for a fixed matching mode
type Builder struct {
	mode models.Mode
}

// NewBuilder creates a fingerprint builder for the given mode
func NewBuilder(mode models.Mode) *Builder {
	return &Builder{mode: mode}
}

// Build derives the fingerprint for one file. It fails with
// *InsufficientMetadataError when all of the mode's fields are absent.
// The rating tag never participates.
func (b *Builder) Build(file *models.MediaFile, record *models.MetadataRecord) (*Fingerprint, error) {
	fp := &Fingerprint{
		Mode:  b.mode,
		Video: file.Kind == models.KindVideo,
		Size:  record.FileSize,
	}

	if record.CapturedAt != nil {
		var truncated time.Time
		switch b.mode {
		case models.ModeLoose:
			truncated = record.CapturedAt.UTC().Truncate(time.Minute)
		default:
			truncated = record.CapturedAt.UTC().Truncate(time.Second)
		}
		fp.CapturedAt = &truncated
	}

	if b.mode == models.ModeParanoid {
		fp.Pixels = record.Pixels
		fp.CameraMake = record.CameraMake
		fp.CameraModel = record.CameraModel
		if fp.Video {
			fp.DurationMS = record.DurationMS
		}
	}

	if fp.empty() {
		return nil, &InsufficientMetadataError{Path: file.Path, Mode: b.mode}
	}

	return fp, nil
}

// empty reports whether every selected field is absent
func (f *Fingerprint) empty() bool {
	if f.Size != nil || f.CapturedAt != nil {
		return false
	}
	if f.Mode == models.ModeParanoid {
		if f.Pixels != nil || f.CameraMake != nil || f.CameraModel != nil {
			return false
		}
		if f.Video && f.DurationMS != nil {
			return false
		}
	}
	return true
}

// Field tags for the bucket hash. Present fields hash tag-then-value,
// so tuples with different present-field sets land in different
// buckets by construction.
const (
	tagSize byte = iota + 1
	tagCapturedAt
	tagPixels
	tagCameraMake
	tagCameraModel
	tagDuration
	tagVideo
)

// Key returns the bucket hash for this fingerprint. Distinct tuples
// may still collide; callers must confirm with Equal.
func (f *Fingerprint) Key() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	if f.Video {
		h.Write([]byte{tagVideo})
	}
	if f.Size != nil {
		h.Write([]byte{tagSize})
		binary.LittleEndian.PutUint64(buf[:], uint64(*f.Size))
		h.Write(buf[:])
	}
	if f.CapturedAt != nil {
		h.Write([]byte{tagCapturedAt})
		binary.LittleEndian.PutUint64(buf[:], uint64(f.CapturedAt.Unix()))
		h.Write(buf[:])
	}
	if f.Pixels != nil {
		h.Write([]byte{tagPixels})
		binary.LittleEndian.PutUint64(buf[:], uint64(f.Pixels.Width))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(f.Pixels.Height))
		h.Write(buf[:])
	}
	if f.CameraMake != nil {
		h.Write([]byte{tagCameraMake})
		h.Write([]byte(*f.CameraMake))
	}
	if f.CameraModel != nil {
		h.Write([]byte{tagCameraModel})
		h.Write([]byte(*f.CameraModel))
	}
	if f.DurationMS != nil {
		h.Write([]byte{tagDuration})
		binary.LittleEndian.PutUint64(buf[:], uint64(*f.DurationMS))
		h.Write(buf[:])
	}

	return h.Sum64()
}

// Equal reports whether two fingerprints are equivalent: every field
// the mode selects must be present on both sides and equal. Duration
// is omitted from the tuple for non-video files; a photo never equals
// a video.
func (f *Fingerprint) Equal(other *Fingerprint) bool {
	if other == nil || f.Mode != other.Mode || f.Video != other.Video {
		return false
	}

	if f.Size == nil || other.Size == nil || *f.Size != *other.Size {
		return false
	}
	if f.CapturedAt == nil || other.CapturedAt == nil || !f.CapturedAt.Equal(*other.CapturedAt) {
		return false
	}

	if f.Mode == models.ModeParanoid {
		if f.Pixels == nil || other.Pixels == nil || *f.Pixels != *other.Pixels {
			return false
		}
		if f.CameraMake == nil || other.CameraMake == nil || *f.CameraMake != *other.CameraMake {
			return false
		}
		if f.CameraModel == nil || other.CameraModel == nil || *f.CameraModel != *other.CameraModel {
			return false
		}
		if f.Video {
			if f.DurationMS == nil || other.DurationMS == nil || *f.DurationMS != *other.DurationMS {
				return false
			}
		}
	}

	return true
}
