package models

import (
	"time"
)

// Tree identifies which directory tree a file was scanned from
type Tree string

const (
	// TreeSource indicates the file lives in a source tree
	TreeSource Tree = "src"
	// TreeDest indicates the file lives in the destination tree
	TreeDest Tree = "dest"
)

// MediaKind classifies a media file by container family
type MediaKind string

const (
	// KindPhoto covers still images (jpeg, heic, png)
	KindPhoto MediaKind = "photo"
	// KindVideo covers video containers (mp4, mov, avi)
	KindVideo MediaKind = "video"
)

// MediaFile represents a single scanned media file.
// It is immutable once produced by the scanner.
type MediaFile struct {
	// Path is the absolute path on the filesystem
	Path string

	// Tree indicates whether the file belongs to a source or the destination tree
	Tree Tree

	// Kind is the media classification derived from the file extension
	Kind MediaKind

	// Size in bytes, taken at scan time
	Size int64

	// ModTime is the last modification time, taken at scan time
	ModTime time.Time
}

// Dimensions holds pixel dimensions of a photo or a video frame
type Dimensions struct {
	Width  int
	Height int
}

// MetadataRecord holds the normalized attributes extracted for one
// MediaFile. Every field is optional; a nil pointer means "unknown".
// Records are write-once: a re-scan produces a new record.
type MetadataRecord struct {
	// CapturedAt is the best available capture timestamp
	// (EXIF DateTimeOriginal or container creation time)
	CapturedAt *time.Time

	// Pixels are the image or video frame dimensions
	Pixels *Dimensions

	// DurationMS is the playback duration in milliseconds (videos only)
	DurationMS *int64

	// CameraMake is the device manufacturer string
	CameraMake *string

	// CameraModel is the device model string
	CameraModel *string

	// FileSize is the exact byte length
	FileSize *int64

	// Rating is the user-assigned rating tag. It is carried for
	// diagnostics but excluded from all comparisons: ratings are
	// expected to differ between copies of the same shot.
	Rating *int
}

// FieldCount returns the number of comparable fields present in the
// record. Rating is not comparable and does not count.
func (r *MetadataRecord) FieldCount() int {
	if r == nil {
		return 0
	}
	count := 0
	if r.CapturedAt != nil {
		count++
	}
	if r.Pixels != nil {
		count++
	}
	if r.DurationMS != nil {
		count++
	}
	if r.CameraMake != nil {
		count++
	}
	if r.CameraModel != nil {
		count++
	}
	if r.FileSize != nil {
		count++
	}
	return count
}

// DuplicateGroup associates one destination file with the source files
// that are fingerprint-equivalent to it. Groups are created by the
// matcher and consumed once by the planner, never mutated afterwards.
type DuplicateGroup struct {
	// Dest is the destination file the sources duplicate
	Dest *MediaFile

	// Sources are the matched source files, in scan order
	Sources []*MediaFile

	// Ambiguous is set when at least one source had several
	// equally-ranked destination candidates and the match was
	// resolved by tie-break
	Ambiguous bool

	// CandidateCount is the largest candidate set any source in this
	// group had to choose from (1 for unambiguous groups)
	CandidateCount int
}
