package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sverlaine/mediadup/pkg/models"
)

// photoExtensions are the image containers the metadata layer can parse
var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".heic": true,
	".png":  true,
}

// videoExtensions are the video containers the metadata layer can parse
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

// Classify returns the media kind for a file name, or false if the
// extension is not a supported media container
func Classify(path string) (models.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if photoExtensions[ext] {
		return models.KindPhoto, true
	}
	if videoExtensions[ext] {
		return models.KindVideo, true
	}
	return "", false
}

// Scanner walks directory trees and produces MediaFiles
type Scanner struct {
	// IncludeVideos controls whether video files are collected at all.
	// When false, videos are neither candidates nor match targets.
	IncludeVideos bool

	// VideosSkipped counts video files dropped because IncludeVideos
	// is false, accumulated across ScanTree calls
	VideosSkipped int
}

// NewScanner creates a scanner
func NewScanner(includeVideos bool) *Scanner {
	return &Scanner{IncludeVideos: includeVideos}
}

// ScanTree recursively walks root and returns the media files found,
// in walk order. Hidden files and dot-directories are skipped.
func (s *Scanner) ScanTree(ctx context.Context, root string, tree models.Tree) ([]*models.MediaFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	var files []*models.MediaFile

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && p != absRoot {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		kind, ok := Classify(name)
		if !ok {
			return nil
		}
		if kind == models.KindVideo && !s.IncludeVideos {
			s.VideosSkipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, &models.MediaFile{
			Path:    p,
			Tree:    tree,
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}

// ScanTrees walks multiple roots in order and concatenates the results
func (s *Scanner) ScanTrees(ctx context.Context, roots []string, tree models.Tree) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	for _, root := range roots {
		scanned, err := s.ScanTree(ctx, root, tree)
		if err != nil {
			return nil, err
		}
		files = append(files, scanned...)
	}
	return files, nil
}
