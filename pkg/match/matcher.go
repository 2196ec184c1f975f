package match

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/sverlaine/mediadup/pkg/fingerprint"
	"github.com/sverlaine/mediadup/pkg/logging"
	"github.com/sverlaine/mediadup/pkg/models"
)

// Entry is one fingerprinted file as consumed by the matcher
type Entry struct {
	File        *models.MediaFile
	Record      *models.MetadataRecord
	Fingerprint *fingerprint.Fingerprint
}

// Pair records the resolved match for one source file
type Pair struct {
	Source    *models.MediaFile
	Dest      *models.MediaFile
	Ambiguous bool
}

// Result is the full matching outcome. Groups are ordered by
// destination scan order, Pairs and Unmatched by source scan order, so
// repeated runs over the same input produce identical output.
type Result struct {
	Groups     []*models.DuplicateGroup
	Pairs      []Pair
	Unmatched  []*models.MediaFile
	NearMisses []models.NearMiss
}

// Matcher buckets destination files by fingerprint hash and resolves
// each source file against them.
type Matcher struct {
	logger logging.Logger
}

// NewMatcher creates a matcher; logger may be nil for silent operation
func NewMatcher(logger logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Matcher{logger: logger}
}

// Match resolves every source entry against the destination entries.
//
// Destinations are bucketed by fingerprint hash; a bucket hit is then
// confirmed by exact fingerprint equality, so hash collisions across
// distinct tuples cannot produce a match. A source with several
// equally-ranked destinations is resolved by tie-break: the most
// complete metadata record wins, then the lexicographically smallest
// path. The group is flagged ambiguous so the choice is auditable.
//
// A destination may collect many sources; a source joins at most one
// group.
func (m *Matcher) Match(ctx context.Context, src, dest []Entry) *Result {
	buckets := make(map[uint64][]int)
	for i, d := range dest {
		key := d.Fingerprint.Key()
		buckets[key] = append(buckets[key], i)
	}

	destBase := make(map[string]string)
	for _, d := range dest {
		base := filepath.Base(d.File.Path)
		if _, seen := destBase[base]; !seen {
			destBase[base] = d.File.Path
		}
	}

	result := &Result{}
	groups := make(map[int]*models.DuplicateGroup)
	var groupOrder []int

	for _, s := range src {
		var candidates []int
		for _, i := range buckets[s.Fingerprint.Key()] {
			if dest[i].File.Path == s.File.Path {
				continue
			}
			if dest[i].Fingerprint.Equal(s.Fingerprint) {
				candidates = append(candidates, i)
			}
		}

		if len(candidates) == 0 {
			result.Unmatched = append(result.Unmatched, s.File)
			base := filepath.Base(s.File.Path)
			if destPath, ok := destBase[base]; ok && destPath != s.File.Path {
				result.NearMisses = append(result.NearMisses, models.NearMiss{
					SourcePath: s.File.Path,
					DestPath:   destPath,
				})
			}
			continue
		}

		winner := m.resolve(dest, candidates)
		ambiguous := len(candidates) > 1
		if ambiguous {
			m.logger.Debug(ctx, "ambiguous match resolved by tie-break", logging.Fields{
				"source":     s.File.Path,
				"dest":       dest[winner].File.Path,
				"candidates": len(candidates),
			})
		}

		group, exists := groups[winner]
		if !exists {
			group = &models.DuplicateGroup{Dest: dest[winner].File, CandidateCount: 1}
			groups[winner] = group
			groupOrder = append(groupOrder, winner)
		}
		group.Sources = append(group.Sources, s.File)
		if ambiguous {
			group.Ambiguous = true
		}
		if len(candidates) > group.CandidateCount {
			group.CandidateCount = len(candidates)
		}

		result.Pairs = append(result.Pairs, Pair{
			Source:    s.File,
			Dest:      dest[winner].File,
			Ambiguous: ambiguous,
		})
	}

	sort.Ints(groupOrder)
	for _, i := range groupOrder {
		result.Groups = append(result.Groups, groups[i])
	}

	return result
}

// resolve picks one destination from a non-empty candidate set: most
// metadata fields present first, then smallest path.
func (m *Matcher) resolve(dest []Entry, candidates []int) int {
	best := candidates[0]
	for _, i := range candidates[1:] {
		bestFields := dest[best].Record.FieldCount()
		fields := dest[i].Record.FieldCount()
		switch {
		case fields > bestFields:
			best = i
		case fields == bestFields && dest[i].File.Path < dest[best].File.Path:
			best = i
		}
	}
	return best
}
