package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/sverlaine/mediadup/pkg/fingerprint"
	"github.com/sverlaine/mediadup/pkg/logging"
	"github.com/sverlaine/mediadup/pkg/match"
	"github.com/sverlaine/mediadup/pkg/metadata"
	"github.com/sverlaine/mediadup/pkg/models"
	"github.com/sverlaine/mediadup/pkg/plan"
	"github.com/sverlaine/mediadup/pkg/scan"
	"github.com/sverlaine/mediadup/pkg/script"
)

// Engine orchestrates one duplicate-detection run: scan, filter,
// extract, fingerprint, match, plan and emit. The run configuration is
// carried in an immutable Plan threaded through every stage.
type Engine struct {
	runPlan   *models.Plan
	cache     *metadata.Cache
	logger    logging.Logger
	progress  bool
	extractor metadata.Extractor
}

// NewEngine creates an engine for the given plan. cache may be nil to
// disable metadata caching; logger may be nil for silent operation.
func NewEngine(runPlan *models.Plan, cache *metadata.Cache, logger logging.Logger, progress bool) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{
		runPlan:   runPlan,
		cache:     cache,
		logger:    logger,
		progress:  progress,
		extractor: metadata.NewFileExtractor(),
	}
}

// Run executes the plan and returns the report. An error return means
// the run failed as a whole; per-file problems are recorded in the
// report and downgrade the status to partial instead.
func (e *Engine) Run(ctx context.Context) (*models.Report, error) {
	report := &models.Report{
		PlanID:      e.runPlan.ID,
		SourceRoots: e.runPlan.SourceRoots,
		DestRoot:    e.runPlan.DestRoot,
		Mode:        e.runPlan.Mode,
		Command:     e.runPlan.Command,
		StartTime:   time.Now(),
	}

	srcFiles, destFiles, err := e.scanTrees(ctx, report)
	if err != nil {
		report.Status = models.StatusFailed
		return report, err
	}

	srcEntries, destEntries := e.fingerprintFiles(ctx, report, srcFiles, destFiles)

	result := match.NewMatcher(e.logger).Match(ctx, srcEntries, destEntries)
	report.Groups = result.Groups
	report.Unmatched = result.Unmatched
	report.NearMisses = result.NearMisses
	report.Stats.MatchedSources = len(result.Pairs)
	report.Stats.DuplicateGroups = len(result.Groups)
	report.Stats.UniqueSources = len(result.Unmatched)
	for _, group := range result.Groups {
		if group.Ambiguous {
			report.Stats.AmbiguousGroups++
		}
	}
	for _, pair := range result.Pairs {
		report.Stats.BytesReclaimable += pair.Source.Size
	}

	actions, err := plan.NewPlanner(e.runPlan.Command, e.runPlan.ArchiveDir).PlanActions(result)
	if err != nil {
		report.Status = models.StatusFailed
		return report, err
	}
	report.Actions = actions
	report.Stats.ActionsPlanned = len(actions)

	if e.runPlan.Command != models.CommandPrint {
		emitter := script.NewEmitter(e.runPlan.Shell)
		skipped, err := emitter.RenderFile(e.runPlan.ScriptPath, e.runPlan, actions)
		if err != nil {
			report.Status = models.StatusFailed
			return report, fmt.Errorf("emit script: %w", err)
		}
		report.Errors = append(report.Errors, skipped...)
		report.Stats.ActionsSkipped = len(skipped)
		e.logger.Info(ctx, "script written", logging.Fields{
			"path":    e.runPlan.ScriptPath,
			"actions": len(actions) - len(skipped),
		})
	}

	e.pruneCache(ctx, srcFiles, destFiles)

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	if len(report.Errors) > 0 {
		report.Status = models.StatusPartial
	} else {
		report.Status = models.StatusSuccess
	}

	return report, nil
}

// scanTrees walks the source roots and the destination root, applies
// the exclusion filter and records the scan statistics.
func (e *Engine) scanTrees(ctx context.Context, report *models.Report) ([]*models.MediaFile, []*models.MediaFile, error) {
	scanner := scan.NewScanner(e.runPlan.IncludeVideos)

	srcFiles, err := scanner.ScanTrees(ctx, e.runPlan.SourceRoots, models.TreeSource)
	if err != nil {
		return nil, nil, fmt.Errorf("scan sources: %w", err)
	}
	destFiles, err := scanner.ScanTree(ctx, e.runPlan.DestRoot, models.TreeDest)
	if err != nil {
		return nil, nil, fmt.Errorf("scan destination: %w", err)
	}

	report.Stats.SourceFilesScanned = len(srcFiles)
	report.Stats.DestFilesScanned = len(destFiles)
	report.Stats.VideosSkipped = scanner.VideosSkipped

	srcKept := scan.Filter(srcFiles, e.runPlan.Exclude, e.runPlan.FlipExclusion)
	destKept := scan.Filter(destFiles, e.runPlan.Exclude, e.runPlan.FlipExclusion)
	report.Stats.FilesExcluded = (len(srcFiles) - len(srcKept)) + (len(destFiles) - len(destKept))

	e.logger.Info(ctx, "scan complete", logging.Fields{
		"source_files": len(srcKept),
		"dest_files":   len(destKept),
		"excluded":     report.Stats.FilesExcluded,
	})

	return srcKept, destKept, nil
}

// fingerprintFiles extracts metadata for both trees on the worker pool
// and derives fingerprints. Files that cannot be extracted or carry no
// usable metadata are recorded as per-file errors and dropped from
// matching, never silently.
func (e *Engine) fingerprintFiles(ctx context.Context, report *models.Report, srcFiles, destFiles []*models.MediaFile) ([]match.Entry, []match.Entry) {
	all := make([]*models.MediaFile, 0, len(srcFiles)+len(destFiles))
	all = append(all, srcFiles...)
	all = append(all, destFiles...)

	pipeline := metadata.NewPipeline(e.extractor, e.cache, e.logger, e.runPlan.MaxWorkers, e.progress)
	results := pipeline.ExtractAll(ctx, all)

	builder := fingerprint.NewBuilder(e.runPlan.Mode)
	var srcEntries, destEntries []match.Entry

	for _, res := range results {
		if res.FromCache {
			report.Stats.CacheHits++
		}
		if res.Err != nil {
			report.Stats.ExtractionFailures++
			report.Errors = append(report.Errors, models.FileError{
				Path:      res.File.Path,
				Stage:     "extract",
				Error:     res.Err.Error(),
				Timestamp: time.Now().UTC(),
			})
			continue
		}

		fp, err := builder.Build(res.File, res.Record)
		if err != nil {
			report.Stats.InsufficientMetadata++
			report.Errors = append(report.Errors, models.FileError{
				Path:      res.File.Path,
				Stage:     "fingerprint",
				Error:     err.Error(),
				Timestamp: time.Now().UTC(),
			})
			continue
		}

		report.Stats.Fingerprinted++
		entry := match.Entry{File: res.File, Record: res.Record, Fingerprint: fp}
		if res.File.Tree == models.TreeSource {
			srcEntries = append(srcEntries, entry)
		} else {
			destEntries = append(destEntries, entry)
		}
	}

	return srcEntries, destEntries
}

// pruneCache drops cache rows for files no longer present in either tree
func (e *Engine) pruneCache(ctx context.Context, srcFiles, destFiles []*models.MediaFile) {
	if e.cache == nil {
		return
	}
	keep := make(map[string]bool, len(srcFiles)+len(destFiles))
	for _, f := range srcFiles {
		keep[f.Path] = true
	}
	for _, f := range destFiles {
		keep[f.Path] = true
	}
	removed, err := e.cache.Prune(ctx, keep)
	if err != nil {
		e.logger.Warn(ctx, "cache prune failed", logging.Fields{"error": err.Error()})
		return
	}
	if removed > 0 {
		e.logger.Debug(ctx, "cache pruned", logging.Fields{"removed": removed})
	}
}
