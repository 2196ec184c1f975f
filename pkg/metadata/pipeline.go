package metadata

import (
	"context"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/sverlaine/mediadup/pkg/logging"
	"github.com/sverlaine/mediadup/pkg/models"
)

// Result pairs a scanned file with its extraction outcome
type Result struct {
	File      *models.MediaFile
	Record    *models.MetadataRecord
	Err       error
	FromCache bool
}

// Pipeline extracts metadata for a file list on a worker pool. Each
// result slot is owned by exactly one worker, so no locking is needed;
// the WaitGroup acts as the barrier that guarantees all records exist
// before any matching begins.
type Pipeline struct {
	extractor  Extractor
	cache      *Cache
	logger     logging.Logger
	maxWorkers int
	progress   bool
}

// NewPipeline creates an extraction pipeline. cache may be nil to
// disable caching; logger may be nil for silent operation.
func NewPipeline(extractor Extractor, cache *Cache, logger logging.Logger, maxWorkers int, progress bool) *Pipeline {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Pipeline{
		extractor:  extractor,
		cache:      cache,
		logger:     logger,
		maxWorkers: maxWorkers,
		progress:   progress,
	}
}

// ExtractAll extracts metadata for every file and returns results in
// input order regardless of worker scheduling.
func (p *Pipeline) ExtractAll(ctx context.Context, files []*models.MediaFile) []Result {
	results := make([]Result, len(files))
	if len(files) == 0 {
		return results
	}

	var bar *pb.ProgressBar
	if p.progress {
		bar = pb.StartNew(len(files))
		defer bar.Finish()
	}

	indexes := make(chan int, len(files))
	for i := range files {
		indexes <- i
	}
	close(indexes)

	var wg sync.WaitGroup
	for w := 0; w < p.maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				select {
				case <-ctx.Done():
					results[i] = Result{File: files[i], Err: ctx.Err()}
					continue
				default:
				}

				results[i] = p.extractOne(ctx, files[i])
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}

	// Barrier: matching must not start until every record is written
	wg.Wait()

	return results
}

func (p *Pipeline) extractOne(ctx context.Context, file *models.MediaFile) Result {
	if p.cache != nil {
		record, hit, err := p.cache.Lookup(ctx, file)
		if err != nil {
			p.logger.Warn(ctx, "metadata cache lookup failed", logging.Fields{
				"path": file.Path,
			})
		} else if hit {
			return Result{File: file, Record: record, FromCache: true}
		}
	}

	record, err := p.extractor.Extract(ctx, file)
	if err != nil {
		p.logger.Warn(ctx, "metadata extraction failed", logging.Fields{
			"path":  file.Path,
			"error": err.Error(),
		})
		return Result{File: file, Err: err}
	}

	if p.cache != nil {
		if err := p.cache.Store(ctx, file, record); err != nil {
			p.logger.Warn(ctx, "metadata cache store failed", logging.Fields{
				"path": file.Path,
			})
		}
	}

	return Result{File: file, Record: record}
}
