package metadata

import (
	"fmt"
)

// ExtractionError is a per-file, non-fatal failure: the file cannot be
// parsed by the metadata layer and is excluded from matching. It is
// surfaced in the diagnostic report, never aborts the run.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("metadata extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
