package triage

import (
	"context"
	"sync"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// Viewer tracks which report a staff client is looking at. Triage runs in the
// background and its result is handed to apply only if that report is still
// the one being viewed; late results for a report the viewer left are dropped.
type Viewer struct {
	enricher *Enricher
	apply    func(*reports.Report)

	mu      sync.Mutex
	current string
	seq     uint64
	wg      sync.WaitGroup
}

func NewViewer(enricher *Enricher, apply func(*reports.Report)) *Viewer {
	return &Viewer{enricher: enricher, apply: apply}
}

// View switches to r. A report that already has an analysis is applied at
// once without calling the completion service.
func (v *Viewer) View(ctx context.Context, r *reports.Report) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.current = r.ID
	v.mu.Unlock()

	local := r.Clone()
	if local.AIAnalysis != nil {
		v.apply(local)
		return
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.enricher.Ensure(ctx, local)

		v.mu.Lock()
		stale := v.seq != seq
		v.mu.Unlock()
		if stale {
			return
		}
		v.apply(local)
	}()
}

// Leave clears the current report so in-flight results are discarded.
func (v *Viewer) Leave() {
	v.mu.Lock()
	v.seq++
	v.current = ""
	v.mu.Unlock()
}

// Current returns the id being viewed, or "".
func (v *Viewer) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Wait blocks until background triage calls have returned.
func (v *Viewer) Wait() {
	v.wg.Wait()
}
