package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/molgest/internal/metrics"
	"github.com/dgallion1/molgest/internal/molecule"
	"github.com/dgallion1/molgest/internal/smiles"
	"github.com/dgallion1/molgest/internal/source"
)

// Worker processes a single document job.
type Worker struct {
	log  *slog.Logger
	opts source.Options

	maxConcurrentParse int
	maxNotationLength  int
}

func NewWorker(log *slog.Logger, opts source.Options, maxParse, maxNotationLength int) *Worker {
	if maxParse <= 0 {
		maxParse = 1
	}
	return &Worker{
		log:                log,
		opts:               opts,
		maxConcurrentParse: maxParse,
		maxNotationLength:  maxNotationLength,
	}
}

// Process reads the job's document, parses every distinct candidate and
// records one Result per entry.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Read
	job.SetStatus(StatusReading, "reading")
	r, err := source.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		w.fail(job, err.Error(), "reading")
		return
	}

	doc, err := r.Read(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		log.Error("read failed", "error", err)
		w.fail(job, fmt.Sprintf("read: %s", err), "reading")
		return
	}
	job.SetTitle(doc.Title)

	// Phase 1.5: Dedup
	entries, dups := dedupEntries(doc.Entries)
	job.SetEntries(len(entries), dups)
	log.Info("read document", "entries", len(entries), "duplicates", dups)

	if len(entries) == 0 {
		log.Warn("no candidate notations found")
		w.fail(job, "no candidate notations found", "reading")
		return
	}

	// Phase 2: Parse with bounded concurrency.
	job.SetStatus(StatusParsing, "parsing")
	type entryResult struct {
		res Result
		idx int
	}
	results := make(chan entryResult, len(entries))
	sem := make(chan struct{}, w.maxConcurrentParse)

	for i, e := range entries {
		sem <- struct{}{}
		go func(i int, e source.Entry) {
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results <- entryResult{res: rejected(e, err), idx: i}
				return
			}
			results <- entryResult{res: ParseEntry(e, w.maxNotationLength), idx: i}
		}(i, e)
	}

	for range entries {
		r := <-results
		job.RecordResult(r.idx, r.res)
	}

	snap := job.Snapshot()
	log.Info("parsing complete", "parsed", snap.Progress.Parsed, "rejected", snap.Progress.Rejected)

	switch {
	case snap.Progress.Rejected == 0:
		w.finish(job, StatusCompleted, "done")
	case snap.Progress.Parsed > 0:
		w.finish(job, StatusPartial, "done")
	default:
		w.finish(job, StatusFailed, "parsing")
	}
}

func (w *Worker) fail(job *Job, msg, phase string) {
	job.AddError(msg)
	w.finish(job, StatusFailed, phase)
}

func (w *Worker) finish(job *Job, status JobStatus, phase string) {
	job.SetStatus(status, phase)
	metrics.Jobs.WithLabelValues(string(status)).Inc()
}

// ParseEntry parses one candidate and fills in its canonical form and
// counts, or the error that rejected it. Inputs longer than maxLen are
// rejected without parsing when maxLen is positive.
func ParseEntry(e source.Entry, maxLen int) Result {
	if maxLen > 0 && len(e.Text) > maxLen {
		metrics.Parses.WithLabelValues(metrics.ResultRejected).Inc()
		return rejected(e, fmt.Errorf("notation exceeds %d characters", maxLen))
	}

	start := time.Now()
	canonical, tree, err := smiles.Canonical(e.Text)
	metrics.ParseDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Parses.WithLabelValues(metrics.ResultRejected).Inc()
		return rejected(e, err)
	}
	metrics.Parses.WithLabelValues(metrics.ResultOK).Inc()

	stats := molecule.Count(tree)
	return Result{
		Input:     e.Text,
		Canonical: canonical,
		Kind:      string(tree.Kind()),
		Atoms:     stats.Atoms,
		Rings:     stats.Rings,
		Label:     e.Label,
		Page:      e.Page,
		Line:      e.Line,
	}
}

func rejected(e source.Entry, err error) Result {
	return Result{
		Input: e.Text,
		Label: e.Label,
		Page:  e.Page,
		Line:  e.Line,
		Error: err.Error(),
	}
}

// dedupEntries keeps the first occurrence of each notation, keyed by the
// hash of its text, and returns how many repeats were dropped.
func dedupEntries(entries []source.Entry) ([]source.Entry, int) {
	seen := make(map[string]bool, len(entries))
	out := make([]source.Entry, 0, len(entries))
	for _, e := range entries {
		h := ContentHashHex([]byte(e.Text))
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, e)
	}
	return out, len(entries) - len(out)
}
