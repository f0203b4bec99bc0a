package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docvoice/internal/audiostore"
	"github.com/dgallion1/docvoice/internal/chunker"
	"github.com/dgallion1/docvoice/internal/parser"
	"github.com/dgallion1/docvoice/internal/speech"
)

// SynthFactory builds a synthesizer for a job's language and speed.
type SynthFactory func(language string, slow bool) speech.Synthesizer

// Worker processes a single conversion job.
type Worker struct {
	factory SynthFactory
	store   *audiostore.Store
	stats   *speech.SynthStats
	log     *slog.Logger

	chunkLimit         int
	maxRetries         int
	maxConcurrentSynth int
}

func NewWorker(factory SynthFactory, store *audiostore.Store, stats *speech.SynthStats, log *slog.Logger, chunkLimit, maxRetries, maxSynth int) *Worker {
	if chunkLimit <= 0 {
		chunkLimit = chunker.DefaultLimit
	}
	if maxSynth <= 0 {
		maxSynth = 1
	}
	return &Worker{
		factory:            factory,
		store:              store,
		stats:              stats,
		log:                log,
		chunkLimit:         chunkLimit,
		maxRetries:         maxRetries,
		maxConcurrentSynth: maxSynth,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetPages(doc.PageCount, doc.SkippedPages)

	text := doc.SpokenText()
	if text == "" {
		log.Info("no speakable text", "pages", doc.PageCount, "skipped_pages", doc.SkippedPages)
		job.SetStatus(StatusNoText, "done")
		return
	}

	// Phase 2: Chunk + synthesize with bounded concurrency. Chunks
	// are reassembled strictly in order: a gap in the middle would
	// corrupt the narration, so any chunk failure fails the job.
	job.SetStatus(StatusSynthesizing, "synthesizing")
	synth := w.factory(job.Language, job.Slow)
	if c, ok := synth.(interface{ Close() }); ok {
		defer c.Close()
	}
	chunks := chunker.Split(text, w.chunkLimit)
	job.SetTotalChunks(len(chunks))
	log.Info("synthesizing", "chunks", len(chunks), "chars", len(text))

	pieces := make([][]byte, len(chunks))
	errCh := make(chan error, len(chunks))
	sem := make(chan struct{}, w.maxConcurrentSynth)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, part string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := w.synthesizeChunk(ctx, synth, part)
			if err != nil {
				errCh <- fmt.Errorf("chunk %d: %w", idx+1, err)
				return
			}
			pieces[idx] = data
			job.IncrChunksSynthesized()
		}(i, chunk)
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		log.Error("synthesis failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "synthesizing")
		return
	}

	var audio bytes.Buffer
	for _, piece := range pieces {
		audio.Write(piece)
	}
	job.SetAudioBytes(audio.Len())

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	path, err := w.store.Save(job.DocID, audio.Bytes())
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	log.Info("conversion complete", "path", path, "bytes", audio.Len())
	job.SetStatus(StatusCompleted, "done")
}

// synthesizeChunk synthesizes one chunk with retry on transient
// failures, recording latency stats.
func (w *Worker) synthesizeChunk(ctx context.Context, synth speech.Synthesizer, text string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timeAfter(Backoff(attempt - 1)):
			}
		}

		start := time.Now()
		data, err := synth.Synthesize(ctx, text)
		if err == nil {
			if w.stats != nil {
				w.stats.Record(time.Since(start).Milliseconds(), int64(len(data)))
			}
			return data, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", w.maxRetries, lastErr)
}
