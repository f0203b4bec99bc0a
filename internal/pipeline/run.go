package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/document"
	"github.com/dgallion1/docvoice/internal/parser"
	"github.com/dgallion1/docvoice/internal/speech"
)

// ErrNoExtractableText is returned when a document yields no speakable
// text. It is the one expected, recoverable outcome: callers report it
// and exit cleanly without writing an output file.
var ErrNoExtractableText = errors.New("no extractable text")

// NoTextMessage is printed verbatim on the empty-content path.
const NoTextMessage = "No extractable text found in the PDF."

// Result summarizes a completed one-shot conversion.
type Result struct {
	InputPath    string
	OutputPath   string
	Pages        int
	Fragments    int
	SkippedPages int
	Chars        int
	AudioBytes   int
}

// Run executes the full conversion: load the input document, extract
// text page by page, and synthesize the joined text to an MP3 at the
// configured output path. The output file is only created on the
// non-empty path, and overwrites any existing file.
func Run(ctx context.Context, cfg config.Config, synth speech.Synthesizer, log *slog.Logger) (*Result, error) {
	doc, err := loadDocument(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	res := &Result{
		InputPath:    cfg.InputPath,
		OutputPath:   cfg.OutputPath,
		Pages:        doc.PageCount,
		Fragments:    len(doc.Fragments),
		SkippedPages: doc.SkippedPages,
	}

	log.Info("document parsed",
		"input", cfg.InputPath,
		"pages", doc.PageCount,
		"fragments", len(doc.Fragments),
		"skipped_pages", doc.SkippedPages,
	)

	text := doc.SpokenText()
	res.Chars = len(text)
	if text == "" {
		return res, ErrNoExtractableText
	}

	audio, err := synthesizeWithRetry(ctx, synth, text, cfg.MaxRetries, log)
	if err != nil {
		return res, fmt.Errorf("synthesize speech: %w", err)
	}
	res.AudioBytes = len(audio)

	if err := os.WriteFile(cfg.OutputPath, audio, 0o644); err != nil {
		return res, fmt.Errorf("write audio file: %w", err)
	}

	log.Info("audio written",
		"output", cfg.OutputPath,
		"bytes", len(audio),
		"chars", len(text),
	)

	return res, nil
}

// loadDocument picks a parser by extension and parses the file. The
// file handle is scoped to this function and released on every path.
func loadDocument(path string) (*document.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}

	// The PDF parser reads the file directly to avoid spooling.
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		return pdfParser.ParseFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("open %s: %w", path, parser.ErrInputNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f, filepath.Base(path))
}

// synthesizeWithRetry retries transient backend failures with
// exponential backoff. Terminal failures return immediately.
func synthesizeWithRetry(ctx context.Context, synth speech.Synthesizer, text string, maxRetries int, log *slog.Logger) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := Backoff(attempt - 1)
			log.Warn("retrying synthesis", "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timeAfter(wait):
			}
		}

		audio, err := synth.Synthesize(ctx, text)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
