package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/parser"
	"github.com/dgallion1/docvoice/internal/speech"
)

// fakeSynth returns canned audio, optionally failing the first few
// calls.
type fakeSynth struct {
	audio    []byte
	failures int
	failWith error
	calls    int
	lastText string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	f.lastText = text
	if f.failures > 0 {
		f.failures--
		return nil, f.failWith
	}
	return f.audio, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runConfig(input, output string) config.Config {
	return config.Config{
		InputPath:  input,
		OutputPath: output,
		Language:   "en",
		ChunkLimit: 100,
		MaxRetries: 3,
	}
}

func TestRun_WritesAudioFile(t *testing.T) {
	input := writeInput(t, "doc.txt", "Hello World")
	output := filepath.Join(t.TempDir(), "out.mp3")
	synth := &fakeSynth{audio: []byte("AUDIO")}

	res, err := Run(context.Background(), runConfig(input, output), synth, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if string(data) != "AUDIO" {
		t.Errorf("expected %q, got %q", "AUDIO", string(data))
	}
	if synth.lastText != "Hello World" {
		t.Errorf("expected synthesized text %q, got %q", "Hello World", synth.lastText)
	}
	if res.AudioBytes != 5 {
		t.Errorf("expected 5 audio bytes, got %d", res.AudioBytes)
	}
}

func TestRun_NoExtractableText(t *testing.T) {
	input := writeInput(t, "blank.txt", "   \n\t\n  ")
	output := filepath.Join(t.TempDir(), "out.mp3")
	synth := &fakeSynth{audio: []byte("AUDIO")}

	_, err := Run(context.Background(), runConfig(input, output), synth, testLogger())
	if !errors.Is(err, ErrNoExtractableText) {
		t.Fatalf("expected ErrNoExtractableText, got %v", err)
	}

	if synth.calls != 0 {
		t.Errorf("synthesizer should not be called, got %d calls", synth.calls)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Error("no audio file should be written on the empty path")
	}
}

func TestRun_InputNotFound(t *testing.T) {
	cfg := runConfig(filepath.Join(t.TempDir(), "missing.pdf"), filepath.Join(t.TempDir(), "out.mp3"))

	_, err := Run(context.Background(), cfg, &fakeSynth{}, testLogger())
	if !errors.Is(err, parser.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}

func TestRun_UnsupportedExtension(t *testing.T) {
	cfg := runConfig("input.xyz", "out.mp3")
	if _, err := Run(context.Background(), cfg, &fakeSynth{}, testLogger()); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestRun_OverwritesExistingOutput(t *testing.T) {
	input := writeInput(t, "doc.txt", "fresh content")
	output := filepath.Join(t.TempDir(), "out.mp3")
	if err := os.WriteFile(output, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	synth := &fakeSynth{audio: []byte("NEW")}
	if _, err := Run(context.Background(), runConfig(input, output), synth, testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(output)
	if string(data) != "NEW" {
		t.Errorf("expected overwrite, got %q", string(data))
	}
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	restore := timeAfter
	timeAfter = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	defer func() { timeAfter = restore }()

	input := writeInput(t, "doc.txt", "retry me")
	output := filepath.Join(t.TempDir(), "out.mp3")
	synth := &fakeSynth{
		audio:    []byte("OK"),
		failures: 2,
		failWith: &speech.RetryableError{StatusCode: 503, Message: "overloaded"},
	}

	if _, err := Run(context.Background(), runConfig(input, output), synth, testLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if synth.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", synth.calls)
	}
}

func TestRun_TerminalSynthesisError(t *testing.T) {
	input := writeInput(t, "doc.txt", "doomed")
	output := filepath.Join(t.TempDir(), "out.mp3")
	synth := &fakeSynth{
		failures: 1,
		failWith: fmt.Errorf("tts status 400: bad request"),
	}

	_, err := Run(context.Background(), runConfig(input, output), synth, testLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	if synth.calls != 1 {
		t.Errorf("terminal errors must not be retried, got %d calls", synth.calls)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("no audio file should be written on synthesis failure")
	}
}

func TestRun_RetriesExhausted(t *testing.T) {
	restore := timeAfter
	timeAfter = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	defer func() { timeAfter = restore }()

	input := writeInput(t, "doc.txt", "never works")
	cfg := runConfig(input, filepath.Join(t.TempDir(), "out.mp3"))
	cfg.MaxRetries = 2
	synth := &fakeSynth{
		failures: 10,
		failWith: &speech.RetryableError{StatusCode: 503, Message: "down"},
	}

	_, err := Run(context.Background(), cfg, synth, testLogger())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if synth.calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", synth.calls)
	}
}
