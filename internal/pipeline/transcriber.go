package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"

	"github.com/ytlearn/backend/internal/clients/gcp"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

// TranscriberProvider selects which Transcriber variant the factory builds.
type TranscriberProvider string

const (
	TranscriberProviderLocal  TranscriberProvider = "local"
	TranscriberProviderRemote TranscriberProvider = "remote"
)

// TranscriberConfigError reports a misconfigured transcription provider at
// startup, in the same shape as the rest of the pack's config-resolution
// errors: the offending provider value plus its cause.
type TranscriberConfigError struct {
	Provider string
	Cause    error
}

func (e *TranscriberConfigError) Error() string {
	return fmt.Sprintf("invalid transcription_provider %q: %v", e.Provider, e.Cause)
}

func (e *TranscriberConfigError) Unwrap() error { return e.Cause }

// Transcriber is the polymorphic speech-to-text capability. Implementations
// report a per-request size limit so the orchestration layer atop them
// knows when chunking is required; 0 means unbounded.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string) (string, error)
	MaxFileSizeBytes() int64
}

type TranscriberConfig struct {
	Provider            TranscriberProvider
	Model               string
	WhisperBinPath      string
	RemoteMaxFileSizeMB int
	Timeout             time.Duration
}

// NewTranscriber selects a variant by configuration, mirroring the pack's
// factory-by-config pattern (resolveVectorProviderConfig) for picking a
// backend at startup rather than dispatching dynamically per call.
func NewTranscriber(cfg TranscriberConfig, speech gcp.Speech, log *logger.Logger) (Transcriber, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	switch cfg.Provider {
	case TranscriberProviderLocal:
		binPath := cfg.WhisperBinPath
		if binPath == "" {
			binPath = "whisper"
		}
		return &localTranscriber{cfg: cfg, binPath: binPath, log: log.With("service", "Transcriber", "provider", "local")}, nil
	case TranscriberProviderRemote:
		if speech == nil {
			return nil, &TranscriberConfigError{Provider: string(cfg.Provider), Cause: fmt.Errorf("remote provider requires a configured speech client")}
		}
		maxMB := cfg.RemoteMaxFileSizeMB
		if maxMB <= 0 {
			maxMB = 10
		}
		return &remoteTranscriber{cfg: cfg, speech: speech, maxBytes: int64(maxMB) * 1024 * 1024, log: log.With("service", "Transcriber", "provider", "remote")}, nil
	default:
		return nil, &TranscriberConfigError{Provider: string(cfg.Provider), Cause: fmt.Errorf("must be %q or %q", TranscriberProviderLocal, TranscriberProviderRemote)}
	}
}

// localTranscriber shells out to a whisper.cpp-style binary once per call,
// over the whole file. The backing library is not re-entrant so calls are
// serialized behind a mutex, per the concurrency model's singleton rule.
type localTranscriber struct {
	cfg     TranscriberConfig
	binPath string
	mu      sync.Mutex
	log     *logger.Logger
}

func (t *localTranscriber) MaxFileSizeBytes() int64 { return 0 }

func (t *localTranscriber) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	outDir, err := os.MkdirTemp("", "ytlearn-whisper-*")
	if err != nil {
		return "", fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		"--model", t.cfg.Model,
		"--language", nonEmpty(language, "en"),
		"--output_format", "txt",
		"--output_dir", outDir,
		audioPath,
	}
	t.log.Debug("invoking local transcription model", "command", t.binPath+" "+shellescape.QuoteCommand(args))

	cmd := exec.CommandContext(ctx, t.binPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("local transcription failed: %w; out=%s", err, string(out))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	txtPath := filepath.Join(outDir, base+".txt")
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// remoteTranscriber wraps gcp.Speech. Callers (the transcription
// orchestration layer) are responsible for invoking the Chunker first when
// a file exceeds MaxFileSizeBytes.
type remoteTranscriber struct {
	cfg      TranscriberConfig
	speech   gcp.Speech
	maxBytes int64
	log      *logger.Logger
}

func (t *remoteTranscriber) MaxFileSizeBytes() int64 { return t.maxBytes }

func (t *remoteTranscriber) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	if int64(len(data)) > t.maxBytes {
		return "", fmt.Errorf("audio file %d bytes exceeds remote provider limit %d bytes", len(data), t.maxBytes)
	}

	res, err := t.speech.TranscribeAudioBytes(ctx, data, mimeTypeForExt(audioPath), gcp.SpeechConfig{
		LanguageCode:               nonEmpty(language, "en-US"),
		Model:                      t.cfg.Model,
		EnableAutomaticPunctuation: true,
	})
	if err != nil {
		return "", err
	}
	return res.PrimaryText, nil
}

func mimeTypeForExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".ogg", ".opus":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

func nonEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
