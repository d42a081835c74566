package localmedia

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ytlearn/backend/internal/platform/ctxutil"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

// Tools is the glue around the ffmpeg/ffprobe binaries that back the
// Chunker. Synchronous and
// deterministic; callers own their own timeouts beyond the binary-level ones
// enforced here.
type Tools interface {
	AssertReady(ctx context.Context) error

	ExtractAudioFromVideo(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error)

	// Probe reports duration and file size for an audio/video file via ffprobe.
	Probe(ctx context.Context, path string) (ProbeResult, error)

	// DetectSilence runs ffmpeg's silencedetect filter and returns the
	// midpoint (seconds) of every detected silence interval, in order.
	DetectSilence(ctx context.Context, path string, noiseFloorDB float64, minDurationSec float64) ([]float64, error)

	// SplitSegment stream-copies [startSec, endSec) of path into outPath
	// without re-encoding.
	SplitSegment(ctx context.Context, path string, outPath string, startSec, endSec float64) error

	// WriteTempFile persists bytes to a content-addressed path under the
	// work root, returning a cleanup func.
	WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error)
}

type MediaToolsService = Tools

func NewMediaToolsService(log *logger.Logger) MediaToolsService { return New(log) }

type AudioExtractOptions struct {
	SampleRateHz int
	Channels     int
	Format       string // "wav" or "flac"
}

type ProbeResult struct {
	DurationSec float64
	SizeBytes   int64
}

type tools struct {
	log *logger.Logger

	ffmpegPath  string
	ffprobePath string

	workRoot string

	defaultTimeout time.Duration
}

func New(log *logger.Logger) Tools {
	slog := log.With("service", "MediaTools")
	return &tools{
		log:            slog,
		ffmpegPath:     "ffmpeg",
		ffprobePath:    "ffprobe",
		workRoot:       "/tmp/ytlearn-media",
		defaultTimeout: 30 * time.Minute,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, bin := range []string{m.ffmpegPath, m.ffprobePath} {
		if err := m.assertBinary(ctx, bin); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) assertBinary(ctx context.Context, name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", name, err)
	}
	return nil
}

func (m *tools) WriteTempFile(ctx context.Context, data []byte, suffix string) (string, func(), error) {
	ctx = ctxutil.Default(ctx)
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	h := sha256.Sum256(data)
	base := hex.EncodeToString(h[:])[:16]
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	path := filepath.Join(m.workRoot, fmt.Sprintf("%s%s", base, suffix))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(path) }
	return path, cleanup, nil
}

func (m *tools) ExtractAudioFromVideo(ctx context.Context, videoPath string, outPath string, opts AudioExtractOptions) (string, error) {
	ctx = ctxutil.Default(ctx)
	if err := m.AssertReady(ctx); err != nil {
		return "", err
	}
	if videoPath == "" {
		return "", fmt.Errorf("videoPath required")
	}
	if outPath == "" {
		return "", fmt.Errorf("outPath required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir outPath dir: %w", err)
	}

	sr := opts.SampleRateHz
	if sr <= 0 {
		sr = 16000
	}
	ch := opts.Channels
	if ch <= 0 {
		ch = 1
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "wav"
	}
	if format != "wav" && format != "flac" {
		return "", fmt.Errorf("unsupported audio format: %s", format)
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(ch),
		"-ar", strconv.Itoa(sr),
		"-f", format,
		outPath,
	}

	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg extract audio failed: %w; out=%s", err, string(out))
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio output missing at %s", outPath)
	}
	return outPath, nil
}

func (m *tools) Probe(ctx context.Context, path string) (ProbeResult, error) {
	ctx = ctxutil.Default(ctx)
	if path == "" {
		return ProbeResult{}, fmt.Errorf("path required")
	}
	if _, err := exec.LookPath(m.ffprobePath); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe failed: %w; out=%s", err, string(out))
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe duration unparsable: %q: %w", string(out), err)
	}

	return ProbeResult{DurationSec: dur, SizeBytes: info.Size()}, nil
}

var silenceEndPattern = regexp.MustCompile(`silence_start:\s*([0-9.]+)`)
var silenceStartEndPattern = regexp.MustCompile(`silence_end:\s*([0-9.]+)\s*\|\s*silence_duration:\s*([0-9.]+)`)

func (m *tools) DetectSilence(ctx context.Context, path string, noiseFloorDB float64, minDurationSec float64) ([]float64, error) {
	ctx = ctxutil.Default(ctx)
	if err := m.AssertReady(ctx); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("path required")
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseFloorDB, minDurationSec)
	cmd := exec.CommandContext(ctx, m.ffmpegPath, "-i", path, "-af", filter, "-f", "null", "-")
	out, err := cmd.CombinedOutput()
	// silencedetect writes to stderr even on the normal (exit 0) path; an
	// actual failure is only distinguishable by a non-zero exit code with
	// no silence markers at all, which callers treat as "no silence found".
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("ffmpeg silencedetect failed: %w; out=%s", err, string(out))
		}
	}

	starts := silenceEndPattern.FindAllStringSubmatch(string(out), -1)
	ends := silenceStartEndPattern.FindAllStringSubmatch(string(out), -1)
	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}

	midpoints := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		start, serr := strconv.ParseFloat(starts[i][1], 64)
		end, eerr := strconv.ParseFloat(ends[i][1], 64)
		if serr != nil || eerr != nil || end < start {
			continue
		}
		midpoints = append(midpoints, (start+end)/2)
	}
	sort.Float64s(midpoints)
	return midpoints, nil
}

func (m *tools) SplitSegment(ctx context.Context, path string, outPath string, startSec, endSec float64) error {
	ctx = ctxutil.Default(ctx)
	if err := m.AssertReady(ctx); err != nil {
		return err
	}
	if path == "" || outPath == "" {
		return fmt.Errorf("path and outPath required")
	}
	if endSec <= startSec {
		return fmt.Errorf("endSec must be > startSec")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("mkdir outPath dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(startSec, 'f', 3, 64),
		"-to", strconv.FormatFloat(endSec, 'f', 3, 64),
		"-i", path,
		"-c", "copy",
		outPath,
	}
	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg split segment failed: %w; out=%s", err, string(out))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("segment output missing at %s", outPath)
	}
	return nil
}
