package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

// externalIDPattern pulls the canonical 11-character video id out of the
// handful of URL shapes YouTube accepts: watch?v=, youtu.be/, shorts/, embed/.
var externalIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|shorts/|embed/)([0-9A-Za-z_-]{11})`)

// ParseExternalID extracts the 11-character video id from a YouTube URL.
func ParseExternalID(rawURL string) (string, error) {
	m := externalIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", apperr.NewValidationError("url does not contain a recognizable video id: %s", rawURL)
	}
	return m[1], nil
}

// FetchResult reports the outcome of one Fetch call. AlreadyExists is set
// instead of an error when the video is already present in the Store.
type FetchResult struct {
	Video         *domain.Video
	AlreadyExists bool
}

// MediaFetcher downloads a video's audio track by external id and records
// it in the Store.
type MediaFetcher interface {
	Fetch(ctx context.Context, rawURL string) (FetchResult, error)
}

// FetcherConfig is read once at startup.
type FetcherConfig struct {
	StoragePath string
	AudioFormat string // "wav" or "mp3"
	YtDlpPath   string
	Timeout     time.Duration
}

type mediaFetcher struct {
	cfg    FetcherConfig
	videos repos.VideoRepo
	log    *logger.Logger
}

func NewMediaFetcher(cfg FetcherConfig, videos repos.VideoRepo, log *logger.Logger) MediaFetcher {
	if cfg.AudioFormat == "" {
		cfg.AudioFormat = "wav"
	}
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = "yt-dlp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &mediaFetcher{cfg: cfg, videos: videos, log: log.With("service", "MediaFetcher")}
}

func (f *mediaFetcher) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	externalID, err := ParseExternalID(rawURL)
	if err != nil {
		return FetchResult{}, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	existing, err := f.videos.GetByExternalID(dbc, externalID)
	if err != nil {
		return FetchResult{}, err
	}
	if existing != nil {
		return FetchResult{Video: existing, AlreadyExists: true}, nil
	}

	audioDir := filepath.Join(f.cfg.StoragePath, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return FetchResult{}, apperr.NewRemoteFailureError("create audio dir: %v", err)
	}
	outPath := filepath.Join(audioDir, fmt.Sprintf("%s.%s", externalID, f.cfg.AudioFormat))

	title, thumb, err := f.download(ctx, rawURL, outPath)
	if err != nil {
		return FetchResult{}, err
	}

	if _, statErr := os.Stat(outPath); statErr != nil {
		return FetchResult{}, apperr.NewRemoteFailureError("downloader reported success but output file is missing: %s", outPath)
	}

	row := &domain.Video{
		ExternalID: externalID,
		Title:      title,
		AudioPath:  &outPath,
		Status:     domain.VideoStatusCompleted,
	}
	if thumb != "" {
		row.ThumbnailURL = &thumb
	}

	saved, err := f.videos.Insert(dbc, row)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Video: saved}, nil
}

// download shells out to yt-dlp, requesting best audio transcoded to the
// configured format with metadata and the thumbnail embedded. It returns
// the reported title/thumbnail via two trailing --print lines.
func (f *mediaFetcher) download(ctx context.Context, rawURL string, outPath string) (title string, thumb string, err error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	args := []string{
		"--no-playlist",
		"-f", "bestaudio/best",
		"-x", "--audio-format", f.cfg.AudioFormat,
		"--embed-thumbnail",
		"--add-metadata",
		"-o", outPath,
		"--print", "after_move:%(title)s",
		"--print", "after_move:%(thumbnail)s",
		rawURL,
	}

	cmd := exec.CommandContext(ctx, f.cfg.YtDlpPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	f.log.Debug("invoking downloader", "command", f.cfg.YtDlpPath+" "+shellescape.QuoteCommand(args))

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", "", apperr.NewTimeoutError("downloader exceeded %s for %s", f.cfg.Timeout, rawURL)
	}
	if runErr != nil {
		return "", "", apperr.NewRemoteFailureError("downloader failed: %v; stderr=%s", runErr, strings.TrimSpace(stderr.String()))
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) > 0 {
		title = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 {
		thumb = strings.TrimSpace(lines[1])
	}
	return title, thumb, nil
}
