package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/logger"
	"github.com/ytlearn/backend/internal/platform/localmedia"
)

// ChunkerConfig mirrors the configuration variables operators set to
// control chunking.
type ChunkerConfig struct {
	StoragePath                 string
	MaxChunkSizeMB              float64
	SilenceThresholdDB          float64
	MinSilenceDurationS         float64
	DeleteOriginalAfterChunking bool
}

// Chunker splits a Video's audio into contiguous, non-overlapping segments
// once it exceeds the configured size threshold.
type Chunker interface {
	Chunk(ctx context.Context, video *domain.Video) ([]*domain.AudioChunk, error)
}

type chunker struct {
	cfg    ChunkerConfig
	tools  localmedia.Tools
	chunks repos.AudioChunkRepo
	log    *logger.Logger
}

func NewChunker(cfg ChunkerConfig, tools localmedia.Tools, chunks repos.AudioChunkRepo, log *logger.Logger) Chunker {
	return &chunker{cfg: cfg, tools: tools, chunks: chunks, log: log.With("service", "Chunker")}
}

type segment struct{ start, end float64 }

func (c *chunker) Chunk(ctx context.Context, video *domain.Video) ([]*domain.AudioChunk, error) {
	if video == nil || video.AudioPath == nil {
		return nil, apperr.NewChunkingFailedError("video has no audio_path")
	}

	dbc := dbctx.Context{Ctx: ctx}
	existing, err := c.chunks.GetByVideoID(dbc, video.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	probe, err := c.tools.Probe(ctx, *video.AudioPath)
	if err != nil {
		return nil, apperr.NewChunkingFailedError("probe failed: %v", err)
	}

	thresholdBytes := int64(c.cfg.MaxChunkSizeMB * 1024 * 1024)
	if thresholdBytes <= 0 || probe.SizeBytes <= thresholdBytes {
		return nil, nil
	}

	midpoints, err := c.tools.DetectSilence(ctx, *video.AudioPath, c.cfg.SilenceThresholdDB, c.cfg.MinSilenceDurationS)
	if err != nil {
		return nil, apperr.NewChunkingFailedError("silence detection failed: %v", err)
	}

	targetDur := probe.DurationSec * (float64(thresholdBytes) / float64(probe.SizeBytes)) * 0.95
	if targetDur <= 0 {
		return nil, apperr.NewChunkingFailedError("computed target chunk duration is non-positive")
	}

	segments := planSegments(probe.DurationSec, targetDur, midpoints)
	if len(segments) == 0 {
		return nil, apperr.NewChunkingFailedError("no segments planned for a %0.fs file", probe.DurationSec)
	}

	ext := strings.TrimPrefix(filepath.Ext(*video.AudioPath), ".")
	chunkDir := filepath.Join(c.cfg.StoragePath, "audio", "chunks", video.ExternalID)

	produced := make([]*domain.AudioChunk, 0, len(segments))
	cleanup := func() {
		for _, ch := range produced {
			_ = os.Remove(ch.FilePath)
		}
	}

	for i, seg := range segments {
		outPath := filepath.Join(chunkDir, fmt.Sprintf("%s_chunk_%03d.%s", video.ExternalID, i, ext))
		if err := c.tools.SplitSegment(ctx, *video.AudioPath, outPath, seg.start, seg.end); err != nil {
			cleanup()
			return nil, apperr.NewChunkingFailedError("split segment %d failed: %v", i, err)
		}
		info, statErr := os.Stat(outPath)
		if statErr != nil {
			cleanup()
			return nil, apperr.NewChunkingFailedError("chunk %d output missing: %v", i, statErr)
		}
		produced = append(produced, &domain.AudioChunk{
			VideoID:    video.ID,
			ChunkIndex: i,
			FilePath:   outPath,
			SizeBytes:  info.Size(),
			StartMs:    int64(seg.start * 1000),
			EndMs:      int64(seg.end * 1000),
		})
	}

	saved, err := c.chunks.Create(dbc, produced)
	if err != nil {
		cleanup()
		return nil, apperr.NewChunkingFailedError("persist chunks failed: %v", err)
	}

	if c.cfg.DeleteOriginalAfterChunking {
		if rmErr := os.Remove(*video.AudioPath); rmErr != nil {
			c.log.Warn("failed to delete original audio after chunking", "path", *video.AudioPath, "error", rmErr)
		}
	}

	return saved, nil
}

// planSegments greedily walks silence midpoints (ascending, in seconds),
// starting a new segment at the latest midpoint within [offset, offset+target],
// or forcing a cut at offset+target when no midpoint falls in that window.
func planSegments(totalDur, target float64, midpoints []float64) []segment {
	var segs []segment
	offset := 0.0
	const epsilon = 1e-6

	for offset < totalDur-epsilon {
		window := offset + target
		cut := window
		best := -1.0
		for _, m := range midpoints {
			if m <= offset+epsilon {
				continue
			}
			if m > window {
				break
			}
			best = m
		}
		if best > offset {
			cut = best
		}
		if cut > totalDur {
			cut = totalDur
		}
		segs = append(segs, segment{start: offset, end: cut})
		offset = cut
	}
	return segs
}
