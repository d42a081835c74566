package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/http/response"
	"github.com/ytlearn/backend/internal/pipeline"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/metrics"
)

type TranscriptionHandler struct {
	transcriptions repos.TranscriptionRepo
	videos         repos.VideoRepo
	service        pipeline.TranscriptionService
}

func NewTranscriptionHandler(transcriptions repos.TranscriptionRepo, videos repos.VideoRepo, service pipeline.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{transcriptions: transcriptions, videos: videos, service: service}
}

type transcribeRequest struct {
	VideoExternalIDs []string `json:"video_ids"`
}

// POST /videos/transcribe (alias POST /transcriptions/transcribe)
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.VideoExternalIDs) == 0 {
		response.RespondAppError(c, apperr.NewValidationError("video_ids must be a non-empty array"))
		return
	}

	batch := pipeline.RunBatch(req.VideoExternalIDs, func(id string) pipeline.TranscribeItemResult {
		res := h.service.TranscribeVideo(c.Request.Context(), id)
		metrics.RecordTranscription(res.Status)
		return res
	})
	counts := pipeline.CountByStatus(batch.Results, func(r pipeline.TranscribeItemResult) string { return r.Status })

	response.RespondOK(c, gin.H{
		"results":    batch.Results,
		"total":      batch.Total,
		"successful": counts[pipeline.TranscribeStatusSuccess],
		"not_found":  counts[pipeline.TranscribeStatusNotFound],
		"no_audio":   counts[pipeline.TranscribeStatusNoAudio],
		"failed":     counts[pipeline.TranscribeStatusFailed],
	})
}

// GET /transcriptions?skip&limit&video_id
func (h *TranscriptionHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.Query("skip"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	var videoID uint
	if externalID := c.Query("video_id"); externalID != "" {
		video, err := h.videos.GetByExternalID(dbc, externalID)
		if err != nil {
			response.RespondAppError(c, err)
			return
		}
		if video == nil {
			response.RespondOK(c, gin.H{"transcriptions": []any{}})
			return
		}
		videoID = video.ID
	}

	rows, err := h.transcriptions.List(dbc, videoID, limit, skip)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"transcriptions": rows})
}

// GET /transcriptions/{id}
func (h *TranscriptionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondAppError(c, apperr.NewValidationError("invalid transcription id"))
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	row, err := h.transcriptions.GetByID(dbc, uint(id))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if row == nil {
		response.RespondAppError(c, apperr.NewNotFoundError("transcription", c.Param("id")))
		return
	}
	response.RespondOK(c, row)
}

// GET /transcriptions/video/{external_id}
func (h *TranscriptionHandler) GetByVideo(c *gin.Context) {
	externalID := c.Param("external_id")
	dbc := dbctx.Context{Ctx: c.Request.Context()}

	video, err := h.videos.GetByExternalID(dbc, externalID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if video == nil {
		response.RespondAppError(c, apperr.NewNotFoundError("video", externalID))
		return
	}

	rows, err := h.transcriptions.List(dbc, video.ID, 0, 0)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"transcriptions": rows})
}

// DELETE /transcriptions/{id}
func (h *TranscriptionHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondAppError(c, apperr.NewValidationError("invalid transcription id"))
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.transcriptions.Delete(dbc, uint(id)); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
