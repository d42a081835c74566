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

type VideoHandler struct {
	videos   repos.VideoRepo
	download pipeline.DownloadService
}

func NewVideoHandler(videos repos.VideoRepo, download pipeline.DownloadService) *VideoHandler {
	return &VideoHandler{videos: videos, download: download}
}

type downloadRequest struct {
	URLs []string `json:"urls"`
}

// POST /videos/download
func (h *VideoHandler) Download(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
		response.RespondAppError(c, apperr.NewValidationError("urls must be a non-empty array"))
		return
	}

	batch := pipeline.RunBatch(req.URLs, func(url string) pipeline.DownloadItemResult {
		res := h.download.DownloadVideo(c.Request.Context(), url)
		metrics.RecordDownload(res.Status)
		return res
	})
	counts := pipeline.CountByStatus(batch.Results, func(r pipeline.DownloadItemResult) string { return r.Status })

	response.RespondOK(c, gin.H{
		"results":    batch.Results,
		"total":      batch.Total,
		"successful": counts[pipeline.DownloadStatusSuccess],
		"duplicates": counts[pipeline.DownloadStatusDuplicate],
		"failed":     counts[pipeline.DownloadStatusFailed],
	})
}

// GET /videos?skip&limit
func (h *VideoHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.Query("skip"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.videos.List(dbc, c.Query("status"), limit, skip)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": rows})
}

// GET /videos/{external_id}
func (h *VideoHandler) Get(c *gin.Context) {
	externalID := c.Param("external_id")
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	row, err := h.videos.GetByExternalID(dbc, externalID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if row == nil {
		response.RespondAppError(c, apperr.NewNotFoundError("video", externalID))
		return
	}
	response.RespondOK(c, row)
}

// DELETE /videos/{external_id}?cascade=true
func (h *VideoHandler) Delete(c *gin.Context) {
	externalID := c.Param("external_id")
	cascade, _ := strconv.ParseBool(c.Query("cascade"))

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	row, err := h.videos.GetByExternalID(dbc, externalID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if row == nil {
		response.RespondAppError(c, apperr.NewNotFoundError("video", externalID))
		return
	}
	if err := h.videos.Delete(dbc, row.ID, cascade); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
