package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/http/response"
	"github.com/ytlearn/backend/internal/pipeline"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/metrics"
)

type GenerationHandler struct {
	generations repos.GenerationRepo
	questionGen pipeline.QuestionGenerator
}

func NewGenerationHandler(generations repos.GenerationRepo, questionGen pipeline.QuestionGenerator) *GenerationHandler {
	return &GenerationHandler{generations: generations, questionGen: questionGen}
}

type generateRequest struct {
	VideoExternalIDs []string `json:"video_ids"`
	QuestionCount    int      `json:"question_count"`
}

// POST /questions/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.VideoExternalIDs) == 0 {
		response.RespondAppError(c, apperr.NewValidationError("video_ids must be a non-empty array"))
		return
	}

	summary, err := h.questionGen.Generate(c.Request.Context(), pipeline.QuestionGenRequest{
		VideoExternalIDs: req.VideoExternalIDs,
		QuestionCount:    req.QuestionCount,
	})
	if err != nil {
		metrics.RecordQuestionGeneration("error", 0)
		response.RespondAppError(c, err)
		return
	}
	metrics.RecordQuestionGeneration("ok", summary.TotalQuestions)

	response.RespondOK(c, gin.H{
		"total":            summary.Total,
		"successful":       summary.Successful,
		"failed":           summary.Failed,
		"no_transcription": summary.NoTranscription,
		"total_questions":  summary.TotalQuestions,
		"generation_id":    summary.GenerationID,
	})
}

// GET /generations?skip&limit
func (h *GenerationHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.Query("skip"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.generations.List(dbc, limit, skip)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"generations": rows})
}

// GET /generations/{id}
func (h *GenerationHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	row, err := h.generations.GetByID(dbc, id, true)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if row == nil {
		response.RespondAppError(c, apperr.NewNotFoundError("generation", c.Param("id")))
		return
	}
	response.RespondOK(c, row)
}

// DELETE /generations/{id}
func (h *GenerationHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.generations.Delete(dbc, id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateQuestionRequest struct {
	QuestionText *string `json:"question_text"`
	Answer       *string `json:"answer"`
	Context      *string `json:"context"`
	Difficulty   *string `json:"difficulty"`
	QuestionType *string `json:"question_type"`
	OrderIndex   *int    `json:"order_index"`
}

// PUT /generations/{id}/questions/{qid}
func (h *GenerationHandler) UpdateQuestion(c *gin.Context) {
	genID, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	qID, err := parseUintParam(c, "qid")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apperr.NewValidationError("invalid request body"))
		return
	}
	if req.Difficulty != nil && !domain.IsValidDifficulty(*req.Difficulty) {
		response.RespondAppError(c, apperr.NewValidationError("invalid difficulty %q", *req.Difficulty))
		return
	}
	if req.QuestionType != nil && !domain.IsValidQuestionType(*req.QuestionType) {
		response.RespondAppError(c, apperr.NewValidationError("invalid question_type %q", *req.QuestionType))
		return
	}

	updates := map[string]interface{}{}
	if req.QuestionText != nil {
		updates["question_text"] = *req.QuestionText
	}
	if req.Answer != nil {
		updates["answer"] = *req.Answer
	}
	if req.Context != nil {
		updates["context"] = *req.Context
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if req.QuestionType != nil {
		updates["question_type"] = *req.QuestionType
	}
	if req.OrderIndex != nil {
		updates["order_index"] = *req.OrderIndex
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.generations.UpdateQuestionFields(dbc, genID, qID, updates); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /generations/{id}/questions/{qid}
func (h *GenerationHandler) DeleteQuestion(c *gin.Context) {
	genID, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	qID, err := parseUintParam(c, "qid")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.generations.DeleteQuestion(dbc, genID, qID); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	QuestionIDs []uint `json:"question_ids"`
}

// PUT /generations/{id}/questions/reorder
func (h *GenerationHandler) ReorderQuestions(c *gin.Context) {
	genID, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apperr.NewValidationError("invalid request body"))
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if err := h.generations.ReorderQuestions(dbc, genID, req.QuestionIDs); err != nil {
		response.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.NewValidationError("invalid %s", name)
	}
	return uint(v), nil
}
