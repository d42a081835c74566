package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/ytlearn/backend/internal/clients/openai"
	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/httpx"
	"github.com/ytlearn/backend/internal/pkg/logger"
	"github.com/ytlearn/backend/internal/pkg/retry"
)

const (
	defaultQuestionCount = 10
	minQuestionCount     = 1
	maxQuestionCount     = 50

	// promptCharBudget approximates the prompt-token budget in characters
	// (roughly 4 chars/token); split evenly across contributing videos.
	promptCharBudget = 48000
)

// QuestionGenRequest is the validated input to Generate.
type QuestionGenRequest struct {
	VideoExternalIDs []string
	QuestionCount    int
}

// QuestionGenSummary is returned on success; no_transcription, successful
// and failed partition the requested id set disjointly.
type QuestionGenSummary struct {
	Total           int
	Successful      int
	Failed          int
	NoTranscription int
	TotalQuestions  int
	GenerationID    uint
}

type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionGenRequest) (QuestionGenSummary, error)
}

type QuestionGeneratorConfig struct {
	Retry retry.Policy
}

type questionGenerator struct {
	cfg            QuestionGeneratorConfig
	videos         repos.VideoRepo
	transcriptions repos.TranscriptionRepo
	generations    repos.GenerationRepo
	llm            openai.Client
	log            *logger.Logger
}

func NewQuestionGenerator(cfg QuestionGeneratorConfig, store repos.Store, llm openai.Client, log *logger.Logger) QuestionGenerator {
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.Policy{
			MaxAttempts: 2,
			MinBackoff:  retry.Default().MinBackoff,
			MaxBackoff:  retry.Default().MaxBackoff,
			JitterFrac:  retry.Default().JitterFrac,
			Retryable:   httpx.IsRetryableError,
		}
	}
	return &questionGenerator{
		cfg:            cfg,
		videos:         store.Video,
		transcriptions: store.Transcription,
		generations:    store.Generation,
		llm:            llm,
		log:            log.With("service", "QuestionGenerator"),
	}
}

type videoTranscript struct {
	externalID string
	text       string
}

func (g *questionGenerator) Generate(ctx context.Context, req QuestionGenRequest) (QuestionGenSummary, error) {
	count := req.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count < minQuestionCount {
		count = minQuestionCount
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	dbc := dbctx.Context{Ctx: ctx}
	summary := QuestionGenSummary{Total: len(req.VideoExternalIDs)}

	var contributing []videoTranscript
	for _, extID := range req.VideoExternalIDs {
		video, err := g.videos.GetByExternalID(dbc, extID)
		if err != nil {
			return QuestionGenSummary{}, err
		}
		if video == nil {
			summary.NoTranscription++
			continue
		}
		tr, err := g.transcriptions.GetLatestByVideoID(dbc, video.ID)
		if err != nil {
			return QuestionGenSummary{}, err
		}
		if tr == nil || strings.TrimSpace(tr.Text) == "" {
			summary.NoTranscription++
			continue
		}
		contributing = append(contributing, videoTranscript{externalID: extID, text: tr.Text})
	}

	if len(contributing) == 0 {
		return summary, nil
	}

	prompt := buildQuestionPrompt(contributing, count)

	promptSpec, err := loadQuestionPromptSpec()
	if err != nil {
		return QuestionGenSummary{}, fmt.Errorf("load question prompt spec: %w", err)
	}

	var raw string
	err = retry.Do(ctx, g.cfg.Retry, func(attempt int) error {
		text, llmErr := g.llm.GenerateText(ctx, promptSpec.System, prompt)
		if llmErr != nil {
			return llmErr
		}
		raw = text
		return nil
	})
	if err != nil {
		return QuestionGenSummary{}, apperr.NewLLMUnavailableError("question generation LLM call failed: %v", err)
	}

	requested := make(map[string]bool, len(req.VideoExternalIDs))
	for _, id := range req.VideoExternalIDs {
		requested[id] = true
	}
	items := parseQuestionItems(raw, requested)

	contributed := make(map[string]bool)
	for _, it := range items {
		contributed[it.VideoExternalID] = true
	}

	idsJSON, err := json.Marshal(req.VideoExternalIDs)
	if err != nil {
		return QuestionGenSummary{}, fmt.Errorf("marshal video id list: %w", err)
	}

	gen := &domain.Generation{
		VideoExternalIDs: datatypes.JSON(idsJSON),
		QuestionCount:    len(items),
	}
	for i, it := range items {
		gen.Questions = append(gen.Questions, domain.Question{
			VideoExternalID: it.VideoExternalID,
			QuestionText:    it.QuestionText,
			Answer:          it.Answer,
			Context:         it.Context,
			Difficulty:      it.Difficulty,
			QuestionType:    it.QuestionType,
			OrderIndex:      i,
		})
	}

	saved, err := g.generations.Insert(dbc, gen)
	if err != nil {
		return QuestionGenSummary{}, err
	}

	for _, vt := range contributing {
		if contributed[vt.externalID] {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	summary.TotalQuestions = len(items)
	summary.GenerationID = saved.ID
	return summary, nil
}

func buildQuestionPrompt(videos []videoTranscript, count int) string {
	share := promptCharBudget / len(videos)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d questions total, drawn from the transcripts below. ", count)
	b.WriteString("Each question's video_id must be one of the ids shown.\n\n")
	for _, v := range videos {
		text := v.text
		if len(text) > share {
			text = text[:share]
		}
		fmt.Fprintf(&b, "=== video_id: %s ===\n%s\n\n", v.externalID, text)
	}
	return b.String()
}

type parsedQuestionItem struct {
	VideoExternalID string
	QuestionText    string
	Answer          *string
	Context         *string
	Difficulty      *string
	QuestionType    *string
}

type rawQuestionItem struct {
	QuestionText string  `json:"question_text"`
	Answer       *string `json:"answer"`
	Context      *string `json:"context"`
	Difficulty   *string `json:"difficulty"`
	QuestionType *string `json:"question_type"`
	VideoID      string  `json:"video_id"`
}

// parseQuestionItems extracts the first balanced JSON array from raw,
// drops malformed items (empty question_text or an unrecognized video_id),
// and nulls out difficulty/question_type values outside their enums.
func parseQuestionItems(raw string, requested map[string]bool) []parsedQuestionItem {
	arr, ok := extractBalancedJSONArray(raw)
	if !ok {
		return nil
	}
	var rawItems []rawQuestionItem
	if err := json.Unmarshal([]byte(arr), &rawItems); err != nil {
		return nil
	}

	out := make([]parsedQuestionItem, 0, len(rawItems))
	for _, r := range rawItems {
		if strings.TrimSpace(r.QuestionText) == "" {
			continue
		}
		if !requested[r.VideoID] {
			continue
		}
		item := parsedQuestionItem{
			VideoExternalID: r.VideoID,
			QuestionText:    r.QuestionText,
			Answer:          r.Answer,
			Context:         r.Context,
		}
		if r.Difficulty != nil && domain.IsValidDifficulty(*r.Difficulty) {
			item.Difficulty = r.Difficulty
		}
		if r.QuestionType != nil && domain.IsValidQuestionType(*r.QuestionType) {
			item.QuestionType = r.QuestionType
		}
		out = append(out, item)
	}
	return out
}

// extractBalancedJSONArray scans for the first top-level '[' ... ']' pair,
// respecting quoted strings and escapes, and returns that substring.
func extractBalancedJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
