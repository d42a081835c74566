package pipeline

import (
	"strings"
	"testing"
)

func TestExtractBalancedJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "plain array",
			in:   `[{"a":1},{"b":2}]`,
			want: `[{"a":1},{"b":2}]`,
			ok:   true,
		},
		{
			name: "array with leading and trailing prose",
			in:   "Here are your questions:\n" + `[{"a":1}]` + "\nLet me know if you need more.",
			want: `[{"a":1}]`,
			ok:   true,
		},
		{
			name: "brackets inside quoted strings are ignored",
			in:   `[{"question_text":"what is [x]?"}]`,
			want: `[{"question_text":"what is [x]?"}]`,
			ok:   true,
		},
		{
			name: "escaped quote before closing bracket",
			in:   `[{"q":"say \"hi\""}]`,
			want: `[{"q":"say \"hi\""}]`,
			ok:   true,
		},
		{
			name: "no array present",
			in:   "no JSON here",
			ok:   false,
		},
		{
			name: "unbalanced array",
			in:   `[{"a":1}`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractBalancedJSONArray(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok: got=%v want=%v (extracted=%q)", ok, tt.ok, got)
			}
			if ok && got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestParseQuestionItems_DropsUnrecognizedVideoAndEmptyText(t *testing.T) {
	requested := map[string]bool{"vid1": true, "vid2": true}
	raw := `[
		{"question_text": "What is X?", "video_id": "vid1", "difficulty": "easy", "question_type": "factual"},
		{"question_text": "", "video_id": "vid2"},
		{"question_text": "Unrecognized video", "video_id": "vid999"},
		{"question_text": "Bad enums kept, enums nulled", "video_id": "vid2", "difficulty": "impossible", "question_type": "nonsense"}
	]`

	items := parseQuestionItems(raw, requested)
	if len(items) != 2 {
		t.Fatalf("expected 2 surviving items, got %d: %+v", len(items), items)
	}

	first := items[0]
	if first.VideoExternalID != "vid1" || first.QuestionText != "What is X?" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if first.Difficulty == nil || *first.Difficulty != "easy" {
		t.Fatalf("expected difficulty=easy, got %+v", first.Difficulty)
	}

	second := items[1]
	if second.VideoExternalID != "vid2" {
		t.Fatalf("unexpected second item: %+v", second)
	}
	if second.Difficulty != nil {
		t.Fatalf("expected invalid difficulty to be nulled out, got %+v", *second.Difficulty)
	}
	if second.QuestionType != nil {
		t.Fatalf("expected invalid question_type to be nulled out, got %+v", *second.QuestionType)
	}
}

func TestParseQuestionItems_MalformedJSONReturnsNil(t *testing.T) {
	items := parseQuestionItems("not json at all", map[string]bool{"vid1": true})
	if items != nil {
		t.Fatalf("expected nil, got %+v", items)
	}
}

func TestBuildQuestionPrompt_SplitsCharBudgetAcrossVideos(t *testing.T) {
	videos := []videoTranscript{
		{externalID: "vid1", text: "short transcript"},
		{externalID: "vid2", text: "another short transcript"},
	}
	prompt := buildQuestionPrompt(videos, 5)

	if !strings.Contains(prompt, "vid1") || !strings.Contains(prompt, "vid2") {
		t.Fatalf("expected both video ids in prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "Generate exactly 5 questions") {
		t.Fatalf("expected requested count in prompt: %q", prompt)
	}
}
