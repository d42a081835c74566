package pipeline

import "testing"

func TestLoadQuestionPromptSpec_EmbeddedDefaultIsValid(t *testing.T) {
	spec, err := loadQuestionPromptSpec()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.System == "" {
		t.Fatalf("expected a non-empty system prompt")
	}
	if len(spec.Difficulties) == 0 || len(spec.QuestionTypes) == 0 {
		t.Fatalf("expected difficulties and question_types to be populated, got %+v", spec)
	}
}

func TestValidateQuestionPromptSpec_RejectsMissingFields(t *testing.T) {
	cases := []questionPromptSpec{
		{System: "", Difficulties: []string{"easy"}, QuestionTypes: []string{"factual"}},
		{System: "x", Difficulties: nil, QuestionTypes: []string{"factual"}},
		{System: "x", Difficulties: []string{"easy"}, QuestionTypes: nil},
	}
	for i, c := range cases {
		c := c
		if err := validateQuestionPromptSpec(&c); err == nil {
			t.Fatalf("case %d: expected an error for %+v", i, c)
		}
	}
}
