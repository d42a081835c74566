package pipeline

import (
	"embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// questionPromptEnv names an operator-supplied YAML file that overrides the
// embedded question-generation prompt, mirroring how other pipeline stages
// take an on-disk override before falling back to their embedded default.
const questionPromptEnv = "QUESTION_PROMPT_YAML"

//go:embed question_prompts.yaml
var questionPromptFS embed.FS

type questionPromptSpec struct {
	Prompt        string   `yaml:"prompt"`
	Version       int      `yaml:"version"`
	System        string   `yaml:"system"`
	Difficulties  []string `yaml:"difficulties"`
	QuestionTypes []string `yaml:"question_types"`
}

var (
	questionPromptOnce sync.Once
	questionPromptVal  questionPromptSpec
	questionPromptErr  error
)

// loadQuestionPromptSpec parses the embedded question-generation prompt
// once, or an operator override read from QUESTION_PROMPT_YAML, and caches
// the result for the process lifetime.
func loadQuestionPromptSpec() (questionPromptSpec, error) {
	questionPromptOnce.Do(func() {
		data, err := questionPromptBytes()
		if err != nil {
			questionPromptErr = err
			return
		}
		var spec questionPromptSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			questionPromptErr = fmt.Errorf("parse question prompt yaml: %w", err)
			return
		}
		if err := validateQuestionPromptSpec(&spec); err != nil {
			questionPromptErr = err
			return
		}
		questionPromptVal = spec
	})
	return questionPromptVal, questionPromptErr
}

func questionPromptBytes() ([]byte, error) {
	if path := os.Getenv(questionPromptEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s=%s: %w", questionPromptEnv, path, err)
		}
		return data, nil
	}
	return questionPromptFS.ReadFile("question_prompts.yaml")
}

func validateQuestionPromptSpec(spec *questionPromptSpec) error {
	if spec.System == "" {
		return fmt.Errorf("question prompt spec: system prompt is empty")
	}
	if len(spec.Difficulties) == 0 {
		return fmt.Errorf("question prompt spec: no difficulties listed")
	}
	if len(spec.QuestionTypes) == 0 {
		return fmt.Errorf("question prompt spec: no question_types listed")
	}
	return nil
}
