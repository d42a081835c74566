// Package metrics exposes a handful of lightweight, process-lifetime
// counters for the pipeline's main stages, surfaced on a debug endpoint
// rather than shipped to a push gateway or scrape-scheduled dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosDownloaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytlearn_videos_downloaded_total",
			Help: "Total videos processed by POST /videos/download, by result.",
		},
		[]string{"status"},
	)

	TranscriptionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytlearn_transcriptions_processed_total",
			Help: "Total videos processed by POST /videos/transcribe, by result.",
		},
		[]string{"status"},
	)

	QuestionGenerationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytlearn_question_generation_runs_total",
			Help: "Total calls to POST /questions/generate, by result.",
		},
		[]string{"status"},
	)

	QuestionsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ytlearn_questions_generated_total",
			Help: "Total individual questions persisted across all generation runs.",
		},
	)
)

// RecordDownload tallies one POST /videos/download batch item by its
// per-item status (success, duplicate, failed).
func RecordDownload(status string) {
	VideosDownloaded.WithLabelValues(status).Inc()
}

// RecordTranscription tallies one POST /videos/transcribe batch item by its
// per-item status (success, not_found, no_audio, failed).
func RecordTranscription(status string) {
	TranscriptionsProcessed.WithLabelValues(status).Inc()
}

// RecordQuestionGeneration tallies one POST /questions/generate call
// ("ok" or "error") and, on success, the number of questions it produced.
func RecordQuestionGeneration(status string, questionCount int) {
	QuestionGenerationRuns.WithLabelValues(status).Inc()
	if questionCount > 0 {
		QuestionsGenerated.Add(float64(questionCount))
	}
}
