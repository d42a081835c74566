package pipeline

// BatchResult wraps a generic batch's per-item results. It is reused by the
// download and transcribe endpoints, each of which defines its own item
// result type and status constants; question generation does not go
// through it.
type BatchResult[T any] struct {
	Results []T
	Total   int
}

// RunBatch executes step once per item, in order, collecting every result.
// There is no job queue, no retry-at-this-layer and no concurrency: each
// step is responsible for its own retries (see retry.Do) and for never
// panicking on a single bad item.
func RunBatch[T any](items []string, step func(item string) T) BatchResult[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, step(item))
	}
	return BatchResult[T]{Results: out, Total: len(items)}
}

// CountByStatus tallies results by a caller-supplied status extractor,
// matching the {total, <status>: N, ...} envelope shape used by the batch
// endpoints.
func CountByStatus[T any](results []T, statusOf func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		counts[statusOf(r)]++
	}
	return counts
}
