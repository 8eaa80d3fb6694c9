package browser

import "fmt"

// Snapshotter is anything that can serialize its current document.
type Snapshotter interface {
	Content() (string, error)
}

// EvaluateOnPage runs a pure extractor against the live document. The page
// is serialized and handed to fn, so live extraction and fixture tests run
// the same code.
func EvaluateOnPage[T any](src Snapshotter, fn func(html string) T) (T, error) {
	var zero T
	html, err := src.Content()
	if err != nil {
		return zero, fmt.Errorf("failed to snapshot page: %w", err)
	}
	return fn(html), nil
}
