package service

import "fmt"

// FetchError indicates the content-fetch service failed or returned no
// usable content. It is always fatal to the scrape.
type FetchError struct {
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("content fetch error: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return "content fetch error: " + e.Message
}

// CompletionError indicates a transport-level failure from the completion
// service. Whether it is fatal depends on the stage: summary and point
// extraction abort the scrape, social post generation degrades.
type CompletionError struct {
	StatusCode int
	Message    string
}

func (e *CompletionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion error: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return "completion error: " + e.Message
}
