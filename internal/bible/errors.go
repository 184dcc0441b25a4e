package bible

import "fmt"

// UnknownBookError is returned when a book name does not resolve in the canon.
type UnknownBookError struct {
	Name string
}

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("unknown book %q", e.Name)
}

// InvalidRangeError is returned when a chapter selection is malformed or
// falls outside the book's chapters.
type InvalidRangeError struct {
	Book   string
	Spec   string // The offending chapter spec or range as written
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Spec == "" {
		return fmt.Sprintf("invalid chapter range for %s: %s", e.Book, e.Reason)
	}
	return fmt.Sprintf("invalid chapter range %q for %s: %s", e.Spec, e.Book, e.Reason)
}

// CheckRange validates that [start, end] is a non-empty chapter range inside book.
func CheckRange(book Book, start, end int) error {
	spec := fmt.Sprintf("%d-%d", start, end)
	switch {
	case start < 1:
		return &InvalidRangeError{Book: book.Name, Spec: spec, Reason: "chapters start at 1"}
	case start > end:
		return &InvalidRangeError{Book: book.Name, Spec: spec, Reason: "start is after end"}
	case end > book.Chapters:
		return &InvalidRangeError{Book: book.Name, Spec: spec,
			Reason: fmt.Sprintf("%s has %d chapters", book.Name, book.Chapters)}
	}
	return nil
}
