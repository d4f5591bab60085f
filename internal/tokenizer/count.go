package tokenizer

import "errors"

// ErrNilCounter is returned when counting without a Counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting one text.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountText estimates tokens for already decoded text.
func CountText(counter Counter, text string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	tokens, err := counter.CountString(text)
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
