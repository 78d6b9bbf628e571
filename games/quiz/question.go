package quiz

import (
	"context"
	"fmt"
	"strings"
)

// Question is one quiz entry. Choices holds the full answer set including
// CorrectAnswer; the display order and letter labels are decided per round.
type Question struct {
	MainQuestion  string
	Hint1         string
	Hint2         string
	CorrectAnswer string
	Choices       []string
}

// Repository supplies the question pool. May return an empty slice.
type Repository interface {
	ListQuestions(ctx context.Context) ([]Question, error)
}

// formatChoices renders shuffled answers with sequential letter labels,
// e.g. "A) oak  B) pine  C) fir".
func formatChoices(ordered []string) string {
	parts := make([]string, len(ordered))
	for i, c := range ordered {
		parts[i] = fmt.Sprintf("%c) %s", 'A'+i, c)
	}
	return strings.Join(parts, "  ")
}

// winnerLetter returns the lowercase label assigned to the correct answer in
// the shuffled order, or 0 if absent.
func winnerLetter(ordered []string, correct string) byte {
	for i, c := range ordered {
		if c == correct {
			return byte('a' + i)
		}
	}
	return 0
}
