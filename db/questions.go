package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CodedBeard/devchatterbot/games/quiz"
)

// QuestionStore is the Postgres-backed quiz question repository.
type QuestionStore struct {
	DB *sql.DB
}

// ListQuestions returns every stored question with its full choice set
// (correct answer plus non-empty wrong answers).
func (s *QuestionStore) ListQuestions(ctx context.Context) ([]quiz.Question, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT main_question, COALESCE(hint1,''), COALESCE(hint2,''), correct_answer,
		        COALESCE(wrong_answer1,''), COALESCE(wrong_answer2,''), COALESCE(wrong_answer3,'')
		 FROM quiz_questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query quiz questions: %w", err)
	}
	defer rows.Close()

	var out []quiz.Question
	for rows.Next() {
		var q quiz.Question
		var w1, w2, w3 string
		if err := rows.Scan(&q.MainQuestion, &q.Hint1, &q.Hint2, &q.CorrectAnswer, &w1, &w2, &w3); err != nil {
			return nil, fmt.Errorf("scan quiz question: %w", err)
		}
		q.Choices = append(q.Choices, q.CorrectAnswer)
		for _, w := range []string{w1, w2, w3} {
			if w != "" {
				q.Choices = append(q.Choices, w)
			}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SeedDefaultQuestions inserts a small starter set when the table is empty,
// so a fresh install can run a quiz immediately.
func (s *QuestionStore) SeedDefaultQuestions(ctx context.Context) error {
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_questions`).Scan(&count); err != nil {
		return fmt.Errorf("count quiz questions: %w", err)
	}
	if count > 0 {
		return nil
	}
	seed := []quiz.Question{
		{
			MainQuestion:  "Which keyword starts a goroutine?",
			Hint1:         "It's also an animal mascot's favorite verb.",
			Hint2:         "Two letters.",
			CorrectAnswer: "go",
			Choices:       []string{"go", "run", "spawn", "fork"},
		},
		{
			MainQuestion:  "What does a channel's zero value behave like?",
			Hint1:         "Sending on it blocks forever.",
			Hint2:         "It isn't closed, it's...",
			CorrectAnswer: "nil",
			Choices:       []string{"nil", "closed", "buffered", "empty"},
		},
		{
			MainQuestion:  "Which function always runs before main in a package?",
			Hint1:         "You can't call it yourself.",
			Hint2:         "Four letters.",
			CorrectAnswer: "init",
			Choices:       []string{"init", "start", "setup", "begin"},
		},
	}
	for _, q := range seed {
		wrongs := make([]string, 3)
		i := 0
		for _, c := range q.Choices {
			if c != q.CorrectAnswer && i < 3 {
				wrongs[i] = c
				i++
			}
		}
		if _, err := s.DB.ExecContext(ctx,
			`INSERT INTO quiz_questions (main_question, hint1, hint2, correct_answer, wrong_answer1, wrong_answer2, wrong_answer3)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			q.MainQuestion, q.Hint1, q.Hint2, q.CorrectAnswer, wrongs[0], wrongs[1], wrongs[2]); err != nil {
			return fmt.Errorf("seed quiz question: %w", err)
		}
	}
	return nil
}
