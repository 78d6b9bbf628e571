package quiz

import "errors"

// State-guard violations. Each maps to a chat reply at the command layer;
// none of them mutates game state.
var (
	ErrAlreadyRunning = errors.New("quiz already running")
	ErrNotRunning     = errors.New("quiz not running")
	ErrNoQuestions    = errors.New("no quiz questions available")
	ErrNotJoinable    = errors.New("quiz is not accepting players")
	ErrAlreadyInGame  = errors.New("already in the quiz")
	ErrNotInGame      = errors.New("not in the quiz")
	ErrCannotLeaveNow = errors.New("cannot leave after the questions start")
	ErrInvalidGuess   = errors.New("guess must be a single letter")
)
