package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when a questionnaire header cannot be decoded.
	ErrParse = errors.New("question header parse failed")
	// ErrJoin indicates responses and the truth key do not line up.
	ErrJoin = errors.New("truth key join failed")
	// ErrMerge indicates the previous period history cannot be merged.
	ErrMerge = errors.New("period history merge failed")
	// ErrTruthKeyNotFound indicates the truth key could not be loaded.
	ErrTruthKeyNotFound = errors.New("truth key not found")
	// ErrHistoryNotFound is returned when no prior period history exists.
	ErrHistoryNotFound = errors.New("period history not found")
	// ErrCheckpointNotFound is returned when later periods have no normalized responses to re-score.
	ErrCheckpointNotFound = errors.New("response checkpoint not found")
	// ErrInvalidPeriod indicates a period index below 1.
	ErrInvalidPeriod = errors.New("period index must be >= 1")
)

// ParseError reports a header whose point clause is present but not a non-negative integer.
type ParseError struct {
	Column int
	Header string
	Token  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("question column %d %q: invalid point value %q", e.Column, e.Header, e.Token)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// JoinError names the question number that broke the response/truth key join.
type JoinError struct {
	QuestionNumber string
	Reason         string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionNumber, e.Reason)
}

func (e *JoinError) Unwrap() error { return ErrJoin }

// MergeError describes why the previous history could not be folded into the current period.
type MergeError struct {
	Period int
	Reason string
	Err    error
}

func (e *MergeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("merge period %d: %s: %v", e.Period, e.Reason, e.Err)
	}
	return fmt.Sprintf("merge period %d: %s", e.Period, e.Reason)
}

func (e *MergeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMerge, e.Err}
	}
	return []error{ErrMerge}
}
