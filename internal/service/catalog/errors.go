package catalog

import (
	"errors"
	"fmt"

	"github.com/cuihairu/tabletop/internal/ports"
)

var (
	ErrValidation          = errors.New("invalid board game")
	ErrNotFound            = errors.New("board game not found")
	ErrPartialFailure      = errors.New("partial failure")
	ErrUpstreamUnavailable = errors.New("document store unavailable")
)

// Repair passes.
const (
	// PassExpansionRef drops a deleted record from other records' expansions.
	PassExpansionRef = "expansion_ref"
	// PassBaseGame resets baseGameId on records that pointed at a deleted record.
	PassBaseGame = "base_game"
	// PassLink adds a back-link to a base game.
	PassLink = "link"
	// PassUnlink removes a back-link from a base game.
	PassUnlink = "unlink"
)

// Repair is the outcome of one corrective write. RecordID is empty when the
// pass failed before any write (its query errored).
type Repair struct {
	Pass     string
	RecordID string
	Err      error
}

// PartialFailureError reports a mutation whose primary write succeeded while
// some follow-up repairs did not. Nothing is rolled back.
type PartialFailureError struct {
	Op      string
	ID      string
	Repairs []Repair
}

func (e *PartialFailureError) Error() string {
	failed := e.Failed()
	msg := fmt.Sprintf("%s %s: %d of %d repairs failed", e.Op, e.ID, len(failed), len(e.Repairs))
	if len(failed) > 0 {
		msg += ": " + failed[0].Err.Error()
	}
	return msg
}

func (e *PartialFailureError) Is(target error) bool { return target == ErrPartialFailure }

func (e *PartialFailureError) Unwrap() []error {
	var out []error
	for _, r := range e.Repairs {
		if r.Err != nil {
			out = append(out, r.Err)
		}
	}
	return out
}

// Failed returns the repairs that did not apply.
func (e *PartialFailureError) Failed() []Repair {
	var out []Repair
	for _, r := range e.Repairs {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify maps store errors onto the catalog error kinds.
func classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	default:
		return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, what, err)
	}
}

func partial(op, id string, repairs []Repair) error {
	for _, r := range repairs {
		if r.Err != nil {
			return &PartialFailureError{Op: op, ID: id, Repairs: repairs}
		}
	}
	return nil
}
