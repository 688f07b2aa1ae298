package tunego

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFresh is returned when Restore is called on an instance that
	// has already issued suggestions or absorbed results.
	ErrNotFresh = errors.New("restore requires a freshly constructed searcher")

	// ErrInvalidLimit is returned when a concurrency limit is not positive.
	ErrInvalidLimit = errors.New("concurrency limit must be positive")

	// ErrInvalidRepeat is returned when a repeat count is not positive.
	ErrInvalidRepeat = errors.New("repeat count must be positive")
)

// ErrUnknownTrial indicates a result or completion call for a trial
// identifier this searcher never suggested. This is a caller-contract
// violation in the driving scheduler, surfaced rather than swallowed.
type ErrUnknownTrial struct {
	TrialID string
}

func (e *ErrUnknownTrial) Error() string {
	return fmt.Sprintf("unknown trial: %q", e.TrialID)
}

// ErrDuplicateTrial indicates a trial identifier that was suggested or
// completed more than once.
type ErrDuplicateTrial struct {
	TrialID string
}

func (e *ErrDuplicateTrial) Error() string {
	return fmt.Sprintf("duplicate trial: %q", e.TrialID)
}

// ErrUnknownAlgorithm indicates a factory lookup for an unregistered search
// algorithm name. Known lists the registered names.
type ErrUnknownAlgorithm struct {
	Name  string
	Known []string
}

func (e *ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unsupported search algorithm %q (registered: %s)", e.Name, strings.Join(e.Known, ", "))
}
