package layout

import (
	"github.com/iroxusux/ladderview/pkg/errors"
)

// Tracker validates branch balance during a single left-to-right walk of a
// rung's sequence. It keeps an explicit stack of open brackets so the
// balance invariant is mechanically checkable: every walk must end with an
// empty stack.
type Tracker struct {
	stack []openBracket
}

type openBracket struct {
	bracketID     string
	startPosition int
}

// NewTracker creates a tracker with an empty stack.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Open pushes a bracket when its start marker is encountered.
func (t *Tracker) Open(bracketID string, position int) {
	t.stack = append(t.stack, openBracket{bracketID: bracketID, startPosition: position})
}

// Sibling validates a leg separator: it must belong to the innermost open
// bracket. A mismatch means the sequence's marker annotations are corrupt.
func (t *Tracker) Sibling(bracketID string, position int) error {
	if len(t.stack) == 0 {
		return errors.New(errors.ErrCodeBranchEndOrphan,
			"branch separator at position %d without an open branch", position)
	}
	top := t.stack[len(t.stack)-1]
	if top.bracketID != bracketID {
		return errors.New(errors.ErrCodeBranchMismatch,
			"branch id mismatch at position %d: open branch is %s, separator belongs to %s",
			position, top.bracketID, bracketID)
	}
	return nil
}

// Close pops the innermost bracket when its end marker is encountered.
func (t *Tracker) Close(position int) (bracketID string, startPosition int, err error) {
	if len(t.stack) == 0 {
		return "", 0, errors.New(errors.ErrCodeBranchEndOrphan,
			"branch end at position %d without a matching branch start", position)
	}
	top := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return top.bracketID, top.startPosition, nil
}

// Depth returns the number of currently open brackets.
func (t *Tracker) Depth() int { return len(t.stack) }

// Finish checks the end-of-sequence invariant: no bracket left open.
func (t *Tracker) Finish() error {
	if len(t.stack) > 0 {
		return errors.New(errors.ErrCodeBranchUnbalanced,
			"unbalanced branches: %d bracket(s) left open at end of rung", len(t.stack))
	}
	return nil
}

// Top returns the innermost open bracket id, or "" when the walk is on the
// main rung.
func (t *Tracker) Top() string {
	if len(t.stack) == 0 {
		return ""
	}
	return t.stack[len(t.stack)-1].bracketID
}
