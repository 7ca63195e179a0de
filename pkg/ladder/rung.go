package ladder

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iroxusux/ladderview/pkg/errors"
)

// token is one sequence position: an instruction text or a branch marker,
// plus the optional display alias that travels with it through edits.
type token struct {
	text  string
	alias string
}

func (t token) isMarker() bool {
	return t.text == "[" || t.text == "," || t.text == "]"
}

// Rung is one row of ladder logic: an ordered token list plus an optional
// multi-line comment. Rungs are identified by a stable UUID that survives
// renumbering; Number is the rung's current index within its routine.
type Rung struct {
	id      uuid.UUID
	number  int
	tokens  []token
	comment string

	// seq caches the compiled sequence; invalidated by every mutation.
	seq []RungElement
}

// NewRung creates a rung from ladder text.
func NewRung(text string) (*Rung, error) {
	texts, err := Tokenize(text)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknownElement, err, "tokenize rung text")
	}
	tokens := make([]token, len(texts))
	for i, t := range texts {
		tokens[i] = token{text: t}
	}
	return &Rung{id: uuid.New(), tokens: tokens}, nil
}

// ID returns the rung's stable identity.
func (r *Rung) ID() uuid.UUID { return r.id }

// Number returns the rung's index within its routine.
func (r *Rung) Number() int { return r.number }

// Comment returns the rung comment ("" when unset).
func (r *Rung) Comment() string { return r.comment }

// SetComment replaces the rung comment.
func (r *Rung) SetComment(comment string) { r.comment = comment }

// Text reassembles the rung's ladder text from its tokens.
func (r *Rung) Text() string {
	var b strings.Builder
	for _, t := range r.tokens {
		b.WriteString(t.text)
	}
	return b.String()
}

// Len returns the number of sequence positions in the rung.
func (r *Rung) Len() int { return len(r.tokens) }

// Sequence compiles and returns the rung's element sequence. The result is
// cached until the next mutation; callers must not modify it.
func (r *Rung) Sequence() ([]RungElement, error) {
	if r.seq == nil {
		texts := make([]string, len(r.tokens))
		for i, t := range r.tokens {
			texts[i] = t.text
		}
		seq, err := buildSequence(texts)
		if err != nil {
			return nil, err
		}
		for i := range seq {
			if seq[i].Instr != nil {
				seq[i].Instr.Alias = r.tokens[seq[i].Position].alias
			}
		}
		r.seq = seq
	}
	return r.seq, nil
}

func (r *Rung) invalidate() { r.seq = nil }

// AddInstruction inserts an instruction at position, shifting subsequent
// positions by one. Positions past the end append.
func (r *Rung) AddInstruction(d Descriptor, position int) error {
	if _, err := ParseInstruction(d.Text); err != nil {
		return errors.Wrap(errors.ErrCodeUnknownElement, err, "add instruction")
	}
	if position < 0 {
		return errors.New(errors.ErrCodeInvalidPosition, "position %d is negative", position)
	}
	if position > len(r.tokens) {
		position = len(r.tokens)
	}
	r.insertToken(position, token{text: d.Text, alias: d.Alias})
	r.invalidate()
	return nil
}

// RemoveInstructions deletes the instruction tokens in [start, end],
// shifting subsequent positions down. The range must contain only
// instruction tokens; removing branch markers this way would unbalance the
// rung.
func (r *Rung) RemoveInstructions(start, end int) error {
	if start < 0 || end >= len(r.tokens) || start > end {
		return errors.New(errors.ErrCodeInvalidRange,
			"remove range [%d, %d] out of bounds (rung has %d positions)", start, end, len(r.tokens))
	}
	for p := start; p <= end; p++ {
		if r.tokens[p].isMarker() {
			return errors.New(errors.ErrCodeInvalidRange,
				"position %d is a branch marker; use RemoveBranch", p)
		}
	}
	r.tokens = append(r.tokens[:start], r.tokens[end+1:]...)
	r.invalidate()
	return nil
}

// MoveInstruction relocates the instruction at from, reinserting it so that
// it lands at position to in the re-indexed sequence.
func (r *Rung) MoveInstruction(from, to int) error {
	if from < 0 || from >= len(r.tokens) {
		return errors.New(errors.ErrCodeInvalidPosition, "move source %d out of range", from)
	}
	if to < 0 || to >= len(r.tokens) {
		return errors.New(errors.ErrCodeInvalidPosition, "move target %d out of range", to)
	}
	if r.tokens[from].isMarker() {
		return errors.New(errors.ErrCodeInvalidPosition, "position %d is a branch marker", from)
	}
	if from == to {
		return nil
	}

	moved := r.tokens[from]
	r.tokens = append(r.tokens[:from], r.tokens[from+1:]...)
	r.insertToken(to, moved)
	r.invalidate()
	return nil
}

// InsertBranch wraps the positions [start, end] in a new branch, inserting a
// start marker before start and an end marker after end. Later positions shift
// by two, one per inserted marker. Returns the new branch's id.
func (r *Rung) InsertBranch(start, end int) (string, error) {
	if start < 0 || end < 0 {
		return "", errors.New(errors.ErrCodeInvalidRange, "branch positions must be non-negative")
	}
	if start > end {
		return "", errors.New(errors.ErrCodeInvalidRange,
			"branch start %d is past branch end %d", start, end)
	}
	if end >= len(r.tokens) {
		return "", errors.New(errors.ErrCodeInvalidRange,
			"branch end %d out of range (rung has %d positions)", end, len(r.tokens))
	}

	// The wrapped range must carry its branch markers whole: an unmatched
	// bracket or a leg separator at the range's outer level would pair the
	// new markers across an existing branch.
	depth := 0
	for p := start; p <= end; p++ {
		switch r.tokens[p].text {
		case "[":
			depth++
		case "]":
			depth--
			if depth < 0 {
				return "", errors.New(errors.ErrCodeInvalidRange,
					"branch over [%d, %d] would split the branch ending at %d", start, end, p)
			}
		case ",":
			if depth == 0 {
				return "", errors.New(errors.ErrCodeInvalidRange,
					"branch over [%d, %d] would capture the leg separator at %d", start, end, p)
			}
		}
	}
	if depth != 0 {
		return "", errors.New(errors.ErrCodeInvalidRange,
			"branch over [%d, %d] would split a branch opened inside it", start, end)
	}

	tokens := make([]token, 0, len(r.tokens)+2)
	tokens = append(tokens, r.tokens[:start]...)
	tokens = append(tokens, token{text: "["})
	tokens = append(tokens, r.tokens[start:end+1]...)
	tokens = append(tokens, token{text: "]"})
	tokens = append(tokens, r.tokens[end+1:]...)

	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.text
	}
	seq, err := buildSequence(texts)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRange, err,
			"branch over [%d, %d] does not compile", start, end)
	}

	r.tokens = tokens
	r.invalidate()

	for _, e := range seq {
		if e.Kind == KindBranchStart && e.Position == start {
			return e.BranchID, nil
		}
	}
	return "", errors.New(errors.ErrCodeInternal, "inserted branch not found at position %d", start)
}

// AddLeg appends an empty parallel leg to the branch, inserting a leg
// marker just before the branch's end marker. Returns the marker's position.
func (r *Rung) AddLeg(branchID string) (int, error) {
	b, err := r.branchSpan(branchID)
	if err != nil {
		return 0, err
	}
	r.insertToken(b.end, token{text: ","})
	r.invalidate()
	return b.end, nil
}

// RemoveBranch deletes the branch's markers and every element between them.
// Later positions are re-indexed with no gaps.
func (r *Rung) RemoveBranch(branchID string) error {
	b, err := r.branchSpan(branchID)
	if err != nil {
		return err
	}
	r.tokens = append(r.tokens[:b.start], r.tokens[b.end+1:]...)
	r.invalidate()
	return nil
}

// InternalNestingLevel reports how many nested leg separators live inside
// the branch starting at position. The layout engine spaces a branch's first
// sibling leg down by one extra step per internal level so nested legs never
// overlap.
func (r *Rung) InternalNestingLevel(position int) (int, error) {
	if position < 0 || position >= len(r.tokens) || r.tokens[position].text != "[" {
		return 0, errors.New(errors.ErrCodeInvalidPosition,
			"position %d is not a branch start", position)
	}
	end := r.matchingEnd(position)
	if end < 0 {
		return 0, errors.New(errors.ErrCodeBranchUnbalanced,
			"no matching branch end for position %d", position)
	}

	open, level := 0, 0
	for _, t := range r.tokens[position+1 : end] {
		switch t.text {
		case "[":
			open++
		case ",":
			if open > 0 {
				level++
			}
		case "]":
			open--
		}
	}
	return level, nil
}

type span struct{ start, end int }

// branchSpan resolves a branch id to its marker positions.
func (r *Rung) branchSpan(branchID string) (span, error) {
	seq, err := r.Sequence()
	if err != nil {
		return span{}, err
	}
	for _, e := range seq {
		if e.Kind == KindBranchStart && e.BranchID == branchID {
			end := r.matchingEnd(e.Position)
			if end < 0 {
				return span{}, errors.New(errors.ErrCodeBranchUnbalanced,
					"branch %s has no end marker", branchID)
			}
			return span{start: e.Position, end: end}, nil
		}
	}
	return span{}, errors.New(errors.ErrCodeBranchNotFound, "branch %s not found in rung %d", branchID, r.number)
}

// matchingEnd returns the position of the "]" closing the "[" at start, or
// -1 when the brackets are unbalanced.
func (r *Rung) matchingEnd(start int) int {
	depth := 0
	for p := start; p < len(r.tokens); p++ {
		switch r.tokens[p].text {
		case "[":
			depth++
		case "]":
			depth--
			if depth == 0 {
				return p
			}
		}
	}
	return -1
}

func (r *Rung) insertToken(at int, t token) {
	r.tokens = append(r.tokens, token{})
	copy(r.tokens[at+1:], r.tokens[at:])
	r.tokens[at] = t
}
