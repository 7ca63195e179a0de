package ladder

import (
	"fmt"

	"github.com/iroxusux/ladderview/pkg/errors"
)

// sequenceBuilder compiles a token list into an annotated element sequence.
// It walks the tokens once, tracking the open-bracket stack so every element
// is tagged with its branch context and nesting level.
type sequenceBuilder struct {
	tokens []string

	sequence []RungElement

	// Branch context of the leg currently being filled.
	legID  string
	rootID string
	level  int

	// Open brackets, innermost last. Each frame remembers the context to
	// restore when its bracket closes, and the sibling count for leg ids.
	stack []bracketFrame

	nextBracket int
}

type bracketFrame struct {
	id       string // bracket id, also the first leg's id
	legs     int    // number of "," markers seen so far
	outerLeg string // leg context to restore on "]"
	outerID  string
	level    int // nesting level outside the bracket
}

// buildSequence compiles tokens into elements. A malformed marker structure
// (stray "," or "]", or an unclosed "[") yields a structural error.
func buildSequence(tokens []string) ([]RungElement, error) {
	b := &sequenceBuilder{tokens: tokens}
	for pos, token := range tokens {
		var err error
		switch token {
		case "[":
			b.openBracket(pos)
		case ",":
			err = b.nextLeg(pos)
		case "]":
			err = b.closeBracket(pos)
		default:
			err = b.instruction(pos, token)
		}
		if err != nil {
			return nil, err
		}
	}
	if len(b.stack) > 0 {
		return nil, errors.New(errors.ErrCodeBranchUnbalanced,
			"unbalanced branches: %d bracket(s) left open", len(b.stack))
	}
	return b.sequence, nil
}

func (b *sequenceBuilder) openBracket(pos int) {
	id := fmt.Sprintf("b%d", b.nextBracket)
	b.nextBracket++

	b.sequence = append(b.sequence, RungElement{
		Kind:         KindBranchStart,
		Position:     pos,
		BranchID:     id,
		RootBranchID: b.rootID,
		BranchLevel:  b.level,
	})
	b.stack = append(b.stack, bracketFrame{
		id:       id,
		outerLeg: b.legID,
		outerID:  b.rootID,
		level:    b.level,
	})

	// Elements of the first leg carry the bracket's own id.
	b.legID = id
	b.rootID = id
	b.level++
}

func (b *sequenceBuilder) nextLeg(pos int) error {
	if len(b.stack) == 0 {
		return errors.New(errors.ErrCodeBranchEndOrphan,
			"branch separator at position %d without an open branch", pos)
	}
	frame := &b.stack[len(b.stack)-1]
	frame.legs++
	legID := fmt.Sprintf("%s:%d", frame.id, frame.legs)

	b.sequence = append(b.sequence, RungElement{
		Kind:         KindBranchNext,
		Position:     pos,
		BranchID:     legID,
		RootBranchID: frame.id,
		BranchLevel:  frame.level + 1,
	})
	b.legID = legID
	b.rootID = frame.id
	b.level = frame.level + 1
	return nil
}

func (b *sequenceBuilder) closeBracket(pos int) error {
	if len(b.stack) == 0 {
		return errors.New(errors.ErrCodeBranchEndOrphan,
			"branch end at position %d without a matching branch start", pos)
	}
	frame := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	b.sequence = append(b.sequence, RungElement{
		Kind:         KindBranchEnd,
		Position:     pos,
		BranchID:     frame.id,
		RootBranchID: frame.outerID,
		BranchLevel:  frame.level,
	})
	b.legID = frame.outerLeg
	b.rootID = frame.outerID
	b.level = frame.level
	return nil
}

func (b *sequenceBuilder) instruction(pos int, token string) error {
	instr, err := ParseInstruction(token)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnknownElement, err,
			"bad instruction token at position %d", pos)
	}
	b.sequence = append(b.sequence, RungElement{
		Kind:         KindInstruction,
		Position:     pos,
		BranchID:     b.legID,
		RootBranchID: b.rootID,
		BranchLevel:  b.level,
		Instr:        instr,
	})
	return nil
}
