package ladder

import (
	"fmt"
	"strings"
)

// ElementKind identifies what a sequence entry represents.
type ElementKind int

const (
	KindInstruction ElementKind = iota
	KindBranchStart
	KindBranchNext
	KindBranchEnd
)

// String returns the lowercase name of the kind.
func (k ElementKind) String() string {
	switch k {
	case KindInstruction:
		return "instruction"
	case KindBranchStart:
		return "branch_start"
	case KindBranchNext:
		return "branch_next"
	case KindBranchEnd:
		return "branch_end"
	}
	return fmt.Sprintf("element_kind(%d)", int(k))
}

// Symbol classifies how an instruction is drawn.
type Symbol int

const (
	SymbolContact Symbol = iota // examine contacts: --[ ]--
	SymbolCoil                  // output coils: --( )--
	SymbolBlock                 // function blocks: boxes with operand rows
)

// contactMnemonics and coilMnemonics cover the Rockwell bit instructions the
// editor draws with dedicated symbols. Everything else renders as a block.
var (
	contactMnemonics = map[string]bool{"XIC": true, "XIO": true, "ONS": true}
	coilMnemonics    = map[string]bool{"OTE": true, "OTL": true, "OTU": true}
)

// RungElement is one entry of a rung's compiled sequence.
//
// Position is the element's token index: contiguous, zero-based, and rebuilt
// after every mutation. BranchID names the branch context the element lives
// in ("" on the main rung); RootBranchID names the outermost bracket of that
// context. BranchLevel is 0 on the main rung and increases with nesting.
type RungElement struct {
	Kind         ElementKind
	Position     int
	BranchID     string
	RootBranchID string
	BranchLevel  int

	// Instr is set only for Kind == KindInstruction.
	Instr *Instruction
}

// Instruction is a parsed instruction token.
type Instruction struct {
	Mnemonic string   // e.g. "XIC", "TON"
	Operands []string // operand texts, split at top-level commas
	Text     string   // the original token, e.g. "XIC(Start)"
	Alias    string   // optional display alias shown above the operand
}

// Symbol returns the drawing classification for the instruction.
func (in *Instruction) Symbol() Symbol {
	switch {
	case contactMnemonics[in.Mnemonic]:
		return SymbolContact
	case coilMnemonics[in.Mnemonic]:
		return SymbolCoil
	}
	return SymbolBlock
}

// Operand returns the primary operand, or "" if the instruction has none.
func (in *Instruction) Operand() string {
	if len(in.Operands) == 0 {
		return ""
	}
	return in.Operands[0]
}

// Descriptor describes an instruction to insert.
type Descriptor struct {
	Text  string // full instruction text, e.g. "XIC(NewContact)"
	Alias string // optional display alias
}

// ParseInstruction parses one instruction token. The token must be a
// mnemonic followed by a balanced parenthesized operand list.
func ParseInstruction(token string) (*Instruction, error) {
	open := strings.IndexByte(token, '(')
	if open <= 0 || !strings.HasSuffix(token, ")") {
		return nil, fmt.Errorf("malformed instruction token %q", token)
	}
	mnemonic := token[:open]
	for _, r := range mnemonic {
		if !isIdentRune(r) {
			return nil, fmt.Errorf("malformed instruction mnemonic %q", mnemonic)
		}
	}

	inner := token[open+1 : len(token)-1]
	return &Instruction{
		Mnemonic: mnemonic,
		Operands: splitOperands(inner),
		Text:     token,
	}, nil
}

// splitOperands splits an operand list at top-level commas. Commas nested in
// parentheses (e.g. function-call operands) stay inside their operand.
func splitOperands(s string) []string {
	if s == "" {
		return nil
	}
	var (
		operands []string
		depth    int
		start    int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				operands = append(operands, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	operands = append(operands, strings.TrimSpace(s[start:]))
	return operands
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9')
}

// Tokenize splits rung text into instruction tokens and branch markers.
// Branch markers inside instruction operands (inside parentheses) are part
// of the instruction token, not structure.
func Tokenize(text string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(text) {
		switch c := text[i]; c {
		case '[', ',', ']':
			tokens = append(tokens, string(c))
			i++
		case ' ', '\t', '\n', '\r':
			i++
		default:
			end, err := scanInstruction(text, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, text[i:end])
			i = end
		}
	}
	return tokens, nil
}

// scanInstruction returns the index just past the instruction token starting
// at position start.
func scanInstruction(text string, start int) (int, error) {
	i := start
	for i < len(text) && isIdentRune(rune(text[i])) {
		i++
	}
	if i == start || i >= len(text) || text[i] != '(' {
		return 0, fmt.Errorf("unexpected character %q at offset %d", text[i:min(i+1, len(text))], i)
	}
	depth := 0
	for ; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses in instruction starting at offset %d", start)
}
