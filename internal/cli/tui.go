package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iroxusux/ladderview/pkg/edit"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/resolve"
)

// Editor styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	styleMarked       = lipgloss.NewStyle().Foreground(colorYellow)
	styleStatusErr    = lipgloss.NewStyle().Foreground(colorRed)
	styleStatusOK     = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// editorModel - Interactive routine editing
// =============================================================================

// editMode tracks what the next keystroke (or text entry) means.
type editMode int

const (
	modeNavigate editMode = iota
	modeInsert           // typing an instruction token to insert at the cursor
	modeAppend           // typing text for a new rung
	modeComment          // typing the selected rung's comment
)

// mark remembers a position for two-step operations.
type mark struct {
	rung int
	pos  int
}

// editorModel is the bubbletea model for the interactive editor. The cursor
// addresses one sequence position of one rung; branch and leg operations act
// on the branch context of the element under the cursor.
type editorModel struct {
	path   string
	editor *edit.Editor

	rung   int
	pos    int
	offset int
	height int

	mode      editMode
	input     string
	moveFrom  *mark
	branchTip *mark

	status   string
	statusOK bool
	dirty    bool
}

func newEditorModel(path string, editor *edit.Editor) editorModel {
	return editorModel{
		path:     path,
		editor:   editor,
		height:   15,
		status:   "ready",
		statusOK: true,
	}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeNavigate {
			return m.updateInput(msg), nil
		}
		return m.updateNavigate(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m editorModel) updateNavigate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.moveFrom = nil
		m.branchTip = nil
		m.setStatus("ready", true)

	case "up", "k":
		if m.rung > 0 {
			m.rung--
			m.clampCursor()
			if m.rung < m.offset {
				m.offset = m.rung
			}
		}
	case "down", "j":
		if m.rung < m.editor.Routine().Len()-1 {
			m.rung++
			m.clampCursor()
			if m.rung >= m.offset+m.height {
				m.offset = m.rung - m.height + 1
			}
		}
	case "left", "h":
		if m.pos > 0 {
			m.pos--
		}
	case "right", "l":
		if m.pos < m.seqLen(m.rung)-1 {
			m.pos++
		}

	case "i":
		m.mode = modeInsert
		m.input = ""
	case "a":
		m.mode = modeAppend
		m.input = ""
	case "c":
		m.mode = modeComment
		if r, err := m.editor.Routine().Rung(m.rung); err == nil {
			m.input = r.Comment()
		}

	case "d":
		m.mutate(m.editor.Delete(m.rung, m.pos))

	case "D":
		m.mutate(m.editor.DeleteRung(m.rung))
		if m.rung >= m.editor.Routine().Len() && m.rung > 0 {
			m.rung--
		}
		m.clampCursor()

	case "m":
		m.moveFrom = &mark{rung: m.rung, pos: m.pos}
		m.setStatus(fmt.Sprintf("moving rung %d position %d: pick a drop slot and press enter", m.rung, m.pos), true)

	case "enter":
		if m.moveFrom != nil {
			from := *m.moveFrom
			m.moveFrom = nil
			m.mutate(m.editor.Move(from.rung, from.pos, m.rung, m.pos))
		}

	case "b":
		if m.branchTip == nil {
			m.branchTip = &mark{rung: m.rung, pos: m.pos}
			m.setStatus(fmt.Sprintf("branch start at position %d: pick the end and press b", m.pos), true)
			break
		}
		tip := *m.branchTip
		m.branchTip = nil
		if tip.rung != m.rung {
			m.setStatus("branch range must stay on one rung", false)
			break
		}
		start, end := tip.pos, m.pos
		if end < start {
			start, end = end, start
		}
		id, affected, err := m.editor.CreateBranch(m.rung, start, end)
		m.mutate(affected, err)
		if err == nil {
			m.setStatus(fmt.Sprintf("created branch %s", id), true)
		}

	case "L":
		if id, ok := m.bracketAtCursor(); ok {
			m.mutate(m.editor.AddLeg(m.rung, id))
		} else {
			m.setStatus("cursor is not inside a branch", false)
		}

	case "X":
		if id, ok := m.bracketAtCursor(); ok {
			m.mutate(m.editor.DeleteBranch(m.rung, id))
			m.clampCursor()
		} else {
			m.setStatus("cursor is not inside a branch", false)
		}

	case "w":
		if err := ladder.WriteRoutineFile(m.editor.Routine(), m.path); err != nil {
			m.setStatus(fmt.Sprintf("write failed: %v", err), false)
		} else {
			m.dirty = false
			m.setStatus(fmt.Sprintf("wrote %s", m.path), true)
		}
	}
	return m, nil
}

// updateInput handles keystrokes while a text prompt is active.
func (m editorModel) updateInput(msg tea.KeyMsg) editorModel {
	switch msg.String() {
	case "esc":
		m.mode = modeNavigate
		m.input = ""
		m.setStatus("cancelled", true)
	case "enter":
		mode := m.mode
		text := strings.TrimSpace(m.input)
		m.mode = modeNavigate
		m.input = ""
		m.commitInput(mode, text)
		return m
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.input += string(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.input += " "
		}
	}
	return m
}

func (m *editorModel) commitInput(mode editMode, text string) {
	switch mode {
	case modeInsert:
		if text == "" {
			m.setStatus("nothing to insert", false)
			return
		}
		t := resolve.Target{Rung: m.rung, Position: m.pos}
		m.mutate(m.editor.Insert(t, ladder.Descriptor{Text: text}))
	case modeAppend:
		m.mutate(m.editor.AppendRung(text))
		if m.statusOK {
			m.rung = m.editor.Routine().Len() - 1
			m.pos = 0
		}
	case modeComment:
		m.mutate(m.editor.SetComment(m.rung, text))
	}
}

// mutate folds an editor result into the model: status line, dirty flag, and
// cursor clamping against the rebuilt sequence.
func (m *editorModel) mutate(affected []int, err error) {
	if err != nil {
		if reason, ok := edit.Rejected(err); ok {
			m.setStatus(reason, false)
		} else {
			m.setStatus(err.Error(), false)
		}
		return
	}
	m.dirty = true
	m.clampCursor()
	switch len(affected) {
	case 0:
		m.setStatus("ok", true)
	case 1:
		m.setStatus(fmt.Sprintf("updated rung %d", affected[0]), true)
	default:
		m.setStatus(fmt.Sprintf("updated rungs %d-%d", affected[0], affected[len(affected)-1]), true)
	}
}

func (m *editorModel) setStatus(status string, ok bool) {
	m.status = status
	m.statusOK = ok
}

func (m *editorModel) clampCursor() {
	n := m.seqLen(m.rung)
	if m.pos >= n {
		m.pos = n - 1
	}
	if m.pos < 0 {
		m.pos = 0
	}
}

func (m editorModel) seqLen(rung int) int {
	r, err := m.editor.Routine().Rung(rung)
	if err != nil {
		return 0
	}
	return r.Len()
}

// bracketAtCursor returns the outermost-bracket-relative id of the branch the
// cursor element lives in. Leg ids like "b0:1" collapse to their bracket.
func (m editorModel) bracketAtCursor() (string, bool) {
	r, err := m.editor.Routine().Rung(m.rung)
	if err != nil {
		return "", false
	}
	seq, err := r.Sequence()
	if err != nil || m.pos >= len(seq) {
		return "", false
	}
	id := seq[m.pos].BranchID
	if id == "" {
		return "", false
	}
	if bracket, _, found := strings.Cut(id, ":"); found {
		return bracket, true
	}
	return id, true
}

func (m editorModel) View() string {
	var b strings.Builder

	title := m.path
	if m.dirty {
		title += " [modified]"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ rung  ←/→ element  i insert  a append rung  d delete  D delete rung"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("m+⏎ move  b..b branch  L add leg  X delete branch  c comment  w write  q quit"))
	b.WriteString("\n\n")

	rt := m.editor.Routine()
	end := m.offset + m.height
	if end > rt.Len() {
		end = rt.Len()
	}
	for i := m.offset; i < end; i++ {
		r, err := rt.Rung(i)
		if err != nil {
			continue
		}
		cursor := "  "
		if i == m.rung {
			cursor = "▸ "
		}
		if c := r.Comment(); c != "" {
			b.WriteString("  " + listDimStyle.Render("// "+strings.ReplaceAll(c, "\n", " ⏎ ")))
			b.WriteString("\n")
		}
		b.WriteString(cursor + listDimStyle.Render(fmt.Sprintf("%3d ", i)))
		b.WriteString(m.renderRung(r, i == m.rung))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeInsert:
		b.WriteString(StyleHighlight.Render("insert> ") + m.input + "▌")
	case modeAppend:
		b.WriteString(StyleHighlight.Render("rung> ") + m.input + "▌")
	case modeComment:
		b.WriteString(StyleHighlight.Render("comment> ") + m.input + "▌")
	default:
		style := styleStatusOK
		if !m.statusOK {
			style = styleStatusErr
		}
		b.WriteString(style.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}

// renderRung lays a rung's token sequence out one element per cell,
// highlighting the cursor element on the selected rung.
func (m editorModel) renderRung(r *ladder.Rung, selected bool) string {
	seq, err := r.Sequence()
	if err != nil {
		return styleStatusErr.Render(err.Error())
	}
	if len(seq) == 0 {
		if selected {
			return listSelectedStyle.Render("(empty)")
		}
		return listDimStyle.Render("(empty)")
	}

	parts := make([]string, 0, len(seq))
	for _, el := range seq {
		text := elementToken(el)
		switch {
		case m.moveFrom != nil && m.moveFrom.rung == r.Number() && m.moveFrom.pos == el.Position:
			parts = append(parts, styleMarked.Render(text))
		case m.branchTip != nil && m.branchTip.rung == r.Number() && m.branchTip.pos == el.Position:
			parts = append(parts, styleMarked.Render(text))
		case selected && el.Position == m.pos:
			parts = append(parts, listSelectedStyle.Render(text))
		case el.Kind != ladder.KindInstruction:
			parts = append(parts, listDimStyle.Render(text))
		default:
			parts = append(parts, listNormalStyle.Render(text))
		}
	}
	return strings.Join(parts, " ")
}

// elementToken returns the display token for one sequence element.
func elementToken(el ladder.RungElement) string {
	switch el.Kind {
	case ladder.KindBranchStart:
		return "["
	case ladder.KindBranchNext:
		return ","
	case ladder.KindBranchEnd:
		return "]"
	}
	if el.Instr != nil {
		return el.Instr.Text
	}
	return "?"
}
