// Package edit performs structural edits against a routine's rungs and keeps
// the committed geometry consistent.
//
// The [Editor] is the single write path of the system: every mutation goes
// through the sequence model first, then requests a re-layout of the touched
// rung and lets the engine cascade the height change to the rungs below.
// Each operation returns the numbers of all rungs whose geometry changed, so
// the host can clear and re-emit exactly those rungs.
//
// Ordinary user mistakes — dropping an element on its own position, clicking
// outside any rung — are rejections, not failures: they carry a user-facing
// reason (see [Rejected]) and leave both the sequence model and the geometry
// unchanged. Structural-invariant failures abort the operation the same way
// but indicate a corrupted sequence rather than a bad gesture.
package edit

import (
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iroxusux/ladderview/pkg/errors"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
	"github.com/iroxusux/ladderview/pkg/observability"
	"github.com/iroxusux/ladderview/pkg/resolve"
)

// Editor mutates one routine and re-lays-out through one engine. All
// operations run synchronously on the caller's goroutine; an edit completes,
// cascade included, before the next one starts.
type Editor struct {
	routine  *ladder.Routine
	engine   *layout.Engine
	resolver *resolve.Resolver
	log      *log.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor's logger. The default discards everything.
func WithLogger(l *log.Logger) Option { return func(e *Editor) { e.log = l } }

// New creates an editor for the routine. The engine must already hold the
// routine's committed geometry (via [layout.Engine.LayoutRoutine]).
func New(rt *ladder.Routine, engine *layout.Engine, opts ...Option) *Editor {
	e := &Editor{
		routine:  rt,
		engine:   engine,
		resolver: resolve.New(engine),
		log:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Routine returns the routine under edit.
func (e *Editor) Routine() *ladder.Routine { return e.routine }

// Resolver returns the editor's position resolver, for hosts that preview
// insertion points.
func (e *Editor) Resolver() *resolve.Resolver { return e.resolver }

// =============================================================================
// Element Operations
// =============================================================================

// Insert adds an instruction at the target slot, shifting subsequent
// positions by one, and re-lays-out the rung.
func (e *Editor) Insert(t resolve.Target, d ladder.Descriptor) ([]int, error) {
	return e.apply("insert", t.Rung, func(r *ladder.Rung) error {
		return r.AddInstruction(d, t.Position)
	})
}

// InsertAt resolves a pointer coordinate and inserts there.
func (e *Editor) InsertAt(x, y float64, d ladder.Descriptor) ([]int, error) {
	t, err := e.resolver.Resolve(x, y)
	if err != nil {
		observability.Edit().OnRejected("insert", -1, errors.UserMessage(err))
		return nil, err
	}
	return e.Insert(t, d)
}

// Delete removes the instruction at position, shifting subsequent positions
// down. Branch markers cannot be deleted this way; use DeleteBranch.
func (e *Editor) Delete(rung, position int) ([]int, error) {
	return e.apply("delete", rung, func(r *ladder.Rung) error {
		return r.RemoveInstructions(position, position)
	})
}

// DeleteRange removes the instructions in [start, end].
func (e *Editor) DeleteRange(rung, start, end int) ([]int, error) {
	return e.apply("delete", rung, func(r *ladder.Rung) error {
		return r.RemoveInstructions(start, end)
	})
}

// Move relocates an instruction, possibly across rungs. Dropping an element
// on its own slot — its current position, or the slot just after it on the
// same rung, both of which re-create the starting sequence — is rejected as
// a duplicate drop.
func (e *Editor) Move(fromRung, fromPos, toRung, toPos int) ([]int, error) {
	start := time.Now()
	affected, err := e.move(fromRung, fromPos, toRung, toPos)
	observability.Edit().OnEdit("move", fromRung, time.Since(start), err)
	if err != nil {
		if reason, ok := Rejected(err); ok {
			observability.Edit().OnRejected("move", fromRung, reason)
		}
		return nil, err
	}
	return affected, nil
}

func (e *Editor) move(fromRung, fromPos, toRung, toPos int) ([]int, error) {
	src, err := e.routine.Rung(fromRung)
	if err != nil {
		return nil, err
	}

	if fromRung == toRung {
		if toPos == fromPos || toPos == fromPos+1 {
			return nil, errors.New(errors.ErrCodeDuplicateDrop, "Duplicate drop position")
		}
		// The drop slot indexes the pre-removal sequence; removing the
		// element first shifts slots right of it down by one.
		adjusted := toPos
		if toPos > fromPos {
			adjusted--
		}
		return e.apply("move", fromRung, func(r *ladder.Rung) error {
			return r.MoveInstruction(fromPos, adjusted)
		})
	}

	dst, err := e.routine.Rung(toRung)
	if err != nil {
		return nil, err
	}
	seq, err := src.Sequence()
	if err != nil {
		return nil, err
	}
	if fromPos < 0 || fromPos >= len(seq) {
		return nil, errors.New(errors.ErrCodeInvalidPosition, "move source %d out of range", fromPos)
	}
	el := seq[fromPos]
	if el.Kind != ladder.KindInstruction {
		return nil, errors.New(errors.ErrCodeInvalidPosition,
			"position %d is a branch marker", fromPos)
	}
	d := ladder.Descriptor{Text: el.Instr.Text, Alias: el.Instr.Alias}

	if err := src.RemoveInstructions(fromPos, fromPos); err != nil {
		return nil, err
	}
	if err := dst.AddInstruction(d, toPos); err != nil {
		// Put the element back so a rejected drop leaves the model unchanged.
		if restoreErr := src.AddInstruction(d, fromPos); restoreErr != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, restoreErr,
				"restore after failed cross-rung move")
		}
		return nil, err
	}

	first, second := fromRung, toRung
	if second < first {
		first, second = second, first
	}
	a1, err := e.engine.RelayoutRung(e.routine, first)
	if err != nil {
		return nil, err
	}
	a2, err := e.engine.RelayoutRung(e.routine, second)
	if err != nil {
		return nil, err
	}
	return mergeAffected(a1, a2), nil
}

// MoveTo resolves a drop coordinate and moves the element there.
func (e *Editor) MoveTo(fromRung, fromPos int, x, y float64) ([]int, error) {
	t, err := e.resolver.Resolve(x, y)
	if err != nil {
		observability.Edit().OnRejected("move", fromRung, errors.UserMessage(err))
		return nil, err
	}
	return e.Move(fromRung, fromPos, t.Rung, t.Position)
}

// =============================================================================
// Branch Operations
// =============================================================================

// CreateBranch wraps [start, end] in a new single-leg branch, shifting later
// positions by two (one per inserted marker), and returns the new branch id.
func (e *Editor) CreateBranch(rung, start, end int) (string, []int, error) {
	var id string
	affected, err := e.apply("create_branch", rung, func(r *ladder.Rung) error {
		var err error
		id, err = r.InsertBranch(start, end)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return id, affected, nil
}

// AddLeg appends an empty parallel leg to a branch.
func (e *Editor) AddLeg(rung int, branchID string) ([]int, error) {
	return e.apply("add_leg", rung, func(r *ladder.Rung) error {
		_, err := r.AddLeg(branchID)
		return err
	})
}

// DeleteBranch removes a branch's markers and every element it contained,
// re-indexing later positions with no gaps.
func (e *Editor) DeleteBranch(rung int, branchID string) ([]int, error) {
	return e.apply("delete_branch", rung, func(r *ladder.Rung) error {
		return r.RemoveBranch(branchID)
	})
}

// =============================================================================
// Rung Operations
// =============================================================================

// AppendRung adds a rung at the end of the routine.
func (e *Editor) AppendRung(text string) ([]int, error) {
	r, err := ladder.NewRung(text)
	if err != nil {
		return nil, err
	}
	n := e.routine.AppendRung(r)
	if err := e.engine.LayoutRoutine(e.routine); err != nil {
		return nil, err
	}
	return []int{n}, nil
}

// InsertRung places a new rung at the given number; it and every rung below
// it are repositioned.
func (e *Editor) InsertRung(text string, number int) ([]int, error) {
	r, err := ladder.NewRung(text)
	if err != nil {
		return nil, err
	}
	if err := e.routine.InsertRung(r, number); err != nil {
		return nil, err
	}
	if err := e.engine.LayoutRoutine(e.routine); err != nil {
		return nil, err
	}
	return rangeFrom(number, e.routine.Len()), nil
}

// DeleteRung removes a rung; every rung below it is repositioned. The
// affected list includes the routine's previous last rung number, which no
// rung occupies anymore, so retained sinks clear its stale primitives.
func (e *Editor) DeleteRung(number int) ([]int, error) {
	oldLast := e.routine.Len() - 1
	if err := e.routine.DeleteRung(number); err != nil {
		return nil, err
	}
	if err := e.engine.LayoutRoutine(e.routine); err != nil {
		return nil, err
	}
	return append(rangeFrom(number, e.routine.Len()), oldLast), nil
}

// SetComment replaces a rung's comment and re-lays-out, since the comment
// block participates in the rung's height.
func (e *Editor) SetComment(rung int, comment string) ([]int, error) {
	return e.apply("set_comment", rung, func(r *ladder.Rung) error {
		r.SetComment(comment)
		return nil
	})
}

// =============================================================================
// Plumbing
// =============================================================================

// apply runs one sequence mutation against a rung and re-lays-out on
// success. The mutation validates before committing, so a layout failure
// afterwards means the sequence was already corrupt; the engine's previous
// geometry stays in place either way.
func (e *Editor) apply(op string, rung int, mutate func(*ladder.Rung) error) ([]int, error) {
	start := time.Now()
	affected, err := e.applyInner(rung, mutate)
	observability.Edit().OnEdit(op, rung, time.Since(start), err)
	if err != nil {
		if reason, ok := Rejected(err); ok {
			observability.Edit().OnRejected(op, rung, reason)
			e.log.Debug("edit rejected", "op", op, "rung", rung, "reason", reason)
		}
		return nil, err
	}
	e.log.Debug("edit applied", "op", op, "rung", rung, "affected", len(affected))
	return affected, nil
}

func (e *Editor) applyInner(rung int, mutate func(*ladder.Rung) error) ([]int, error) {
	r, err := e.routine.Rung(rung)
	if err != nil {
		return nil, err
	}
	if err := mutate(r); err != nil {
		return nil, err
	}
	return e.engine.RelayoutRung(e.routine, rung)
}

// Rejected reports whether err is an ordinary user-interaction rejection —
// a bad drop slot or a click outside any valid region — and returns the
// status reason to display. Structural and not-found errors are not
// rejections; they indicate real failures.
func Rejected(err error) (string, bool) {
	switch errors.GetCode(err) {
	case errors.ErrCodeDuplicateDrop,
		errors.ErrCodeInvalidCoordinate,
		errors.ErrCodeInvalidPosition,
		errors.ErrCodeInvalidRange:
		return errors.UserMessage(err), true
	}
	return "", false
}

func mergeAffected(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var out []int
	for _, n := range append(a, b...) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

func rangeFrom(start, end int) []int {
	if start > end {
		start = end
	}
	out := make([]int, 0, end-start)
	for n := start; n < end; n++ {
		out = append(out, n)
	}
	return out
}
