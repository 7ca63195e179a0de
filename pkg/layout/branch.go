package layout

import (
	"github.com/iroxusux/ladderview/pkg/errors"
)

// Branch is the geometry record for one branch: either a bracket (whose
// record doubles as its first leg) or a sibling leg created by a leg
// separator. Parent and children are referenced by id, never by pointer, so
// records stay independently copyable.
type Branch struct {
	ID       string
	RootID   string
	ParentID string // "" for a top-level bracket
	Level    int

	RungNumber int

	// StartX is the branch's vertical rail; EndX the right edge where the
	// closing connector sits. Both are provisional until the bracket closes.
	StartX, EndX float64

	// MainY is the owning rung's centerline. BranchY is the top of the leg's
	// connector row; elements on the leg are centered ConnectorRadius below
	// it. StartY/EndY bound the leg's hit region; EndY stays provisional
	// until the next sibling appears or the bracket closes.
	MainY                 float64
	StartY, BranchY, EndY float64

	Height float64

	// Sequence index range this branch owns.
	StartPosition, EndPosition int

	// ChildIDs lists sibling legs in discovery order, top to bottom.
	ChildIDs []string
}

// IsBracket reports whether the record is a bracket (whose record doubles as
// its first leg) rather than a sibling leg.
func (b *Branch) IsBracket() bool { return b.ID == b.RootID }

// ContextLevel returns the nesting level of elements flowing on this leg. A
// bracket record carries the level of the context it opened in, so its
// first-leg elements sit one level deeper; a sibling leg record already
// carries its elements' level.
func (b *Branch) ContextLevel() int {
	if b.IsBracket() {
		return b.Level + 1
	}
	return b.Level
}

// Contains reports whether a point falls within the leg's hit region.
func (b *Branch) Contains(x, y float64) bool {
	return x >= b.StartX && x <= b.EndX && y >= b.StartY && y <= b.EndY
}

// Store is an arena of branch records for one layout pass, keyed by branch
// id. It is rebuilt with its rung on every pass.
type Store struct {
	branches map[string]*Branch
	order    []string
}

// NewStore creates an empty arena.
func NewStore() *Store {
	return &Store{branches: make(map[string]*Branch)}
}

// Create adds a record. Branch ids are unique within a rendered rung, so a
// duplicate id means the sequence walk is corrupted.
func (s *Store) Create(b *Branch) error {
	if _, ok := s.branches[b.ID]; ok {
		return errors.New(errors.ErrCodeBranchMismatch, "branch %s created twice", b.ID)
	}
	s.branches[b.ID] = b
	s.order = append(s.order, b.ID)
	return nil
}

// Get returns a record or fails. A miss for an id that an element still
// references is a programming error, hence the structural code.
func (s *Store) Get(id string) (*Branch, error) {
	b, ok := s.branches[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeDanglingBranchRef, "no branch record for id %s", id)
	}
	return b, nil
}

// Has reports whether a record exists.
func (s *Store) Has(id string) bool {
	_, ok := s.branches[id]
	return ok
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.branches) }

// All returns the records in creation order.
func (s *Store) All() []*Branch {
	out := make([]*Branch, len(s.order))
	for i, id := range s.order {
		out[i] = s.branches[id]
	}
	return out
}

// ResolveChildren finalizes a bracket's legs once it closes: every leg but
// the last gets its bottom edge pinned halfway to the next leg, and all legs
// inherit the bracket's resolved horizontal bounds.
func (s *Store) ResolveChildren(bracketID string, branchSpacing float64) error {
	bracket, err := s.Get(bracketID)
	if err != nil {
		return err
	}
	for i, id := range bracket.ChildIDs {
		child, err := s.Get(id)
		if err != nil {
			return err
		}
		if i+1 < len(bracket.ChildIDs) {
			next, err := s.Get(bracket.ChildIDs[i+1])
			if err != nil {
				return err
			}
			child.EndY = next.BranchY - branchSpacing/2
		}
		child.StartX = bracket.StartX
		child.EndX = bracket.EndX
	}
	return nil
}
