package ladder

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/iroxusux/ladderview/pkg/errors"
)

// Routine is an ordered list of rungs. Rung numbers are always contiguous
// from zero; structural edits that add or remove rungs renumber the rest.
type Routine struct {
	name  string
	rungs []*Rung
}

// NewRoutine creates an empty routine.
func NewRoutine(name string) *Routine {
	return &Routine{name: name}
}

// Name returns the routine name.
func (rt *Routine) Name() string { return rt.name }

// Rungs returns the routine's rungs in order. Callers must not modify the
// slice.
func (rt *Routine) Rungs() []*Rung { return rt.rungs }

// Len returns the number of rungs.
func (rt *Routine) Len() int { return len(rt.rungs) }

// Rung returns the rung with the given number.
func (rt *Routine) Rung(number int) (*Rung, error) {
	if number < 0 || number >= len(rt.rungs) {
		return nil, errors.New(errors.ErrCodeRungNotFound,
			"rung %d not found (routine has %d rungs)", number, len(rt.rungs))
	}
	return rt.rungs[number], nil
}

// AppendRung adds a rung at the end of the routine and returns its number.
func (rt *Routine) AppendRung(r *Rung) int {
	r.number = len(rt.rungs)
	rt.rungs = append(rt.rungs, r)
	return r.number
}

// InsertRung places a rung at the given number, shifting later rungs down.
func (rt *Routine) InsertRung(r *Rung, number int) error {
	if number < 0 || number > len(rt.rungs) {
		return errors.New(errors.ErrCodeInvalidPosition, "rung number %d out of range", number)
	}
	rt.rungs = append(rt.rungs, nil)
	copy(rt.rungs[number+1:], rt.rungs[number:])
	rt.rungs[number] = r
	rt.renumber()
	return nil
}

// DeleteRung removes the rung with the given number and renumbers the rest.
func (rt *Routine) DeleteRung(number int) error {
	if number < 0 || number >= len(rt.rungs) {
		return errors.New(errors.ErrCodeRungNotFound, "rung %d not found", number)
	}
	rt.rungs = append(rt.rungs[:number], rt.rungs[number+1:]...)
	rt.renumber()
	return nil
}

func (rt *Routine) renumber() {
	for i, r := range rt.rungs {
		r.number = i
	}
}

// =============================================================================
// Routine File Format
// =============================================================================

// routineFile is the TOML representation of a routine on disk.
type routineFile struct {
	Name  string     `toml:"name"`
	Rungs []rungFile `toml:"rungs"`
}

type rungFile struct {
	Text    string `toml:"text"`
	Comment string `toml:"comment,omitempty"`
}

// ParseRoutine decodes a routine from TOML bytes.
func ParseRoutine(data []byte) (*Routine, error) {
	var f routineFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal routine: %w", err)
	}
	rt := NewRoutine(f.Name)
	for i, rf := range f.Rungs {
		r, err := NewRung(rf.Text)
		if err != nil {
			return nil, fmt.Errorf("rung %d: %w", i, err)
		}
		r.SetComment(rf.Comment)
		rt.AppendRung(r)
	}
	return rt, nil
}

// MarshalRoutine encodes a routine to TOML bytes.
func MarshalRoutine(rt *Routine) ([]byte, error) {
	f := routineFile{Name: rt.name}
	for _, r := range rt.rungs {
		f.Rungs = append(f.Rungs, rungFile{Text: r.Text(), Comment: r.Comment()})
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("marshal routine: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadRoutineFile loads a routine from a TOML file.
func ReadRoutineFile(path string) (*Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rt, err := ParseRoutine(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rt, nil
}

// WriteRoutineFile saves a routine to a TOML file.
func WriteRoutineFile(rt *Routine, path string) error {
	data, err := MarshalRoutine(rt)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
