package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iroxusux/ladderview/pkg/edit"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

// newEditCmd creates the edit command: an interactive terminal editor for a
// routine file.
func newEditCmd() *cobra.Command {
	var constants string

	cmd := &cobra.Command{
		Use:   "edit [routine.toml]",
		Short: "Edit a routine interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], constants)
		},
	}

	cmd.Flags().StringVar(&constants, "constants", "", "layout constants TOML file")
	return cmd
}

func runEdit(cmd *cobra.Command, path, constants string) error {
	logger := loggerFromContext(cmd.Context())

	rt, err := ladder.ReadRoutineFile(path)
	if err != nil {
		return fmt.Errorf("read routine: %w", err)
	}
	cons, err := loadConstants(constants)
	if err != nil {
		return err
	}
	engine := layout.NewEngine(layout.WithConstants(cons), layout.WithLogger(logger))
	if err := engine.LayoutRoutine(rt); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	editor := edit.New(rt, engine, edit.WithLogger(logger))
	model := newEditorModel(path, editor)

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(editorModel); ok && m.dirty {
		printWarning("Unsaved changes discarded (use w to write before quitting)")
	}
	return nil
}
