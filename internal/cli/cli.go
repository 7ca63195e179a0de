// Package cli implements the ladderview command-line interface.
//
// This package provides commands for rendering ladder routines to SVG and
// PNG, inspecting their branch structure, editing them interactively, and
// serving a live preview over HTTP. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate SVG, PNG, or DOT output from a routine file
//   - inspect: Print per-rung structure and geometry, or the branch tree
//   - edit: Open a routine in the interactive terminal editor
//   - serve: Serve a live HTML preview of a routine
//   - cache: Manage the rendered-artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so every command logs through the same
// configured instance.
package cli
