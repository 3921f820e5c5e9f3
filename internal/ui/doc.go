// Package ui renders command output for the terminal with lipgloss.
//
// Tables for the catalog, run history, stats and near-duplicate report are built with lipgloss/table and share the
// default [Palette]. [ProgressPrinter] turns the export engine's progress updates into one line per event.
package ui
