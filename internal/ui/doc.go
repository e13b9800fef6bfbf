// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one transfer:
//  1. [SourceListView] : Browse the videos of the source playlist
//  2. [ConfirmView] : Confirm the transfer, showing the stored checkpoint
//  3. [TransferView] : Monitor real-time progress updates
//  4. [ResultView] : Display the summary, failed item and checkpoint state
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the TransferEngine, providing non-blocking status reporting during transfers.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
