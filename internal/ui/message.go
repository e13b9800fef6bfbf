package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgItemsListed MsgKind = iota
	MsgProgressUpdate
	MsgTransferComplete
)

type itemsListed struct {
	items []services.PlaylistItem
	err   error
}

type transferComplete struct {
	result *tasks.TransferResult
	err    error
}

// itemsListedMsg is the constructor for [MsgItemsListed]
func itemsListedMsg(items []services.PlaylistItem, err error) Msg {
	return Msg{kind: MsgItemsListed, data: itemsListed{items, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// transferCompleteMsg is the constructor for [MsgTransferComplete]
func transferCompleteMsg(result *tasks.TransferResult, err error) Msg {
	return Msg{kind: MsgTransferComplete, data: transferComplete{result, err}}
}
