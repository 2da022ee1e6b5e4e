package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lectern/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFoldersFetched MsgKind = iota
	MsgFolderCreated
	MsgFolderDeleted
	MsgFileDeleted
	MsgFileViewed
	MsgConfirmPrompt
	MsgTick
)

// Kind reports which message this is.
func (m Msg) Kind() MsgKind { return m.kind }

// Err is the failure carried by the message, if any.
func (m Msg) Err() error { return m.err }

// foldersFetchedMsg is the constructor for [MsgFoldersFetched]
func foldersFetchedMsg(folders []models.Folder, err error) Msg {
	return Msg{kind: MsgFoldersFetched, data: folders, err: err}
}

// folderCreatedMsg is the constructor for [MsgFolderCreated]
func folderCreatedMsg(folder models.Folder, err error) Msg {
	return Msg{kind: MsgFolderCreated, data: folder, err: err}
}

// folderDeletedMsg is the constructor for [MsgFolderDeleted]
func folderDeletedMsg(folderID models.ID, err error) Msg {
	return Msg{kind: MsgFolderDeleted, data: folderID, err: err}
}

// fileDeletedMsg is the constructor for [MsgFileDeleted]
func fileDeletedMsg(fileID models.ID, err error) Msg {
	return Msg{kind: MsgFileDeleted, data: fileID, err: err}
}

// fileViewedMsg is the constructor for [MsgFileViewed]
func fileViewedMsg(name string, err error) Msg {
	return Msg{kind: MsgFileViewed, data: name, err: err}
}

// confirmPromptMsg is the constructor for [MsgConfirmPrompt]
func confirmPromptMsg(req confirmRequest) Msg {
	return Msg{kind: MsgConfirmPrompt, data: req}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg() Msg {
	return Msg{kind: MsgTick}
}
