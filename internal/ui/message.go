package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/tasks"
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
	MsgLoaded MsgKind = iota
	MsgProjectCreated
	MsgProjectDeleted
	MsgProfileUpdated
	MsgLoggedOut
	MsgEditDone
	MsgProgressUpdate
	MsgProgressClosed
)

// result is the payload of messages that only carry an error.
type result struct {
	err error
}

type createdResult struct {
	project models.Project
	err     error
}

type deletedResult struct {
	id  string
	err error
}

type editResult struct {
	projectID string
	op        tasks.Operation
	err       error
}

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(err error) Msg {
	return Msg{kind: MsgLoaded, data: result{err}}
}

// projectCreatedMsg is the constructor for [MsgProjectCreated]
func projectCreatedMsg(project models.Project, err error) Msg {
	return Msg{kind: MsgProjectCreated, data: createdResult{project, err}}
}

// projectDeletedMsg is the constructor for [MsgProjectDeleted]
func projectDeletedMsg(id string, err error) Msg {
	return Msg{kind: MsgProjectDeleted, data: deletedResult{id, err}}
}

// profileUpdatedMsg is the constructor for [MsgProfileUpdated]
func profileUpdatedMsg(err error) Msg {
	return Msg{kind: MsgProfileUpdated, data: result{err}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: result{err}}
}

// editDoneMsg is the constructor for [MsgEditDone]
func editDoneMsg(projectID string, op tasks.Operation, err error) Msg {
	return Msg{kind: MsgEditDone, data: editResult{projectID, op, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

func progressClosedMsg() Msg {
	return Msg{kind: MsgProgressClosed}
}

// Err returns the error carried by a result message, if any.
func (m Msg) Err() error {
	switch d := m.data.(type) {
	case result:
		return d.err
	case createdResult:
		return d.err
	case deletedResult:
		return d.err
	case editResult:
		return d.err
	}
	return nil
}

// Kind reports which message this is.
func (m Msg) Kind() MsgKind { return m.kind }
