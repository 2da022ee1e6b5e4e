package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lectern/internal/dashboard"
	"github.com/desertthunder/lectern/internal/models"
	"github.com/desertthunder/lectern/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FolderListView ViewState = iota
	FileListView
	InputView
	ConfirmView
)

// Model represents the dashboard TUI state. The folder tree itself lives in the controller.
type Model struct {
	ctx      context.Context
	view     ViewState
	prev     ViewState
	ctrl     *dashboard.Controller
	prompter *Prompter
	userID   models.ID
	folderID models.ID

	width      int
	height     int
	folderList list.Model
	fileList   list.Model
	input      textinput.Model
	prompt     *confirmRequest
	status     string
	err        error
	fatal      error
	help       help.Model
	keys       keyMap
}

// NewModel creates a dashboard model. prompter must be the confirmer the controller was built with.
func NewModel(ctx context.Context, ctrl *dashboard.Controller, prompter *Prompter, userID models.ID) *Model {
	folderList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	folderList.Title = "Folders"
	fileList := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	input := textinput.New()
	input.Placeholder = "Folder name"
	input.CharLimit = 120

	return &Model{
		ctx:        ctx,
		view:       FolderListView,
		ctrl:       ctrl,
		prompter:   prompter,
		userID:     userID,
		folderList: folderList,
		fileList:   fileList,
		input:      input,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Err returns the error that ended the session, such as an expired login.
func (m *Model) Err() error {
	return m.fatal
}

// View state, for tests and callers embedding the model.
func (m *Model) State() ViewState {
	return m.view
}

// Init fetches the folder tree and starts listening for confirmation prompts.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchFolders(), m.waitForPrompt())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.folderList.SetSize(msg.Width-4, msg.Height-8)
		m.fileList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FolderListView:
			return m.handleFolderKeys(msg)
		case FileListView:
			return m.handleFileKeys(msg)
		case InputView:
			return m.handleInputKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	if msg.kind == MsgConfirmPrompt {
		req := msg.data.(confirmRequest)
		m.prompt = &req
		m.prev = m.view
		m.view = ConfirmView
		return m, nil
	}

	if err := msg.err; err != nil {
		if errors.Is(err, shared.ErrSessionExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
			m.fatal = err
			return m, tea.Quit
		}
		if errors.Is(err, shared.ErrCancelled) {
			m.status = "Cancelled"
			m.err = nil
			return m, nil
		}
		m.err = err
		return m, nil
	}

	m.err = nil
	switch msg.kind {
	case MsgFoldersFetched:
		m.status = ""
	case MsgFolderCreated:
		m.status = fmt.Sprintf("Created %s", msg.data.(models.Folder).Name)
	case MsgFolderDeleted:
		m.status = "Folder deleted"
	case MsgFileDeleted:
		m.status = "File deleted"
	case MsgFileViewed:
		m.status = fmt.Sprintf("Opened %s", msg.data.(string))
	}
	m.refresh()
	return m, nil
}

// refresh rebuilds both lists from the controller's tree.
func (m *Model) refresh() {
	m.folderList.SetItems(folderItems(m.ctrl.Folders()))

	if m.view != FileListView && m.prev != FileListView {
		return
	}
	folder, ok := m.ctrl.Find(m.folderID)
	if !ok {
		m.view = FolderListView
		m.folderID = ""
		return
	}
	m.fileList.Title = folder.Name
	m.fileList.SetItems(fileItems(folder.Files))
}

func (m *Model) handleFolderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.folderList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.folderList, cmd = m.folderList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.folderList.SelectedItem().(folderItem); ok {
			m.folderID = item.folder.ID
			m.view = FileListView
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.create):
		m.view = InputView
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.folderList.SelectedItem().(folderItem); ok {
			return m, m.deleteFolder(item.folder.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.status = "Refreshing..."
		return m, m.fetchFolders()
	}

	var cmd tea.Cmd
	m.folderList, cmd = m.folderList.Update(msg)
	return m, cmd
}

func (m *Model) handleFileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = FolderListView
		m.folderID = ""
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.fileList.SelectedItem().(fileItem); ok {
			return m, m.deleteFile(item.file.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.view):
		if item, ok := m.fileList.SelectedItem().(fileItem); ok {
			m.status = fmt.Sprintf("Loading %s...", item.file.Name)
			return m, m.viewFile(item.file)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.view = FolderListView
		return m, nil
	case "enter":
		name := m.input.Value()
		m.input.Blur()
		m.view = FolderListView
		return m, m.createFolder(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(msg, m.keys.yes):
		answer = true
	case key.Matches(msg, m.keys.no):
		answer = false
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	default:
		return m, nil
	}

	if m.prompt != nil {
		m.prompt.reply <- answer
	}
	m.prompt = nil
	m.view = m.prev
	return m, m.waitForPrompt()
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FolderListView:
		m.folderList, cmd = m.folderList.Update(msg)
	case FileListView:
		m.fileList, cmd = m.fileList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchFolders() tea.Cmd {
	return func() tea.Msg {
		folders, err := m.ctrl.FetchFolders(m.ctx, m.userID)
		return foldersFetchedMsg(folders, err)
	}
}

func (m *Model) createFolder(name string) tea.Cmd {
	return func() tea.Msg {
		folder, err := m.ctrl.CreateFolder(m.ctx, name, m.userID)
		return folderCreatedMsg(folder, err)
	}
}

func (m *Model) deleteFolder(id models.ID) tea.Cmd {
	return func() tea.Msg {
		return folderDeletedMsg(id, m.ctrl.DeleteFolder(m.ctx, id))
	}
}

func (m *Model) deleteFile(id models.ID) tea.Cmd {
	folderID := m.folderID
	return func() tea.Msg {
		return fileDeletedMsg(id, m.ctrl.DeleteFile(m.ctx, id, folderID))
	}
}

func (m *Model) viewFile(file models.File) tea.Cmd {
	return func() tea.Msg {
		return fileViewedMsg(file.Name, m.ctrl.ViewFile(m.ctx, file.FileID))
	}
}

func (m *Model) waitForPrompt() tea.Cmd {
	if m.prompter == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case req := <-m.prompter.requests:
			return confirmPromptMsg(req)
		case <-m.prompter.done:
			return nil
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FolderListView:
		return m.renderList(m.folderList, m.keys.enter, m.keys.create, m.keys.remove, m.keys.refresh, m.keys.quit)
	case FileListView:
		return m.renderList(m.fileList, m.keys.view, m.keys.remove, m.keys.back, m.keys.quit)
	case InputView:
		return m.renderInput()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	out := l.View()
	if m.err != nil {
		out += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.status != "" {
		out += "\n" + styles.ok.Render(m.status)
	}
	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(keys))
}

func (m *Model) renderInput() string {
	title := styles.title.Render("New folder")
	helpView := styles.help.Render("enter to create • esc to cancel")
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderConfirm() string {
	message := ""
	if m.prompt != nil {
		message = m.prompt.message
	}
	title := styles.warn.Render(message)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
