package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lectern/internal/recording"
)

const recorderTick = 200 * time.Millisecond

// RecorderModel drives a [recording.Controller] from the keyboard and shows the live transcript.
//
// The program quits after a stop, leaving saving to the caller.
type RecorderModel struct {
	ctx      context.Context
	ctrl     *recording.Controller
	artifact *recording.Artifact
	err      error
	help     help.Model
	keys     recorderKeyMap
}

func NewRecorderModel(ctx context.Context, ctrl *recording.Controller) *RecorderModel {
	return &RecorderModel{ctx: ctx, ctrl: ctrl, help: help.New(), keys: newRecorderKeyMap()}
}

// Artifact returns the audio of the stopped take, nil when the user quit without stopping.
func (m *RecorderModel) Artifact() *recording.Artifact {
	return m.artifact
}

func (m *RecorderModel) Init() tea.Cmd {
	return m.tick()
}

func (m *RecorderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeys(msg)
	case Msg:
		if msg.kind == MsgTick {
			return m, m.tick()
		}
	}
	return m, nil
}

func (m *RecorderModel) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.quit):
		if s := m.ctrl.State(); s == recording.Recording || s == recording.Paused {
			m.artifact, m.err = m.ctrl.Stop()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.pause):
		m.err = m.ctrl.Pause()
	case key.Matches(msg, m.keys.resume):
		if m.ctrl.State() == recording.Paused {
			m.err = m.ctrl.Resume()
		} else {
			m.err = m.ctrl.Start(m.ctx)
		}
	case key.Matches(msg, m.keys.stop):
		m.artifact, m.err = m.ctrl.Stop()
		if m.err == nil {
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.language):
		_, m.err = m.ctrl.ToggleLanguage()
	}
	return m, nil
}

func (m *RecorderModel) tick() tea.Cmd {
	return tea.Tick(recorderTick, func(time.Time) tea.Msg { return tickMsg() })
}

func (m *RecorderModel) View() string {
	badge := styles.Badge(m.ctrl.State())

	var b strings.Builder
	b.WriteString(styles.title.Render("Voice Transcription"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s\n\n", badge, m.ctrl.Language()))

	text := m.ctrl.Transcript().Text()
	if text == "" {
		text = styles.help.Render("Press r to start recording")
	}
	b.WriteString(styles.body.Render(text))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.resume, m.keys.pause, m.keys.stop, m.keys.language, m.keys.quit}))
	return b.String()
}
