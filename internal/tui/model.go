// Package tui implements the interactive todo browser.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/pl/internal/core/todo"
	"github.com/colonyops/pl/internal/pl"
)

// Service produces todo views.
type Service interface {
	View(ctx context.Context, opts pl.ViewOptions) (todo.View, error)
	Refresh(ctx context.Context, opts pl.ViewOptions) (todo.View, error)
}

// IgnoreStore mutates the ignore list.
type IgnoreStore interface {
	Add(id, reason string, expires *time.Time) (todo.IgnoreEntry, error)
	Resolve(id string) (todo.IgnoreEntry, error)
	Remove(id string) (int, error)
}

// Options configure the browser.
type Options struct {
	Filter      todo.Filter
	ShowIgnored bool
	// Watch lists files whose changes trigger a reload.
	Watch []string
}

type viewLoadedMsg struct {
	view todo.View
	err  error
}

type actionDoneMsg struct {
	status string
	err    error
}

// Model is the bubbletea model of the todo browser.
type Model struct {
	// ctx is cancelled when the browser quits so in-flight loads stop.
	ctx     context.Context
	cancel  context.CancelFunc
	svc     Service
	ignores IgnoreStore
	watcher *FileWatcher

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	prompt  textinput.Model

	list        TodoList
	view        todo.View
	filter      todo.Filter
	showIgnored bool

	loading   bool
	prompting bool
	pendingID string
	status    string
	err       error

	width  int
	height int
}

// New creates the browser model.
func New(ctx context.Context, svc Service, ignores IgnoreStore, opts Options) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	prompt := textinput.New()
	prompt.Placeholder = todo.ReasonIgnored
	prompt.CharLimit = 200
	prompt.Prompt = "reason: "

	ctx, cancel := context.WithCancel(ctx)

	return Model{
		ctx:         ctx,
		cancel:      cancel,
		svc:         svc,
		ignores:     ignores,
		watcher:     NewFileWatcher(opts.Watch),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		prompt:      prompt,
		filter:      opts.Filter,
		showIgnored: opts.ShowIgnored,
		loading:     true,
	}
}

// Close cancels outstanding loads and stops the file watcher.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.load(false)}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.Start())
	}
	return tea.Batch(cmds...)
}

func (m Model) options() pl.ViewOptions {
	return pl.ViewOptions{Filter: m.filter, ShowIgnored: m.showIgnored}
}

func (m Model) load(refresh bool) tea.Cmd {
	ctx, svc, opts := m.ctx, m.svc, m.options()
	return func() tea.Msg {
		var (
			v   todo.View
			err error
		)
		if refresh {
			v, err = svc.Refresh(ctx, opts)
		} else {
			v, err = svc.View(ctx, opts)
		}
		return viewLoadedMsg{view: v, err: err}
	}
}

func (m Model) ignore(id, reason string) tea.Cmd {
	ignores := m.ignores
	return func() tea.Msg {
		if _, err := ignores.Add(id, reason, nil); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Ignored %s", id)}
	}
}

func (m Model) resolve(id string) tea.Cmd {
	ignores := m.ignores
	return func() tea.Msg {
		if _, err := ignores.Resolve(id); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Resolved %s", id)}
	}
}

func (m Model) unignore(id string) tea.Cmd {
	ignores := m.ignores
	return func() tea.Msg {
		n, err := ignores.Remove(id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if n == 0 {
			return actionDoneMsg{status: fmt.Sprintf("%s is not ignored", id)}
		}
		return actionDoneMsg{status: fmt.Sprintf("Unignored %s", id)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetHeight(m.listHeight())
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case viewLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view = msg.view
		m.list.SetItems(msg.view.Items)
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		return m, m.load(false)

	case FilesChangedMsg:
		cmds := []tea.Cmd{m.load(false)}
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.Start())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.list.Move(1)
	case key.Matches(msg, m.keys.Up):
		m.list.Move(-1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.list.SetHeight(m.listHeight())
	case key.Matches(msg, m.keys.ToggleIgnored):
		m.showIgnored = !m.showIgnored
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.load(false))
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.status = "Refreshing…"
		return m, tea.Batch(m.spinner.Tick, m.load(true))
	case key.Matches(msg, m.keys.Ignore):
		it, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		m.prompting = true
		m.pendingID = it.ID
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case key.Matches(msg, m.keys.Resolve):
		if it, ok := m.list.Selected(); ok {
			return m, m.resolve(it.ID)
		}
	case key.Matches(msg, m.keys.Unignore):
		if it, ok := m.list.Selected(); ok {
			return m, m.unignore(it.ID)
		}
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.prompt.Blur()
		m.status = "Cancelled"
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.prompt.Blur()
		return m, m.ignore(m.pendingID, m.prompt.Value())
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// listHeight is the space left for rows after the header, detail pane and help.
func (m Model) listHeight() int {
	reserved := 10
	if m.help.ShowAll {
		reserved += 3
	}
	return max(m.height-reserved, 3)
}
