// Package tui is the bubbletea front end: the main menu, the device menu,
// the directory picker and the confirmation prompts around a transfer
// engine.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jask/antani/internal/picker"
	"github.com/jask/antani/internal/transfer"
	"github.com/jask/antani/internal/volume"
)

type screen uint8

const (
	screenMenu screen = iota
	screenDevice
	screenPicker
	screenPrompt
	screenExecuting
	screenResult
)

func (s screen) scope() string {
	switch s {
	case screenPicker:
		return scopePicker
	case screenPrompt:
		return scopePrompt
	case screenExecuting:
		return scopeExecuting
	case screenResult:
		return scopeResult
	default:
		return scopeMenu
	}
}

type menuItem struct {
	label string
	mode  transfer.Mode
	quit  bool
}

var mainMenu = []menuItem{
	{label: "Copy a file", mode: transfer.Copy},
	{label: "Move a file", mode: transfer.Move},
	{label: "Delete a file", mode: transfer.Delete},
	{label: "Copy a folder", mode: transfer.CopyDir},
	{label: "Move a folder", mode: transfer.MoveDir},
	{label: "Delete a folder", mode: transfer.DeleteDir},
	{label: "Quit", quit: true},
}

const abortLabel = "Abort and return to main menu"

// Options wires the model to its collaborators.
type Options struct {
	FS      volume.FS
	Volumes []string
	Engine  *transfer.Engine
	Picker  []picker.Option
	Logger  *logrus.Entry
}

// Model is the bubbletea model.
type Model struct {
	fs      volume.FS
	volumes []string
	engine  *transfer.Engine
	pkOpts  []picker.Option
	log     *logrus.Entry

	keys *KeyRegistry
	help help.Model

	screen  screen
	cursor  int
	pk      *picker.Session
	display frameDisplay
	report  transfer.Report

	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

// New returns a model showing the main menu.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	engine := opts.Engine
	if engine == nil {
		engine = transfer.New(opts.FS, nil, transfer.WithLogger(log))
	}
	m := Model{
		fs:      opts.FS,
		volumes: opts.Volumes,
		engine:  engine,
		pkOpts:  append(append([]picker.Option(nil), opts.Picker...), picker.WithLogger(log)),
		log:     log.WithField("component", "tui"),
		keys:    NewKeyRegistry(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
	m.pk = picker.New(m.fs, m.pkOpts...)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// ActiveScope is the key scope of the current screen.
func (m Model) ActiveScope() string {
	return m.screen.scope()
}

// deviceItems lists the device menu: every volume, then the abort entry.
func (m Model) deviceItems() []string {
	items := make([]string, 0, len(m.volumes)+1)
	items = append(items, m.volumes...)
	return append(items, abortLabel)
}

func (m Model) menuLen() int {
	if m.screen == screenDevice {
		return len(m.deviceItems())
	}
	return len(mainMenu)
}

type executedMsg struct {
	report transfer.Report
	err    error
}

func executeCmd(e *transfer.Engine) tea.Cmd {
	return func() tea.Msg {
		r, err := e.Execute()
		return executedMsg{report: r, err: err}
	}
}
