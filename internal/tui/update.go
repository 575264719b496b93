package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jask/antani/internal/picker"
	"github.com/jask/antani/internal/transfer"
	"github.com/jask/antani/internal/volume"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case executedMsg:
		return m.finishExecution(msg)
	case tea.KeyMsg:
		if m.screen == screenExecuting {
			return m, nil
		}
		b := m.keys.Lookup(msg.String(), m.ActiveScope())
		if b == nil {
			return m, nil
		}
		if b.Action == actionQuit {
			return m.quit()
		}
		switch m.screen {
		case screenMenu, screenDevice:
			return m.updateMenu(b.Action)
		case screenPicker:
			return m.updatePicker(b.Action)
		case screenPrompt:
			return m.updatePrompt(b.Action)
		case screenResult:
			if b.Action == actionConfirm {
				m.toMainMenu()
			}
			return m, nil
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if err := m.engine.Cancel(); err != nil {
		m.log.WithError(err).Warn("cancel on quit failed")
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Model) toMainMenu() {
	m.screen = screenMenu
	m.cursor = 0
	m.display.reset()
}

func (m Model) updateMenu(a Action) (tea.Model, tea.Cmd) {
	n := m.menuLen()
	switch a {
	case actionNext:
		m.cursor = (m.cursor + 1) % n
	case actionPrev:
		m.cursor = (m.cursor - 1 + n) % n
	case actionConfirm:
		if m.screen == screenMenu {
			return m.chooseAction()
		}
		return m.chooseDevice()
	}
	return m, nil
}

func (m Model) chooseAction() (tea.Model, tea.Cmd) {
	item := mainMenu[m.cursor]
	if item.quit {
		return m.quit()
	}
	if err := m.engine.Start(item.mode); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("", false)
	m.screen = screenDevice
	m.cursor = 0
	return m, nil
}

func (m Model) chooseDevice() (tea.Model, tea.Cmd) {
	items := m.deviceItems()
	if m.cursor == len(items)-1 {
		if err := m.engine.Cancel(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Aborted.", false)
		m.toMainMenu()
		return m, nil
	}

	root := volume.Root(items[m.cursor])
	if err := m.pk.Open(root, m.engine.PickerDirsOnly()); err != nil {
		m.log.WithFields(logrus.Fields{"volume": root, "error": err}).Warn("cannot open volume")
		m.setStatus(fmt.Sprintf("Cannot open %s: %v", root, err), true)
		return m, nil
	}
	m.setStatus("", false)
	m.display.reset()
	m.pk.Present(&m.display)
	m.screen = screenPicker
	return m, nil
}

var pickerEvents = map[Action]picker.Event{
	actionNext:     picker.MoveNext,
	actionPrev:     picker.MovePrev,
	actionJumpNext: picker.JumpNext,
	actionJumpPrev: picker.JumpPrev,
	actionConfirm:  picker.Confirm,
}

func (m Model) updatePicker(a Action) (tea.Model, tea.Cmd) {
	ev, ok := pickerEvents[a]
	if !ok {
		return m, nil
	}
	out, err := m.pk.Handle(ev)
	if !out.Done() {
		if err != nil {
			m.display.Notify(err.Error())
			m.setStatus(err.Error(), true)
		} else if ev == picker.Confirm {
			m.setStatus("", false)
		}
		m.pk.Present(&m.display)
		return m, nil
	}

	if out.Kind == picker.Aborted {
		m.screen = screenDevice
		m.cursor = 0
		if err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("", false)
		}
		return m, nil
	}
	return m.bindPath(out.Path)
}

// bindPath hands a picked path to the engine and moves to whichever screen
// the engine now waits on.
func (m Model) bindPath(p volume.Path) (tea.Model, tea.Cmd) {
	m.cursor = 0
	if err := m.engine.Choose(p); err != nil {
		m.setStatus(chooseError(err), true)
		m.screen = screenDevice
		return m, nil
	}
	m.setStatus("", false)
	switch m.engine.State() {
	case transfer.Confirming:
		m.screen = screenPrompt
	default:
		m.screen = screenDevice
	}
	return m, nil
}

func chooseError(err error) string {
	switch {
	case errors.Is(err, transfer.ErrSamePath):
		return "Source and destination are the same; pick another folder."
	case errors.Is(err, transfer.ErrOpen):
		return fmt.Sprintf("Cannot open: %v", err)
	default:
		return err.Error()
	}
}

func (m Model) updatePrompt(a Action) (tea.Model, tea.Cmd) {
	var yes bool
	switch a {
	case actionYes:
		yes = true
	case actionNo:
	default:
		return m, nil
	}
	if err := m.engine.Answer(yes); err != nil {
		m.setStatus(chooseError(err), true)
		if m.engine.State() == transfer.AwaitingDestination {
			m.screen = screenDevice
			m.cursor = 0
		}
		return m, nil
	}

	switch m.engine.State() {
	case transfer.Confirming:
		return m, nil
	case transfer.Executing:
		m.screen = screenExecuting
		return m, executeCmd(m.engine)
	default:
		if r, ok := m.engine.LastReport(); ok {
			m.report = r
		}
		m.screen = screenResult
		return m, nil
	}
}

func (m Model) finishExecution(msg executedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.WithError(msg.err).Error("execute failed")
		m.setStatus(msg.err.Error(), true)
		m.toMainMenu()
		return m, nil
	}
	m.report = msg.report
	m.setStatus("", false)
	m.screen = screenResult
	return m, nil
}
