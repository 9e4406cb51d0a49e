package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.svc.Controller

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.flat)-1 {
			m.cursor++
		}
		return m, nil
	case "R":
		m.bridge.Reload()
		return m, nil
	case "i":
		if m.inlineKind == model.InlineNone {
			return m, nil
		}
		m.mode = modeInline
		return m, m.editor.Focus()
	case "c":
		m.pageNotices = nil
		m.commentNotices = make(map[string]model.Notice)
		return m, nil
	case "n":
		return m.openForm("")
	case "N":
		return m.openForm(BottomForm)
	case "b":
		if m.detail == nil {
			return m, nil
		}
		if m.detail.Blocked {
			return m, m.run(ctrl.UnblockComments)
		}
		return m, m.run(ctrl.BlockComments)
	}

	c, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "r":
		ctrl.ReplyToComment(c.ID)
	case "e":
		ctrl.EditComment(c.ID)
	case "x":
		ctrl.OpenConfirmation(c.ID)
		m.confirmID = c.ID
		m.confirmFocus = focusNotify
		m.notify = false
		m.mode = modeConfirm
	case "a":
		return m, m.run(func(ctx context.Context) { ctrl.ApproveComment(ctx, c.ID) })
	case "u":
		return m, m.run(func(ctx context.Context) { ctrl.DraftComment(ctx, c.ID) })
	}
	return m, nil
}

func (m Model) openForm(suffix string) (tea.Model, tea.Cmd) {
	if err := m.svc.Controller.OpenNewCommentForm(model.TriggerID(suffix)); err != nil {
		m.pageNotices = append(m.pageNotices, model.Notice{Text: err.Error(), Category: model.AlertError})
		return m, nil
	}
	// Re-opening the visible form produces no new render; focus it here.
	if f, ok := m.instructions.ForForm(suffix); ok && f.FormVisible {
		m.mode = modeForm
		return m, m.form.Focus()
	}
	return m, nil
}

func (m Model) updateInline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.svc.Controller
	id := m.inlineID

	switch msg.String() {
	case "esc":
		if m.inlineKind == model.InlineEdit {
			ctrl.CancelEdit()
		} else {
			ctrl.CancelReply()
		}
		return m, nil
	case "ctrl+s":
		content := m.editor.Value()
		if m.inlineKind == model.InlineEdit {
			return m, m.run(func(ctx context.Context) { ctrl.SaveEdit(ctx, id, content) })
		}
		return m, m.run(func(ctx context.Context) { ctrl.SaveReply(ctx, id, content) })
	case "tab":
		// Leave the editor open and return to the thread.
		m.editor.Blur()
		m.mode = modeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	ctrl.SetDraft(m.editor.Value())
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		m.form.Blur()
		m.mode = modeBrowse
		return m, nil
	case "ctrl+s":
		if !m.submitEnabled {
			return m, nil
		}
		ctrl := m.svc.Controller
		form := model.CommentForm{Suffix: m.formSuffix, Content: m.form.Value()}
		// Disable locally too so a second ctrl+s before the bridge catches up
		// is ignored.
		m.submitEnabled = false
		return m, m.run(func(ctx context.Context) { ctrl.SubmitForm(ctx, form) })
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.svc.Controller
	id := m.confirmID

	switch msg.String() {
	case "esc":
		ctrl.CancelConfirmation(id)
		m.closeConfirm()
		return m, nil
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = focusCount - 1
		}
		m.confirmFocus = (m.confirmFocus + step) % focusCount
		return m, m.focusConfirm()
	case "enter":
		ctrl.SetConfirmationFields(id, m.subject.Value(), m.body.Value())
		m.subject.Blur()
		m.body.Blur()
		m.mode = modeBrowse
		return m, m.run(func(ctx context.Context) { ctrl.RemoveComment(ctx, id) })
	case " ":
		if m.confirmFocus == focusNotify {
			m.notify = ctrl.SetNotifyAuthor(id, !m.notify)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.confirmFocus {
	case focusSubject:
		m.subject, cmd = m.subject.Update(msg)
	case focusBody:
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusConfirm() tea.Cmd {
	m.subject.Blur()
	m.body.Blur()
	switch m.confirmFocus {
	case focusSubject:
		return m.subject.Focus()
	case focusBody:
		return m.body.Focus()
	}
	return nil
}
