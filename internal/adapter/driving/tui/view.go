package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ericfisherdev/threadpanel/internal/application"
	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// View renders the page.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	for _, n := range m.pageNotices {
		b.WriteString(viewNotice(n))
		b.WriteString("\n")
	}

	if m.loading && m.detail == nil {
		fmt.Fprintf(&b, "%s Loading thread...\n", m.spinner.View())
		return b.String()
	}
	if m.err != nil {
		b.WriteString(alertStyle(model.AlertError).Render("Thread could not be loaded: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.viewForm(""))

	if len(m.flat) == 0 && m.detail != nil {
		b.WriteString(metaStyle.Render("No comments yet."))
		b.WriteString("\n")
	}
	for i, c := range m.flat {
		b.WriteString(m.viewComment(i, c))
	}

	b.WriteString(m.viewForm(BottomForm))
	b.WriteString("\n")
	b.WriteString(navStyle.Render(m.help()))
	return b.String()
}

func (m Model) viewHeader() string {
	title := fmt.Sprintf("%s %s", m.thread.Subject.Type, m.thread.Subject.ID)
	line := titleStyle.Render(title)
	if m.detail != nil && m.detail.Blocked {
		line += "  " + blockedStyle.Render("comments blocked")
	}
	if m.loading {
		line += "  " + m.spinner.View()
	}
	return line + "\n" + metaStyle.Render(m.bridge.CurrentPath())
}

func viewNotice(n model.Notice) string {
	text := n.Text
	if n.Title != "" {
		text = n.Title + ": " + text
	}
	return alertStyle(n.Category).Render(text)
}

func (m Model) viewComment(i int, c model.Comment) string {
	var b strings.Builder
	indent := strings.Repeat("  ", c.Depth)
	render, ok := m.instructions.ForComment(c.ID)
	if !ok {
		render = model.CommentRender{CommentID: c.ID, ShowBody: true, ShowEditAction: true}
	}

	marker := "  "
	if i == m.cursor {
		marker = cursorStyle.Render("> ")
	}

	head := authorStyle.Render(c.AuthorName) + " " + metaStyle.Render(c.CreatedAt.Format("2006-01-02 15:04"))
	if c.ModifiedAt != nil {
		head += metaStyle.Render(" (edited)")
	}
	if !c.IsApproved() {
		head += " " + draftStyle.Render("[draft]")
	}
	b.WriteString(marker + indent + head + "\n")

	if render.ShowBody {
		for _, line := range strings.Split(application.ExtractPlainText(c.BodyHTML), "\n") {
			b.WriteString("  " + indent + "  " + line + "\n")
		}
	}
	if render.EditInProgress {
		b.WriteString(indentBlock(m.editor.View(), "  "+indent+"  "))
		b.WriteString("  " + indent + "  " + navStyle.Render("ctrl+s save • esc cancel") + "\n")
	}
	if render.ReplyOpen {
		b.WriteString("  " + indent + "  " + metaStyle.Render("Reply") + "\n")
		b.WriteString(indentBlock(m.editor.View(), "  "+indent+"  "))
	}
	if n, ok := m.commentNotices[c.ID]; ok {
		b.WriteString(indentBlock(viewNotice(n), "  "+indent+"  "))
	}
	if m.confirmID == c.ID {
		b.WriteString(indentBlock(m.viewConfirm(), "  "+indent+"  "))
	}
	return b.String()
}

func (m Model) viewConfirm() string {
	check := "[ ]"
	if m.notify {
		check = "[x]"
	}
	lines := []string{
		"Delete this comment? enter confirm • esc cancel",
		focusMark(m.confirmFocus == focusNotify) + check + " Notify the author",
	}
	if m.notify {
		lines = append(lines,
			draftStyle.Render("The author will receive the message below."),
			focusMark(m.confirmFocus == focusSubject)+m.subject.View(),
			focusMark(m.confirmFocus == focusBody)+m.body.View(),
		)
	}
	return promptStyle.Render(strings.Join(lines, "\n"))
}

func focusMark(focused bool) string {
	if focused {
		return cursorStyle.Render("> ")
	}
	return "  "
}

func (m Model) viewForm(suffix string) string {
	f, ok := m.instructions.ForForm(suffix)
	if !ok {
		return ""
	}
	key := "n"
	if suffix == BottomForm {
		key = "N"
	}
	if f.TriggerShow {
		return navStyle.Render(fmt.Sprintf("[%s] Add comment", key)) + "\n"
	}
	if !f.FormVisible {
		return ""
	}

	lines := []string{m.form.View()}
	for _, field := range slices.Sorted(maps.Keys(m.fieldErrors)) {
		lines = append(lines, fieldErrorStyle.Render(field+" is not valid"))
	}
	hint := "ctrl+s send • esc leave"
	if !m.submitEnabled {
		hint = m.spinner.View() + " sending..."
	}
	lines = append(lines, navStyle.Render(hint))
	return formStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func (m Model) help() string {
	switch m.mode {
	case modeInline:
		return "ctrl+s save • esc cancel • tab back to thread"
	case modeForm:
		return "ctrl+s send • esc back to thread"
	case modeConfirm:
		return "tab next field • space toggle • enter delete • esc cancel"
	}
	block := "b block"
	if m.detail != nil && m.detail.Blocked {
		block = "b unblock"
	}
	return "j/k move • r reply • e edit • i editor • x delete • a approve • u draft • n/N add • " + block + " • R reload • c clear • q quit"
}

func indentBlock(s, prefix string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}
