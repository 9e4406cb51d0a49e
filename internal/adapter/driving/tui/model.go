package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/threadpanel/internal/application"
	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// BottomForm is the suffix of the add-comment form below the thread. The
// form above the thread has the empty suffix.
const BottomForm = "bottom"

// threadLoadedMsg carries the result of a thread refresh.
type threadLoadedMsg struct {
	detail *model.ThreadDetail
	err    error
}

// ThreadSink returns the refresh callback that feeds loaded threads into the
// program.
func (b *Bridge) ThreadSink() application.ThreadSink {
	return func(detail *model.ThreadDetail, err error) {
		b.Post(threadLoadedMsg{detail: detail, err: err})
	}
}

type mode int

const (
	modeBrowse mode = iota
	modeInline
	modeForm
	modeConfirm
)

// confirm focus targets, cycled with tab.
const (
	focusNotify = iota
	focusSubject
	focusBody
	focusCount
)

// Services are the application services the page drives.
type Services struct {
	Controller *application.ThreadController
	Refresh    *application.RefreshService
	Flash      *application.FlashService
}

// Model is the Bubble Tea model of one thread page.
type Model struct {
	ctx    context.Context
	thread model.Thread
	bridge *Bridge
	svc    Services

	width   int
	height  int
	spinner spinner.Model
	loading bool
	err     error

	detail *model.ThreadDetail
	flat   []model.Comment
	cursor int

	instructions   model.RenderInstructions
	pageNotices    []model.Notice
	commentNotices map[string]model.Notice
	fieldErrors    map[string]bool
	submitEnabled  bool

	// pageLoad is set between a navigation and the load that completes it;
	// the flash relay is read at that point.
	pageLoad bool

	mode mode

	// inline editor for the reply or edit slot
	editor     textarea.Model
	inlineKind model.InlineKind
	inlineID   string

	form       textarea.Model
	formOpen   bool
	formSuffix string

	confirmID    string
	confirmFocus int
	notify       bool
	subject      textinput.Model
	body         textinput.Model
}

// NewModel creates the page model. ctx bounds every remote call the page
// starts.
func NewModel(ctx context.Context, thread model.Thread, bridge *Bridge, svc Services) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	editor := textarea.New()
	editor.Placeholder = "Write a reply..."
	editor.SetHeight(4)

	form := textarea.New()
	form.Placeholder = "Add a comment..."
	form.SetHeight(4)

	subject := textinput.New()
	subject.Placeholder = "Subject"
	body := textinput.New()
	body.Placeholder = "Message to the author"

	return Model{
		ctx:            ctx,
		thread:         thread,
		bridge:         bridge,
		svc:            svc,
		spinner:        s,
		loading:        true,
		pageLoad:       true,
		commentNotices: make(map[string]model.Notice),
		fieldErrors:    make(map[string]bool),
		submitEnabled:  true,
		editor:         editor,
		form:           form,
		subject:        subject,
		body:           body,
	}
}

// Init starts the spinner. The first thread load comes from the refresh
// service through the bridge.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeInline:
			return m.updateInline(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width-8, 20))
		m.form.SetWidth(max(msg.Width-4, 20))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case threadLoadedMsg:
		return m.onThreadLoaded(msg)

	case applyMsg:
		return m.onApply(msg.instructions)

	case noticeMsg:
		if msg.notice.Scope.CommentID == "" {
			m.pageNotices = append(m.pageNotices, msg.notice)
		} else {
			m.commentNotices[msg.notice.Scope.CommentID] = msg.notice
		}

	case navigateMsg, reloadMsg:
		return m.startPageLoad()

	case fieldErrorMsg:
		m.fieldErrors[msg.field] = true

	case clearFieldErrorsMsg:
		m.fieldErrors = make(map[string]bool)

	case submitEnabledMsg:
		m.submitEnabled = msg.enabled

	case resetFormsMsg:
		m.form.Reset()

	case closeConfirmationsMsg:
		m.closeConfirm()
	}

	return m, nil
}

// startPageLoad unloads the page and loads it again.
func (m Model) startPageLoad() (tea.Model, tea.Cmd) {
	m.svc.Controller.Teardown()
	m.pageLoad = true
	m.loading = true
	m.pageNotices = nil
	m.commentNotices = make(map[string]model.Notice)
	m.fieldErrors = make(map[string]bool)
	m.submitEnabled = true
	m.form.Reset()
	m.closeConfirm()
	m.leaveEditors()

	refresh := m.svc.Refresh
	ctx := m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		if err := refresh.RefreshNow(ctx); err != nil {
			return threadLoadedMsg{err: err}
		}
		return nil
	})
}

func (m Model) onThreadLoaded(msg threadLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	m.detail = msg.detail
	m.flat = msg.detail.Flatten()
	if m.cursor >= len(m.flat) {
		m.cursor = max(len(m.flat)-1, 0)
	}
	// Bind keeps an open reply or edit box across a background refresh.
	m.svc.Controller.Bind(m.flat)

	if !m.pageLoad {
		return m, nil
	}
	m.pageLoad = false
	flash, bridge, ctx := m.svc.Flash, m.bridge, m.ctx
	return m, func() tea.Msg {
		flash.DeliverTo(ctx, bridge)
		return nil
	}
}

// onApply takes a render decision and moves keyboard focus to whatever inline
// editor or form it opened.
func (m Model) onApply(in model.RenderInstructions) (tea.Model, tea.Cmd) {
	m.instructions = in
	var cmds []tea.Cmd

	kind, id, text := model.InlineNone, "", ""
	for _, c := range in.Comments {
		switch {
		case c.EditInProgress:
			kind, id, text = model.InlineEdit, c.CommentID, c.EditorText
		case c.ReplyOpen:
			kind, id, text = model.InlineReply, c.CommentID, c.ReplyText
		}
	}

	switch {
	case kind == model.InlineNone:
		if m.mode == modeInline {
			m.leaveEditors()
		}
		m.inlineKind, m.inlineID = model.InlineNone, ""
	case kind != m.inlineKind || id != m.inlineID:
		m.inlineKind, m.inlineID = kind, id
		m.editor.SetValue(text)
		if kind == model.InlineEdit {
			m.editor.Placeholder = "Edit comment..."
		} else {
			m.editor.Placeholder = "Write a reply..."
		}
		m.form.Blur()
		m.mode = modeInline
		cmds = append(cmds, m.editor.Focus())
	}

	visible, open := "", false
	for _, f := range in.Forms {
		if f.FormVisible {
			visible, open = f.Suffix, true
		}
	}
	switch {
	case !open:
		if m.mode == modeForm {
			m.form.Blur()
			m.mode = modeBrowse
		}
	case (!m.formOpen || visible != m.formSuffix) && kind == model.InlineNone:
		m.mode = modeForm
		cmds = append(cmds, m.form.Focus())
	}
	m.formOpen, m.formSuffix = open, visible

	return m, tea.Batch(cmds...)
}

func (m *Model) leaveEditors() {
	m.editor.Blur()
	m.form.Blur()
	if m.mode == modeInline || m.mode == modeForm {
		m.mode = modeBrowse
	}
}

func (m *Model) closeConfirm() {
	m.confirmID = ""
	m.notify = false
	m.subject.Reset()
	m.body.Reset()
	m.subject.Blur()
	m.body.Blur()
	if m.mode == modeConfirm {
		m.mode = modeBrowse
	}
}

func (m Model) selected() (model.Comment, bool) {
	if m.cursor < 0 || m.cursor >= len(m.flat) {
		return model.Comment{}, false
	}
	return m.flat[m.cursor], true
}

// run starts a controller call off the event loop. The controller reports the
// outcome through the bridge.
func (m Model) run(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}
