// Package tui implements the thread page as a Bubble Tea program.
package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Page = (*Bridge)(nil)

// Page messages. Each Page call becomes one of these, delivered to Update in
// call order.
type (
	applyMsg              struct{ instructions model.RenderInstructions }
	noticeMsg             struct{ notice model.Notice }
	navigateMsg           struct{ path string }
	reloadMsg             struct{}
	fieldErrorMsg         struct{ field string }
	clearFieldErrorsMsg   struct{}
	submitEnabledMsg      struct{ enabled bool }
	resetFormsMsg         struct{}
	closeConfirmationsMsg struct{}
)

// sender is the part of *tea.Program the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// Bridge is the driven.Page the controller talks to. Calls never block: they
// are queued and forwarded to the program by a single goroutine, because the
// controller invokes the page while holding its own lock.
type Bridge struct {
	mu     sync.Mutex
	path   string
	queue  []tea.Msg
	wake   chan struct{}
	target sender
}

// NewBridge creates a Bridge whose location starts at path.
func NewBridge(path string) *Bridge {
	return &Bridge{
		path: path,
		wake: make(chan struct{}, 1),
	}
}

// Attach sets the program messages are forwarded to. Messages posted before
// Attach are kept and delivered once Run starts.
func (b *Bridge) Attach(target sender) {
	b.mu.Lock()
	b.target = target
	b.mu.Unlock()
	b.signal()
}

// Run forwards queued messages until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}

		for {
			b.mu.Lock()
			if b.target == nil || len(b.queue) == 0 {
				b.mu.Unlock()
				break
			}
			msg := b.queue[0]
			b.queue = b.queue[1:]
			target := b.target
			b.mu.Unlock()

			target.Send(msg)
		}
	}
}

// Post queues an arbitrary message for the program.
func (b *Bridge) Post(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()
	b.signal()
}

func (b *Bridge) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) CurrentPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *Bridge) Navigate(path string) {
	b.mu.Lock()
	b.path = path
	b.mu.Unlock()
	b.Post(navigateMsg{path: path})
}

func (b *Bridge) Reload() { b.Post(reloadMsg{}) }

func (b *Bridge) Apply(instructions model.RenderInstructions) {
	b.Post(applyMsg{instructions: instructions})
}

func (b *Bridge) ShowNotice(notice model.Notice) { b.Post(noticeMsg{notice: notice}) }

func (b *Bridge) MarkFieldError(field string) { b.Post(fieldErrorMsg{field: field}) }

func (b *Bridge) ClearFieldErrors() { b.Post(clearFieldErrorsMsg{}) }

func (b *Bridge) SetSubmitEnabled(enabled bool) { b.Post(submitEnabledMsg{enabled: enabled}) }

func (b *Bridge) ResetCommentForms() { b.Post(resetFormsMsg{}) }

func (b *Bridge) CloseConfirmations() { b.Post(closeConfirmationsMsg{}) }
