package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Page = (*consolePage)(nil)

// consolePage is the page of a one-shot command. It prints notices and
// remembers whether the outcome was a failure so the command can exit
// non-zero. A navigation or reload marks the page for a page load, which
// the command performs once the handler returns.
type consolePage struct {
	mu     sync.Mutex
	out    io.Writer
	path   string
	loads  int
	failed bool
	fields []string
}

func newConsolePage(out io.Writer, path string) *consolePage {
	return &consolePage{out: out, path: path}
}

func (p *consolePage) CurrentPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

func (p *consolePage) Navigate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
	p.loads++
	slog.Debug("page navigated", "path", path)
}

func (p *consolePage) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	slog.Debug("page reloaded", "path", p.path)
}

// pendingLoad reports whether the handler navigated or reloaded the page.
func (p *consolePage) pendingLoad() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads > 0
}

func (p *consolePage) Apply(model.RenderInstructions) {}

func (p *consolePage) ShowNotice(n model.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n.Category == model.AlertError {
		p.failed = true
	}
	printNotice(p.out, n)
}

func (p *consolePage) MarkFieldError(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = true
	p.fields = append(p.fields, field)
}

func (p *consolePage) ClearFieldErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fields = nil
}

func (p *consolePage) SetSubmitEnabled(bool) {}

func (p *consolePage) ResetCommentForms() {}

func (p *consolePage) CloseConfirmations() {}

// outcome reports the command result: an error when a failure notice or a
// field error was shown.
func (p *consolePage) outcome() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case len(p.fields) > 0:
		return fmt.Errorf("portal rejected field %q", p.fields[0])
	case p.failed:
		return errors.New("action failed")
	default:
		return nil
	}
}

func printNotice(out io.Writer, n model.Notice) {
	if n.Title != "" {
		fmt.Fprintf(out, "[%s] %s: %s\n", n.Category, n.Title, n.Text)
		return
	}
	fmt.Fprintf(out, "[%s] %s\n", n.Category, n.Text)
}
