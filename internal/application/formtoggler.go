package application

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// ErrUnknownForm is returned when a trigger refers to a form the page does
// not have.
var ErrUnknownForm = errors.New("unknown add-comment form")

// FormToggler keeps at most one add-comment form visible on the page.
// Forms are identified by the suffix shared by a trigger id and its form id.
type FormToggler struct {
	mu       sync.Mutex
	suffixes []string
	visible  map[string]bool
}

// NewFormToggler creates a toggler for the given form suffixes, all hidden.
func NewFormToggler(suffixes ...string) *FormToggler {
	t := &FormToggler{visible: make(map[string]bool)}
	for _, s := range suffixes {
		t.Register(s)
	}
	return t
}

// Register adds a form. Registering an existing suffix is a no-op.
func (t *FormToggler) Register(suffix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.visible[suffix]; ok {
		return
	}
	t.suffixes = append(t.suffixes, suffix)
	t.visible[suffix] = false
}

// OpenByTrigger opens the form belonging to a trigger element id.
func (t *FormToggler) OpenByTrigger(triggerID string) ([]string, error) {
	return t.Open(model.SuffixOf(triggerID))
}

// Open hides every other visible form and shows the form for suffix. It
// returns the suffixes of the forms it hid.
func (t *FormToggler) Open(suffix string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.visible[suffix]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, model.FormID(suffix))
	}

	var hidden []string
	for _, s := range t.suffixes {
		if s != suffix && t.visible[s] {
			t.visible[s] = false
			hidden = append(hidden, s)
		}
	}
	t.visible[suffix] = true
	return hidden, nil
}

// Close hides the form for suffix.
func (t *FormToggler) Close(suffix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.visible[suffix]; ok {
		t.visible[suffix] = false
	}
}

// HideAll hides every form and so restores every trigger.
func (t *FormToggler) HideAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for s := range t.visible {
		t.visible[s] = false
	}
}

// Visible returns the suffix of the visible form, if any.
func (t *FormToggler) Visible() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.suffixes {
		if t.visible[s] {
			return s, true
		}
	}
	return "", false
}

// States returns the visibility of every form in registration order.
func (t *FormToggler) States() []FormState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]FormState, 0, len(t.suffixes))
	for _, s := range t.suffixes {
		out = append(out, FormState{Suffix: s, Visible: t.visible[s]})
	}
	return out
}
