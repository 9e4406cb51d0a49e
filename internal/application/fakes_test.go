package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// --- Mock implementations shared by the controller tests ---

type fakeAPI struct {
	mu    sync.Mutex
	calls []model.Operation

	created []model.CreateCommentRequest
	updated []model.UpdateCommentRequest
	deleted []model.DeleteCommentRequest

	requestIDs []string

	errs     map[model.Operation]error
	onUpdate func(ctx context.Context, req model.UpdateCommentRequest) error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{errs: make(map[model.Operation]error)}
}

func (f *fakeAPI) record(op model.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeAPI) CreateComment(_ context.Context, req model.CreateCommentRequest) error {
	f.mu.Lock()
	f.created = append(f.created, req)
	f.mu.Unlock()
	return f.record(model.OpCreate)
}

func (f *fakeAPI) UpdateComment(ctx context.Context, req model.UpdateCommentRequest) error {
	f.mu.Lock()
	f.updated = append(f.updated, req)
	hook := f.onUpdate
	f.mu.Unlock()
	if hook != nil {
		_ = f.record(model.OpUpdate)
		return hook(ctx, req)
	}
	return f.record(model.OpUpdate)
}

func (f *fakeAPI) DeleteComment(_ context.Context, req model.DeleteCommentRequest) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, req)
	f.mu.Unlock()
	return f.record(model.OpDelete)
}

func (f *fakeAPI) ApproveComment(ctx context.Context, _ string) error {
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, driven.RequestID(ctx))
	f.mu.Unlock()
	return f.record(model.OpApprove)
}

func (f *fakeAPI) DraftComment(_ context.Context, _ string) error {
	return f.record(model.OpDraft)
}

func (f *fakeAPI) BlockSubject(_ context.Context, _ model.Subject) error {
	return f.record(model.OpBlock)
}

func (f *fakeAPI) UnblockSubject(_ context.Context, _ model.Subject) error {
	return f.record(model.OpUnblock)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePage struct {
	mu   sync.Mutex
	path string

	navigations   []string
	reloads       int
	applied       []model.RenderInstructions
	notices       []model.Notice
	fieldErrors   []string
	clearedErrors int
	submitEnabled []bool
	resets        int
	closedPrompts int

	onNavigate func(path string)
}

func newFakePage(path string) *fakePage {
	return &fakePage{path: path}
}

func (p *fakePage) CurrentPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

func (p *fakePage) Navigate(path string) {
	p.mu.Lock()
	p.navigations = append(p.navigations, path)
	hook := p.onNavigate
	p.mu.Unlock()
	if hook != nil {
		hook(path)
	}
}

func (p *fakePage) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++
}

func (p *fakePage) Apply(instructions model.RenderInstructions) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applied = append(p.applied, instructions)
}

func (p *fakePage) ShowNotice(notice model.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
}

func (p *fakePage) MarkFieldError(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fieldErrors = append(p.fieldErrors, field)
}

func (p *fakePage) ClearFieldErrors() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearedErrors++
	p.fieldErrors = nil
}

func (p *fakePage) SetSubmitEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitEnabled = append(p.submitEnabled, enabled)
}

func (p *fakePage) ResetCommentForms() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
}

func (p *fakePage) CloseConfirmations() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closedPrompts++
}

func (p *fakePage) lastApplied() model.RenderInstructions {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.applied) == 0 {
		return model.RenderInstructions{}
	}
	return p.applied[len(p.applied)-1]
}

func (p *fakePage) lastSubmitEnabled() (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.submitEnabled) == 0 {
		return false, false
	}
	return p.submitEnabled[len(p.submitEnabled)-1], true
}

type memoryRelay struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryRelay() *memoryRelay {
	return &memoryRelay{entries: make(map[string]string)}
}

func (r *memoryRelay) Set(_ context.Context, slot model.FlashSlot, msg model.FlashMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[slot.MessageKey()] = msg.Text
	r.entries[slot.CategoryKey()] = string(msg.Category)
	return nil
}

func (r *memoryRelay) TakeAndClear(_ context.Context, slot model.FlashSlot) (*model.FlashMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.entries[slot.MessageKey()]
	if !ok {
		return nil, nil
	}
	category := r.entries[slot.CategoryKey()]
	delete(r.entries, slot.MessageKey())
	delete(r.entries, slot.CategoryKey())
	return &model.FlashMessage{Text: text, Category: model.AlertCategory(category)}, nil
}

func (r *memoryRelay) peek(slot model.FlashSlot) (model.FlashMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.entries[slot.MessageKey()]
	return model.FlashMessage{Text: text, Category: model.AlertCategory(r.entries[slot.CategoryKey()])}, ok
}
