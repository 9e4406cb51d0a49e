package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

const (
	updateFailedTitle = "An Error Occurred"
	updateFailedText  = "Comment cannot be updated"
)

// ThreadController binds user gestures on one thread to remote operations and
// reconciles their outcome into the page. It owns the thread-wide inline slot
// (one reply box or edit box at a time) and the delete confirmation prompts.
//
// Handlers may be called from any goroutine. Remote calls run without holding
// the lock; their continuations run under it.
type ThreadController struct {
	mu sync.Mutex

	thread  model.Thread
	api     driven.CommentAPI
	page    driven.Page
	flash   *FlashService
	changes *ChangeBroker
	seq     *RequestSequencer
	forms   *FormToggler
	logger  *slog.Logger

	bound    bool
	order    []string
	comments map[string]model.Comment
	slot     model.InlineSlot
	prompts  map[string]model.ConfirmationPrompt
}

// NewThreadController creates a controller for thread. forms may be nil when
// the page has no add-comment forms.
func NewThreadController(
	thread model.Thread,
	api driven.CommentAPI,
	page driven.Page,
	flash *FlashService,
	changes *ChangeBroker,
	forms *FormToggler,
	logger *slog.Logger,
) *ThreadController {
	if forms == nil {
		forms = NewFormToggler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ThreadController{
		thread:   thread,
		api:      api,
		page:     page,
		flash:    flash,
		changes:  changes,
		seq:      NewRequestSequencer(),
		forms:    forms,
		logger:   logger.With("subject_id", thread.Subject.ID, "subject_type", thread.Subject.Type),
		comments: make(map[string]model.Comment),
		prompts:  make(map[string]model.ConfirmationPrompt),
	}
}

// Bind attaches the controller to a rendered thread. After a page load (the
// first Bind, or one following Teardown) inline state starts empty. A rebind
// of an already bound page, as a background refresh does, keeps the open
// reply or edit box and the confirmation prompts of comments that are still
// present.
func (c *ThreadController) Bind(comments []model.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = c.order[:0]
	c.comments = make(map[string]model.Comment, len(comments))
	for _, cm := range comments {
		c.order = append(c.order, cm.ID)
		c.comments[cm.ID] = cm
	}

	if !c.bound {
		c.slot = model.InlineSlot{}
		c.prompts = make(map[string]model.ConfirmationPrompt)
	} else {
		if _, ok := c.comments[c.slot.CommentID]; !ok {
			c.slot = model.InlineSlot{}
		}
		for id := range c.prompts {
			if _, ok := c.comments[id]; !ok {
				delete(c.prompts, id)
			}
		}
	}
	c.bound = true
	c.render()
}

// Teardown detaches the controller, as when the page is unloaded. Later
// gestures are ignored; calls already in flight still complete. Add-comment
// forms return to hidden. No network calls are made.
func (c *ThreadController) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bound = false
	c.forms.HideAll()
}

// Slot returns the current inline slot.
func (c *ThreadController) Slot() model.InlineSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot
}

// Instructions returns the render decision for the current state.
func (c *ThreadController) Instructions() model.RenderInstructions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeEditToggleState(c.slot, c.order, c.forms.States())
}

// --- Inline reply/edit ---

// ReplyToComment opens an empty reply box under comment id, closing any other
// reply or edit box first.
func (c *ThreadController) ReplyToComment(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gesture("reply", id) {
		return
	}
	c.closeInline()
	c.slot = model.InlineSlot{Kind: model.InlineReply, CommentID: id}
	c.render()
}

// CancelReply removes the open reply box, if any.
func (c *ThreadController) CancelReply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound || c.slot.Kind != model.InlineReply {
		return
	}
	c.slot = model.InlineSlot{}
	c.render()
}

// EditComment opens an edit box for comment id pre-filled with the plain text
// of its rendered body. Any other reply or edit box and every add-comment form
// is closed first.
func (c *ThreadController) EditComment(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gesture("edit", id) {
		return
	}
	c.closeInline()
	c.forms.HideAll()

	cm := c.comments[id]
	body := cm.BodyHTML
	if body == "" {
		body = cm.Content
	}
	c.slot = model.InlineSlot{Kind: model.InlineEdit, CommentID: id, Draft: ExtractPlainText(body)}
	c.render()
}

// CancelEdit closes the open edit box and shows the body again.
func (c *ThreadController) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound || c.slot.Kind != model.InlineEdit {
		return
	}
	c.slot = model.InlineSlot{}
	c.render()
}

// SetDraft records the text typed into the open reply or edit box.
func (c *ThreadController) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot.Kind == model.InlineNone {
		return
	}
	c.slot.Draft = text
}

// SaveReply submits a reply to comment id.
func (c *ThreadController) SaveReply(ctx context.Context, id, content string) {
	if !c.isBound() {
		return
	}
	c.saveComment(ctx, "reply:"+id, model.CreateCommentRequest{
		Content:   content,
		ReplyToID: id,
	})
}

// SaveEdit submits the edited text of comment id. On failure the edit box is
// left open with a notice scoped to the comment.
func (c *ThreadController) SaveEdit(ctx context.Context, id, content string) {
	if !c.isBound() {
		return
	}
	req := model.UpdateCommentRequest{ID: id, Content: content}
	c.call(ctx, model.OpUpdate, id,
		func(ctx context.Context) error { return c.api.UpdateComment(ctx, req) },
		func() {
			if c.slot.IsOpenFor(model.InlineEdit, id) {
				c.slot = model.InlineSlot{}
				c.render()
			}
			c.reconcile()
		},
		func(err error) {
			c.page.ShowNotice(model.Notice{
				Scope:    model.NoticeScope{CommentID: id},
				Title:    updateFailedTitle,
				Text:     updateFailedText,
				Category: model.AlertError,
			})
		},
	)
}

// --- Moderation ---

// OpenConfirmation shows the delete confirmation prompt for comment id.
func (c *ThreadController) OpenConfirmation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gesture("confirm", id) {
		return
	}
	if _, ok := c.prompts[id]; !ok {
		c.prompts[id] = model.ConfirmationPrompt{CommentID: id}
	}
}

// SetNotifyAuthor toggles the notification opt-in of comment id's prompt and
// returns whether the warning region is now visible.
func (c *ThreadController) SetNotifyAuthor(id string, notify bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gesture("notify", id) {
		return false
	}
	p := c.prompts[id]
	p.CommentID = id
	p.NotifyAuthor = notify
	c.prompts[id] = p
	return p.WarningVisible()
}

// SetConfirmationFields records the moderation notice typed into comment id's
// prompt.
func (c *ThreadController) SetConfirmationFields(id, subject, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return
	}
	p := c.prompts[id]
	p.CommentID = id
	p.Subject = subject
	p.Body = body
	c.prompts[id] = p
}

// Confirmation returns comment id's prompt.
func (c *ThreadController) Confirmation(id string) (model.ConfirmationPrompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prompts[id]
	return p, ok
}

// CancelConfirmation discards comment id's prompt.
func (c *ThreadController) CancelConfirmation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.prompts, id)
}

// RemoveComment deletes comment id, sending the subject and body typed into
// its confirmation prompt.
func (c *ThreadController) RemoveComment(ctx context.Context, id string) {
	c.mu.Lock()
	if !c.bound {
		c.mu.Unlock()
		return
	}
	p := c.prompts[id]
	c.mu.Unlock()

	req := model.DeleteCommentRequest{ID: id, Subject: p.Subject, Body: p.Body}
	c.call(ctx, model.OpDelete, id,
		func(ctx context.Context) error { return c.api.DeleteComment(ctx, req) },
		func() {
			if c.thread.AjaxReload {
				c.page.CloseConfirmations()
				c.prompts = make(map[string]model.ConfirmationPrompt)
			}
			c.reconcile()
		},
		nil,
	)
}

// ApproveComment publishes comment id.
func (c *ThreadController) ApproveComment(ctx context.Context, id string) {
	if !c.isBound() {
		return
	}
	c.call(ctx, model.OpApprove, id,
		func(ctx context.Context) error { return c.api.ApproveComment(ctx, id) },
		c.reconcile,
		nil,
	)
}

// DraftComment moves comment id back to draft.
func (c *ThreadController) DraftComment(ctx context.Context, id string) {
	if !c.isBound() {
		return
	}
	c.call(ctx, model.OpDraft, id,
		func(ctx context.Context) error { return c.api.DraftComment(ctx, id) },
		c.reconcile,
		nil,
	)
}

// BlockComments blocks new comments on the thread's subject. The page is
// always reloaded on success.
func (c *ThreadController) BlockComments(ctx context.Context) {
	if !c.isBound() {
		return
	}
	c.call(ctx, model.OpBlock, subjectKey,
		func(ctx context.Context) error { return c.api.BlockSubject(ctx, c.thread.Subject) },
		c.page.Reload,
		nil,
	)
}

// UnblockComments lifts the block on the thread's subject. The page is
// always reloaded on success.
func (c *ThreadController) UnblockComments(ctx context.Context) {
	if !c.isBound() {
		return
	}
	c.call(ctx, model.OpUnblock, subjectKey,
		func(ctx context.Context) error { return c.api.UnblockSubject(ctx, c.thread.Subject) },
		c.page.Reload,
		nil,
	)
}

// --- Add-comment forms ---

// OpenNewCommentForm shows the add-comment form opened by triggerID, hiding
// any other form and collapsing an edit in progress.
func (c *ThreadController) OpenNewCommentForm(triggerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return nil
	}
	if c.slot.Kind == model.InlineEdit {
		c.closeInline()
	}
	if _, err := c.forms.OpenByTrigger(triggerID); err != nil {
		return err
	}
	c.render()
	return nil
}

// SubmitForm creates a top-level comment from an add-comment form. The
// submit control stays disabled until the outcome is known.
func (c *ThreadController) SubmitForm(ctx context.Context, form model.CommentForm) {
	if !c.isBound() {
		return
	}
	c.page.SetSubmitEnabled(false)
	c.saveComment(ctx, "form:"+form.Suffix, model.CreateCommentRequest{
		Content:        form.Content,
		ReplyToID:      form.ReplyToID,
		Email:          form.Email,
		Username:       form.Username,
		Consent:        form.Consent,
		URL:            form.URL,
		CreateThread:   true,
		SuccessMessage: form.SuccessMessage,
	})
}

// --- Dispatch ---

const subjectKey = "subject"

func (c *ThreadController) saveComment(ctx context.Context, key string, req model.CreateCommentRequest) {
	req.Subject = c.thread.Subject

	c.call(ctx, model.OpCreate, key,
		func(ctx context.Context) error { return c.api.CreateComment(ctx, req) },
		func() {
			c.page.SetSubmitEnabled(true)
			if req.ReplyToID != "" && c.slot.IsOpenFor(model.InlineReply, req.ReplyToID) {
				c.slot = model.InlineSlot{}
				c.render()
			}
			if c.thread.AjaxReload {
				c.changes.Publish()
				return
			}
			if req.SuccessMessage != "" {
				if err := c.flash.Persist(ctx, model.FlashSuccessful, req.SuccessMessage, model.AlertSuccess); err != nil {
					c.logger.Error("persist success message", "error", err)
				}
			}
			c.page.ResetCommentForms()
			c.page.Navigate(stripQuery(c.page.CurrentPath()))
		},
		func(err error) {
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				c.page.SetSubmitEnabled(true)
				c.notifyFailure(model.OpCreate)
				return
			}
			first, ok := verr.First()
			if !ok {
				c.page.SetSubmitEnabled(true)
				c.notifyFailure(model.OpCreate)
				return
			}
			if first.Field == model.SubjectField && first.Message != "" {
				if err := c.flash.Persist(ctx, model.FlashUnsuccessful, first.Message, model.AlertError); err != nil {
					c.logger.Error("persist failure message", "error", err)
				}
				c.page.ResetCommentForms()
				c.page.Navigate(stripQuery(c.page.CurrentPath()))
				return
			}
			c.page.SetSubmitEnabled(true)
			c.page.ClearFieldErrors()
			c.page.MarkFieldError(first.Field)
		},
	)
}

// call runs one remote operation and routes the outcome. onError nil means the
// operation has no specific failure handling and gets the generic notice.
func (c *ThreadController) call(
	ctx context.Context,
	op model.Operation,
	key string,
	fn func(context.Context) error,
	onSuccess func(),
	onError func(error),
) {
	seq := c.seq.Begin(key)
	requestID := uuid.NewString()
	log := c.logger.With("operation", op, "action", op.ActionName(), "key", key, "request_id", requestID)
	log.Debug("remote call started")

	err := fn(driven.WithRequestID(ctx, requestID))

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seq.Complete(key, seq) {
		log.Info("stale response discarded", "seq", seq)
		return
	}

	if err != nil {
		log.Warn("remote call failed", "error", err)
		if onError != nil {
			onError(err)
		} else {
			c.notifyFailure(op)
		}
		return
	}

	log.Debug("remote call succeeded")
	onSuccess()
}

// reconcile applies a successful mutation: a broadcast in ajax-reload mode,
// a full reload otherwise.
func (c *ThreadController) reconcile() {
	if c.thread.AjaxReload {
		c.changes.Publish()
		return
	}
	c.page.Reload()
}

func (c *ThreadController) notifyFailure(op model.Operation) {
	c.page.ShowNotice(model.Notice{
		Title:    updateFailedTitle,
		Text:     failureText(op),
		Category: model.AlertError,
	})
}

func failureText(op model.Operation) string {
	switch op {
	case model.OpCreate:
		return "Comment cannot be created"
	case model.OpDelete:
		return "Comment cannot be deleted"
	case model.OpApprove:
		return "Comment cannot be approved"
	case model.OpDraft:
		return "Comment cannot be moved to draft"
	case model.OpBlock:
		return "Comments cannot be blocked"
	case model.OpUnblock:
		return "Comments cannot be unblocked"
	default:
		return updateFailedText
	}
}

// gesture reports whether a handler may act on comment id. Must hold c.mu.
func (c *ThreadController) gesture(name, id string) bool {
	if !c.bound {
		return false
	}
	if _, ok := c.comments[id]; !ok {
		c.logger.Warn("gesture on unknown comment", "gesture", name, "comment_id", id)
		return false
	}
	return true
}

func (c *ThreadController) isBound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// closeInline tears down the open reply or edit box, if any. Must hold c.mu.
func (c *ThreadController) closeInline() {
	if c.slot.Kind == model.InlineNone {
		return
	}
	c.slot = model.InlineSlot{}
	c.render()
}

// render pushes the current state to the page. Must hold c.mu.
func (c *ThreadController) render() {
	c.page.Apply(ComputeEditToggleState(c.slot, c.order, c.forms.States()))
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}
