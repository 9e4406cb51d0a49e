package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// --- Helper functions ---

var testSubject = model.Subject{ID: "dataset-1", Type: model.SubjectTypePackage}

type controllerFixture struct {
	ctrl    *ThreadController
	api     *fakeAPI
	page    *fakePage
	relay   *memoryRelay
	flash   *FlashService
	changes <-chan ThreadChanged
}

func newControllerFixture(t *testing.T, ajaxReload bool, comments ...model.Comment) *controllerFixture {
	t.Helper()

	api := newFakeAPI()
	page := newFakePage("/dataset/dataset-1?page=2")
	relay := newMemoryRelay()
	flash := NewFlashService(relay, nil)
	broker := NewChangeBroker(16)
	changes, cancel := broker.Subscribe()
	t.Cleanup(cancel)

	ctrl := NewThreadController(
		model.Thread{Subject: testSubject, AjaxReload: ajaxReload},
		api, page, flash, broker,
		NewFormToggler("", "7", "42"),
		nil,
	)
	if len(comments) == 0 {
		comments = []model.Comment{
			{ID: "a", BodyHTML: "<p>first</p>"},
			{ID: "b", BodyHTML: "Hello <b>world</b>"},
			{ID: "c", BodyHTML: "<p>third</p>"},
		}
	}
	ctrl.Bind(comments)

	return &controllerFixture{ctrl: ctrl, api: api, page: page, relay: relay, flash: flash, changes: changes}
}

func countInline(r model.RenderInstructions) (replies, edits int) {
	for _, c := range r.Comments {
		if c.ReplyOpen {
			replies++
		}
		if c.EditInProgress {
			edits++
		}
	}
	return replies, edits
}

// --- Inline reply/edit ---

func TestThreadController_ReplySupersedesPrevious(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ReplyToComment("a")
	f.ctrl.ReplyToComment("b")

	slot := f.ctrl.Slot()
	assert.Equal(t, model.InlineReply, slot.Kind)
	assert.Equal(t, "b", slot.CommentID)

	replies, edits := countInline(f.page.lastApplied())
	assert.Equal(t, 1, replies)
	assert.Equal(t, 0, edits)
	b, _ := f.page.lastApplied().ForComment("b")
	assert.True(t, b.ReplyOpen)
}

func TestThreadController_EditClosesReply(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ReplyToComment("a")
	f.ctrl.EditComment("c")

	replies, edits := countInline(f.page.lastApplied())
	assert.Equal(t, 0, replies)
	assert.Equal(t, 1, edits)
}

func TestThreadController_ThirdGestureClosesPrior(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.EditComment("a")
	f.ctrl.ReplyToComment("b")
	f.ctrl.EditComment("c")

	slot := f.ctrl.Slot()
	assert.Equal(t, model.InlineEdit, slot.Kind)
	assert.Equal(t, "c", slot.CommentID)

	for _, r := range f.page.applied {
		replies, edits := countInline(r)
		assert.LessOrEqual(t, replies+edits, 1)
	}
}

func TestThreadController_EditPrefillsPlainText(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.EditComment("b")

	b, ok := f.page.lastApplied().ForComment("b")
	require.True(t, ok)
	assert.Equal(t, "Hello world", b.EditorText)
	assert.False(t, b.ShowBody)
	assert.True(t, b.ShowSaveAction)
	assert.False(t, b.ShowEditAction)
}

func TestThreadController_CancelRestoresIdle(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.EditComment("a")
	f.ctrl.CancelEdit()
	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)

	f.ctrl.ReplyToComment("a")
	f.ctrl.CancelReply()
	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)

	a, _ := f.page.lastApplied().ForComment("a")
	assert.True(t, a.ShowBody)
	assert.True(t, a.ShowEditAction)
}

func TestThreadController_UnknownCommentIgnored(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ReplyToComment("missing")

	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)
}

func TestThreadController_SaveReplySendsReplyTarget(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ReplyToComment("a")
	f.ctrl.SaveReply(context.Background(), "a", "me too")

	require.Len(t, f.api.created, 1)
	assert.Equal(t, "a", f.api.created[0].ReplyToID)
	assert.Equal(t, "me too", f.api.created[0].Content)
	assert.Equal(t, testSubject, f.api.created[0].Subject)
	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)
}

// --- Reconciliation ---

func TestThreadController_AjaxReloadBroadcastsOnce(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		act  func(*ThreadController)
	}{
		{"create", func(c *ThreadController) { c.SubmitForm(ctx, model.CommentForm{Content: "hi"}) }},
		{"update", func(c *ThreadController) { c.SaveEdit(ctx, "a", "edited") }},
		{"delete", func(c *ThreadController) { c.RemoveComment(ctx, "a") }},
		{"approve", func(c *ThreadController) { c.ApproveComment(ctx, "a") }},
		{"draft", func(c *ThreadController) { c.DraftComment(ctx, "a") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newControllerFixture(t, true)

			tc.act(f.ctrl)

			assert.Len(t, f.changes, 1)
			assert.Empty(t, f.page.navigations)
			assert.Zero(t, f.page.reloads)
		})
	}
}

func TestThreadController_NoAjaxReloadReloads(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t, false)

	f.ctrl.ApproveComment(ctx, "a")
	f.ctrl.DraftComment(ctx, "a")
	f.ctrl.SaveEdit(ctx, "b", "edited")
	f.ctrl.RemoveComment(ctx, "c")

	assert.Equal(t, 4, f.page.reloads)
	assert.Empty(t, f.changes)
	assert.Zero(t, f.page.closedPrompts)
}

func TestThreadController_BlockAlwaysReloads(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t, true)

	f.ctrl.BlockComments(ctx)
	f.ctrl.UnblockComments(ctx)

	assert.Equal(t, 2, f.page.reloads)
	assert.Empty(t, f.changes)
	assert.Equal(t, []model.Operation{model.OpBlock, model.OpUnblock}, f.api.calls)
}

// --- Create outcomes ---

func TestThreadController_CreateSuccessRelaysMessage(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t, false)

	var atNavigation model.FlashMessage
	var held bool
	f.page.onNavigate = func(string) {
		atNavigation, held = f.relay.peek(model.FlashSuccessful)
	}

	f.ctrl.SubmitForm(ctx, model.CommentForm{Content: "hi", SuccessMessage: "Thanks!"})

	require.True(t, held)
	assert.Equal(t, model.FlashMessage{Text: "Thanks!", Category: model.AlertSuccess}, atNavigation)
	assert.Equal(t, []string{"/dataset/dataset-1"}, f.page.navigations)
	assert.Equal(t, 1, f.page.resets)
	assert.True(t, f.api.created[0].CreateThread)

	// Simulated reload: the next page load delivers the notice once.
	next := newFakePage("/dataset/dataset-1")
	assert.Equal(t, 1, f.flash.DeliverTo(ctx, next))
	require.Len(t, next.notices, 1)
	assert.Equal(t, "Thanks!", next.notices[0].Text)
	assert.Equal(t, model.AlertSuccess, next.notices[0].Category)

	_, held = f.relay.peek(model.FlashSuccessful)
	assert.False(t, held)
	assert.Zero(t, f.flash.DeliverTo(ctx, next))
}

func TestThreadController_CreateSuccessWithoutMessage(t *testing.T) {
	f := newControllerFixture(t, false)

	f.ctrl.SubmitForm(context.Background(), model.CommentForm{Content: "hi"})

	_, held := f.relay.peek(model.FlashSuccessful)
	assert.False(t, held)
	assert.Len(t, f.page.navigations, 1)
}

func TestThreadController_CreateSubjectRejection(t *testing.T) {
	f := newControllerFixture(t, false)
	f.api.errs[model.OpCreate] = &model.ValidationError{Fields: []model.FieldError{
		{Field: "subject", Message: "Subject closed"},
	}}

	f.ctrl.SubmitForm(context.Background(), model.CommentForm{Content: "hi"})

	msg, held := f.relay.peek(model.FlashUnsuccessful)
	require.True(t, held)
	assert.Equal(t, model.FlashMessage{Text: "Subject closed", Category: model.AlertError}, msg)
	assert.Equal(t, []string{"/dataset/dataset-1"}, f.page.navigations)
	assert.Equal(t, 1, f.page.resets)
	assert.Empty(t, f.page.fieldErrors)
}

func TestThreadController_CreateSubjectRejectionInAjaxMode(t *testing.T) {
	f := newControllerFixture(t, true)
	f.api.errs[model.OpCreate] = &model.ValidationError{Fields: []model.FieldError{
		{Field: "subject", Message: "Subject closed"},
	}}

	f.ctrl.SubmitForm(context.Background(), model.CommentForm{Content: "hi"})

	assert.Len(t, f.page.navigations, 1)
	assert.Empty(t, f.changes)
}

func TestThreadController_CreateFieldError(t *testing.T) {
	f := newControllerFixture(t, false)
	f.api.errs[model.OpCreate] = &model.ValidationError{Fields: []model.FieldError{
		{Field: "content", Message: "Too short"},
		{Field: "email", Message: "Missing value"},
	}}

	f.ctrl.SubmitForm(context.Background(), model.CommentForm{Content: "x"})

	assert.Empty(t, f.page.navigations)
	assert.Equal(t, []string{"content"}, f.page.fieldErrors)
	assert.Equal(t, 1, f.page.clearedErrors)

	enabled, ok := f.page.lastSubmitEnabled()
	require.True(t, ok)
	assert.True(t, enabled)
	assert.Equal(t, []bool{false, true}, f.page.submitEnabled)
}

func TestThreadController_CreateTransportError(t *testing.T) {
	f := newControllerFixture(t, true)
	f.api.errs[model.OpCreate] = errors.New("connection refused")

	f.ctrl.SubmitForm(context.Background(), model.CommentForm{Content: "x"})

	require.Len(t, f.page.notices, 1)
	assert.Equal(t, model.AlertError, f.page.notices[0].Category)
	enabled, _ := f.page.lastSubmitEnabled()
	assert.True(t, enabled)
	assert.Empty(t, f.page.navigations)
}

// --- Update / moderation failures ---

func TestThreadController_UpdateFailureKeepsEditOpen(t *testing.T) {
	f := newControllerFixture(t, true)
	f.api.errs[model.OpUpdate] = errors.New("boom")

	f.ctrl.EditComment("b")
	f.ctrl.SaveEdit(context.Background(), "b", "changed")

	require.Len(t, f.page.notices, 1)
	notice := f.page.notices[0]
	assert.Equal(t, "b", notice.Scope.CommentID)
	assert.Equal(t, "Comment cannot be updated", notice.Text)
	assert.Equal(t, model.AlertError, notice.Category)

	assert.True(t, f.ctrl.Slot().IsOpenFor(model.InlineEdit, "b"))
	assert.Empty(t, f.changes)
}

func TestThreadController_UpdateSuccessClosesEdit(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.EditComment("b")
	f.ctrl.SaveEdit(context.Background(), "b", "changed")

	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)
	require.Len(t, f.api.updated, 1)
	assert.Equal(t, model.UpdateCommentRequest{ID: "b", Content: "changed"}, f.api.updated[0])
}

func TestThreadController_ModerationFailureShowsNotice(t *testing.T) {
	f := newControllerFixture(t, true)
	f.api.errs[model.OpApprove] = errors.New("forbidden")

	f.ctrl.ApproveComment(context.Background(), "a")

	require.Len(t, f.page.notices, 1)
	assert.Equal(t, "Comment cannot be approved", f.page.notices[0].Text)
	assert.Empty(t, f.page.notices[0].Scope.CommentID)
	assert.Empty(t, f.changes)
}

func TestThreadController_DeleteUsesConfirmationFields(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.OpenConfirmation("a")
	assert.True(t, f.ctrl.SetNotifyAuthor("a", true))
	f.ctrl.SetConfirmationFields("a", "Removed", "Your comment broke the rules")
	f.ctrl.RemoveComment(context.Background(), "a")

	require.Len(t, f.api.deleted, 1)
	assert.Equal(t, model.DeleteCommentRequest{
		ID:      "a",
		Subject: "Removed",
		Body:    "Your comment broke the rules",
	}, f.api.deleted[0])
	assert.Equal(t, 1, f.page.closedPrompts)
	_, open := f.ctrl.Confirmation("a")
	assert.False(t, open)
}

func TestThreadController_NotifyToggleHidesWarning(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.OpenConfirmation("a")
	assert.True(t, f.ctrl.SetNotifyAuthor("a", true))
	assert.False(t, f.ctrl.SetNotifyAuthor("a", false))

	p, ok := f.ctrl.Confirmation("a")
	require.True(t, ok)
	assert.False(t, p.WarningVisible())
}

// --- Forms ---

func TestThreadController_OpenFormCollapsesOthers(t *testing.T) {
	f := newControllerFixture(t, true)

	require.NoError(t, f.ctrl.OpenNewCommentForm("addNewComment_7"))
	f.ctrl.EditComment("a")
	// Editing hides every form.
	f7, _ := f.page.lastApplied().ForForm("7")
	assert.False(t, f7.FormVisible)

	require.NoError(t, f.ctrl.OpenNewCommentForm("addNewComment_7"))
	require.NoError(t, f.ctrl.OpenNewCommentForm("addNewComment_42"))

	last := f.page.lastApplied()
	f7, _ = last.ForForm("7")
	assert.False(t, f7.FormVisible)
	assert.True(t, f7.TriggerShow)
	f42, _ := last.ForForm("42")
	assert.True(t, f42.FormVisible)
	assert.False(t, f42.TriggerShow)

	_, edits := countInline(last)
	assert.Zero(t, edits)
}

func TestThreadController_OpenFormKeepsReply(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ReplyToComment("a")
	require.NoError(t, f.ctrl.OpenNewCommentForm("addNewComment"))

	assert.True(t, f.ctrl.Slot().IsOpenFor(model.InlineReply, "a"))
}

func TestThreadController_OpenUnknownForm(t *testing.T) {
	f := newControllerFixture(t, true)

	err := f.ctrl.OpenNewCommentForm("addNewComment_99")
	assert.ErrorIs(t, err, ErrUnknownForm)
}

// --- Lifecycle and ordering ---

func TestThreadController_TeardownIgnoresGestures(t *testing.T) {
	ctx := context.Background()
	f := newControllerFixture(t, true)

	f.ctrl.Teardown()
	f.ctrl.ReplyToComment("a")
	f.ctrl.ApproveComment(ctx, "a")
	f.ctrl.SubmitForm(ctx, model.CommentForm{Content: "hi"})
	f.ctrl.BlockComments(ctx)

	assert.Zero(t, f.api.callCount())
	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)
}

func TestThreadController_TeardownIgnoresConfirmationEdits(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.Teardown()
	assert.False(t, f.ctrl.SetNotifyAuthor("a", true))
	f.ctrl.SetConfirmationFields("a", "Removed", "Spam")

	_, ok := f.ctrl.Confirmation("a")
	assert.False(t, ok)
}

func TestThreadController_RebindKeepsOpenEdit(t *testing.T) {
	f := newControllerFixture(t, true)
	comments := []model.Comment{
		{ID: "a", BodyHTML: "<p>first</p>"},
		{ID: "b", BodyHTML: "Hello <b>world</b>"},
	}

	f.ctrl.EditComment("b")
	f.ctrl.SetDraft("Hello world!")
	f.ctrl.OpenConfirmation("a")

	f.ctrl.Bind(comments)

	slot := f.ctrl.Slot()
	assert.True(t, slot.IsOpenFor(model.InlineEdit, "b"))
	assert.Equal(t, "Hello world!", slot.Draft)
	_, ok := f.ctrl.Confirmation("a")
	assert.True(t, ok)
	_, edits := countInline(f.page.lastApplied())
	assert.Equal(t, 1, edits)
}

func TestThreadController_RebindDropsVanishedComment(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ReplyToComment("c")
	f.ctrl.OpenConfirmation("c")

	f.ctrl.Bind([]model.Comment{{ID: "a"}, {ID: "b"}})

	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)
	_, ok := f.ctrl.Confirmation("c")
	assert.False(t, ok)
}

func TestThreadController_BindAfterTeardownStartsClean(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.EditComment("a")
	f.ctrl.Teardown()
	f.ctrl.Bind([]model.Comment{{ID: "a"}, {ID: "b"}})

	assert.Equal(t, model.InlineNone, f.ctrl.Slot().Kind)
}

func TestThreadController_StaleResponseDiscarded(t *testing.T) {
	f := newControllerFixture(t, true)

	started := make(chan struct{})
	release := make(chan struct{})
	first := true
	f.api.onUpdate = func(_ context.Context, req model.UpdateCommentRequest) error {
		if req.Content == "old" && first {
			first = false
			close(started)
			<-release
			return errors.New("late failure")
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.ctrl.SaveEdit(context.Background(), "a", "old")
	}()
	<-started

	f.ctrl.SaveEdit(context.Background(), "a", "new")
	close(release)
	<-done

	assert.Empty(t, f.page.notices)
	assert.Len(t, f.changes, 1)
}

func TestThreadController_CallsCarryRequestID(t *testing.T) {
	f := newControllerFixture(t, true)

	f.ctrl.ApproveComment(context.Background(), "a")
	f.ctrl.ApproveComment(context.Background(), "b")

	require.Len(t, f.api.requestIDs, 2)
	assert.NotEmpty(t, f.api.requestIDs[0])
	assert.NotEqual(t, f.api.requestIDs[0], f.api.requestIDs[1])
}
