package driven

import (
	"context"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// ThreadQuery controls what ShowThread returns.
type ThreadQuery struct {
	IncludeComments bool
	IncludeAuthor   bool
	CombineComments bool
	NewestFirst     bool
	InitMissing     bool
}

// CommentAPI defines the driven port for the remote comment actions.
// A field-keyed rejection is returned as *model.ValidationError.
type CommentAPI interface {
	CreateComment(ctx context.Context, req model.CreateCommentRequest) error
	UpdateComment(ctx context.Context, req model.UpdateCommentRequest) error
	DeleteComment(ctx context.Context, req model.DeleteCommentRequest) error
	ApproveComment(ctx context.Context, id string) error
	DraftComment(ctx context.Context, id string) error
	BlockSubject(ctx context.Context, subject model.Subject) error
	UnblockSubject(ctx context.Context, subject model.Subject) error
}

// ThreadReader defines the driven port for reading a thread for display.
// It is separate from CommentAPI because the controller never reads.
type ThreadReader interface {
	ShowThread(ctx context.Context, subject model.Subject, q ThreadQuery) (*model.ThreadDetail, error)
	// IsBlocked reports whether new comments on the subject are blocked.
	IsBlocked(ctx context.Context, subject model.Subject) (bool, error)
}
