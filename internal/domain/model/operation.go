package model

// Operation names one of the remote mutations a thread page can issue.
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpApprove Operation = "approve"
	OpDraft   Operation = "draft"
	OpBlock   Operation = "block"
	OpUnblock Operation = "unblock"
)

var actionNames = map[Operation]string{
	OpCreate:  "comments_comment_create",
	OpUpdate:  "comments_comment_update",
	OpDelete:  "comments_comment_delete",
	OpApprove: "comments_comment_approve",
	OpDraft:   "comments_comment_draft",
	OpBlock:   "comments_blocked_entity_create",
	OpUnblock: "comments_blocked_entity_delete",
}

// ActionName returns the portal action the operation is submitted as.
func (o Operation) ActionName() string {
	return actionNames[o]
}

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	_, ok := actionNames[o]
	return ok
}

// CreateCommentRequest is the payload of OpCreate.
type CreateCommentRequest struct {
	Subject        Subject
	Content        string
	ReplyToID      string
	Email          string
	Username       string
	Consent        string
	URL            string
	CreateThread   bool
	SuccessMessage string
}

// UpdateCommentRequest is the payload of OpUpdate.
type UpdateCommentRequest struct {
	ID      string
	Content string
}

// DeleteCommentRequest is the payload of OpDelete. Subject and Body carry the
// moderation notice typed into the comment's confirmation prompt.
type DeleteCommentRequest struct {
	ID      string
	Subject string
	Body    string
}
