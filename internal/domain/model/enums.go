package model

// SubjectType is the category of entity a comment thread is attached to.
type SubjectType string

const (
	SubjectTypePackage  SubjectType = "package"
	SubjectTypeResource SubjectType = "resource"
	SubjectTypeUser     SubjectType = "user"
	SubjectTypeGroup    SubjectType = "group"
)

// Valid reports whether t is one of the subject types the portal accepts.
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectTypePackage, SubjectTypeResource, SubjectTypeUser, SubjectTypeGroup:
		return true
	}
	return false
}

// CommentState represents the moderation state of a comment.
type CommentState string

const (
	CommentStateDraft    CommentState = "draft"
	CommentStateApproved CommentState = "approved"
)

// AlertCategory is the CSS-style category attached to a user-facing notice.
type AlertCategory string

const (
	AlertSuccess AlertCategory = "alert-success"
	AlertError   AlertCategory = "alert-error"
	AlertInfo    AlertCategory = "alert-info"
)
