package model

// InlineKind is the transient inline UI a comment can have open.
type InlineKind int

const (
	InlineNone InlineKind = iota
	InlineReply
	InlineEdit
)

func (k InlineKind) String() string {
	switch k {
	case InlineReply:
		return "reply"
	case InlineEdit:
		return "edit"
	default:
		return "none"
	}
}

// InlineSlot is the single thread-wide inline state. At most one comment can
// hold it, so at most one reply box and one edit box exist at any time.
type InlineSlot struct {
	Kind      InlineKind
	CommentID string
	// Draft is the editor text. For an edit it starts as the comment's plain
	// text body.
	Draft string
}

// IsOpenFor reports whether the slot holds kind for the given comment.
func (s InlineSlot) IsOpenFor(kind InlineKind, commentID string) bool {
	return s.Kind == kind && s.CommentID == commentID
}
