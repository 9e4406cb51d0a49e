package model

// CommentRender is what the page should show for one comment.
type CommentRender struct {
	CommentID      string
	ShowBody       bool
	ShowEditAction bool
	ShowSaveAction bool
	EditInProgress bool
	// EditorText is set when an edit box is open for this comment.
	EditorText string
	ReplyOpen  bool
	ReplyText  string
}

// FormRender is the visibility of one add-comment form and its trigger.
type FormRender struct {
	Suffix      string
	FormVisible bool
	TriggerShow bool
}

// RenderInstructions is the complete visibility decision for a thread,
// computed from state and applied by the page.
type RenderInstructions struct {
	Comments []CommentRender
	Forms    []FormRender
}

// ForComment returns the instructions for a comment id.
func (r RenderInstructions) ForComment(id string) (CommentRender, bool) {
	for _, c := range r.Comments {
		if c.CommentID == id {
			return c, true
		}
	}
	return CommentRender{}, false
}

// ForForm returns the instructions for a form suffix.
func (r RenderInstructions) ForForm(suffix string) (FormRender, bool) {
	for _, f := range r.Forms {
		if f.Suffix == suffix {
			return f, true
		}
	}
	return FormRender{}, false
}
