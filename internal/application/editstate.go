package application

import "github.com/ericfisherdev/threadpanel/internal/domain/model"

// FormState is the visibility of one add-comment form.
type FormState struct {
	Suffix  string
	Visible bool
}

// ComputeEditToggleState decides what every comment and add-comment form of a
// thread should show for the given inline slot. It has no side effects; the
// page applies the result.
func ComputeEditToggleState(slot model.InlineSlot, commentIDs []string, forms []FormState) model.RenderInstructions {
	out := model.RenderInstructions{
		Comments: make([]model.CommentRender, 0, len(commentIDs)),
		Forms:    make([]model.FormRender, 0, len(forms)),
	}

	for _, id := range commentIDs {
		r := model.CommentRender{
			CommentID:      id,
			ShowBody:       true,
			ShowEditAction: true,
		}
		switch {
		case slot.IsOpenFor(model.InlineEdit, id):
			r.ShowBody = false
			r.ShowEditAction = false
			r.ShowSaveAction = true
			r.EditInProgress = true
			r.EditorText = slot.Draft
		case slot.IsOpenFor(model.InlineReply, id):
			r.ReplyOpen = true
			r.ReplyText = slot.Draft
		}
		out.Comments = append(out.Comments, r)
	}

	for _, f := range forms {
		out.Forms = append(out.Forms, model.FormRender{
			Suffix:      f.Suffix,
			FormVisible: f.Visible,
			TriggerShow: !f.Visible,
		})
	}

	return out
}
