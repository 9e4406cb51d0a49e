package model

// FlashSlot names one of the two independent relay entries.
type FlashSlot string

const (
	FlashSuccessful   FlashSlot = "successful"
	FlashUnsuccessful FlashSlot = "unsuccessful"
)

// FlashSlots lists the slots in the order they are delivered on page load.
var FlashSlots = []FlashSlot{FlashUnsuccessful, FlashSuccessful}

// DefaultCategory is used when a slot holds a message without a category.
func (s FlashSlot) DefaultCategory() AlertCategory {
	if s == FlashUnsuccessful {
		return AlertError
	}
	return AlertInfo
}

// MessageKey and CategoryKey are the persisted key names of the slot.
func (s FlashSlot) MessageKey() string {
	return string(s) + "_sending_comment"
}

func (s FlashSlot) CategoryKey() string {
	return string(s) + "_sending_comment_category"
}

// FlashMessage is a one-shot notice handed across a navigation.
type FlashMessage struct {
	Text     string
	Category AlertCategory
}

// NoticeScope says where a notice is rendered.
type NoticeScope struct {
	// CommentID is empty for the page-level flash region.
	CommentID string
}

// Notice is a dismissible message rendered by the page.
type Notice struct {
	Scope    NoticeScope
	Title    string
	Text     string
	Category AlertCategory
}
