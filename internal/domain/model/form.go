package model

import "strings"

const (
	addTriggerPrefix = "addNewComment"
	formPrefix       = "formNewComment"
)

// TriggerID returns the element id of the add-comment trigger for suffix.
func TriggerID(suffix string) string {
	if suffix == "" {
		return addTriggerPrefix
	}
	return addTriggerPrefix + "_" + suffix
}

// FormID returns the element id of the add-comment form for suffix.
func FormID(suffix string) string {
	if suffix == "" {
		return formPrefix
	}
	return formPrefix + "_" + suffix
}

// SuffixOf extracts the suffix from a trigger or form id. The part after the
// first underscore is the suffix; ids without one have the empty suffix.
func SuffixOf(id string) string {
	parts := strings.Split(id, "_")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// CommentForm is the content of an add-comment form at submit time.
type CommentForm struct {
	Suffix         string
	Content        string
	Email          string
	Username       string
	Consent        string
	URL            string
	ReplyToID      string
	SuccessMessage string
}

// ConfirmationPrompt is the per-comment delete confirmation surface.
type ConfirmationPrompt struct {
	CommentID string
	// NotifyAuthor is the notification opt-in checkbox.
	NotifyAuthor bool
	Subject      string
	Body         string
}

// WarningVisible reports whether the notification warning region is shown.
func (p ConfirmationPrompt) WarningVisible() bool {
	return p.NotifyAuthor
}
