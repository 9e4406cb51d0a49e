package driven

import "github.com/ericfisherdev/threadpanel/internal/domain/model"

// Page defines the driven port for the surface a thread is rendered on.
// Implementations must be safe to call from any goroutine: continuations of
// remote calls invoke it from wherever the call completed.
type Page interface {
	// CurrentPath is the page location without its query string.
	CurrentPath() string
	// Navigate abandons the page and loads path. The next page load is the
	// point where the flash relay is read.
	Navigate(path string)
	// Reload loads the current location again.
	Reload()

	Apply(instructions model.RenderInstructions)
	ShowNotice(notice model.Notice)

	MarkFieldError(field string)
	ClearFieldErrors()
	SetSubmitEnabled(enabled bool)
	ResetCommentForms()
	CloseConfirmations()
}
