package widget

// Surface is the UI the widget drives: an input field, a transcript, a
// typing indicator and the lead form overlay. Methods may be called from
// any goroutine; implementations hand the change to their own UI loop.
type Surface interface {
	ClearInput()
	SetTyping(visible bool)
	AppendMessage(m Message)
	ShowLeadForm()
	// HideLeadForm closes the overlay and resets the form fields.
	HideLeadForm()
	// Notify shows a blocking notice the user has to acknowledge.
	Notify(text string)
}
