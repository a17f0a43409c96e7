package client

import "mercator-hq/interviewer/pkg/proxy/types"

// Surface is where a session renders the conversation.
//
// Calls for one submission are keyed by its request ID. A session never calls
// a Surface concurrently.
type Surface interface {
	// ShowTurn renders a committed user turn.
	ShowTurn(turn types.Turn)

	// ClearInput resets the input area after a submission.
	ClearInput()

	// ShowTyping shows the typing indicator.
	ShowTyping()

	// HideTyping hides the typing indicator.
	HideTyping()

	// ShowPartial replaces the in-progress assistant render for id with
	// content, the full text accumulated so far.
	ShowPartial(id, content string)

	// Finalize marks the in-progress render for id as a committed assistant
	// turn with content.
	Finalize(id, content string)

	// MarkFailed marks the in-progress render for id, if any, as failed.
	MarkFailed(id string)

	// ShowError renders an error bubble.
	ShowError(message string)
}
