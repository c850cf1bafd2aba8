package conversation

import "fmt"

// FormatError reports user input that does not match the shape expected by
// the current state. Always recoverable: the engine resets the chat to idle
// and replies with the action's fixed format message.
type FormatError struct {
	Action string
	Hint   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s input: expected %s", e.Action, e.Hint)
}
