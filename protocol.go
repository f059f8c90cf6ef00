package eventsocket

import "strings"

// CommandSeparator terminates every outgoing command.
const CommandSeparator = "\n\n"

// Reply markers.
const (
	SuccessMarker = "+OK"
	ErrorMarker   = "-ERR"
)

// Command is an outgoing command line.
type Command struct {
	Verb string
	Args string
}

// Auth creates the authentication command.
func Auth(secret string) Command {
	return Command{Verb: "auth", Args: secret}
}

// API creates a command that runs an engine API command and waits for its
// output.
func API(command string) Command {
	return Command{Verb: "api", Args: command}
}

// Events creates a subscription command. With no names it subscribes to
// every event.
func Events(format string, names ...string) Command {
	if len(names) == 0 {
		names = []string{"ALL"}
	}
	return Command{Verb: "event", Args: format + " " + strings.Join(names, " ")}
}

// SubscribeAll is the subscription used by the console.
var SubscribeAll = Events("plain")

// Line returns the command text without the separator.
func (c Command) Line() string {
	if c.Args == "" {
		return c.Verb
	}
	return c.Verb + " " + c.Args
}

// Bytes returns the wire form of the command.
func (c Command) Bytes() []byte {
	return []byte(c.Line() + CommandSeparator)
}

// String returns the command for display. Secrets are masked.
func (c Command) String() string {
	if c.Verb == "auth" {
		return "auth ****"
	}
	return c.Line()
}

// Reply is the outcome of a command session.
type Reply struct {
	Header Header
	Body   string

	// SessionID identifies the session that produced the reply in logs.
	SessionID string
}

// OK reports whether the engine accepted the command. Only an explicit
// -ERR marker counts as a rejection; api output has no success marker.
func (r *Reply) OK() bool {
	return !strings.HasPrefix(strings.TrimSpace(r.Body), ErrorMarker)
}

// replyBody returns the body of f, falling back to the reply-text header
// when the body is empty.
func replyBody(f *Frame) string {
	if f.Body != "" {
		return f.Body
	}
	if text, ok := f.Header.Lookup(HeaderReplyText); ok {
		return text
	}
	return ""
}

// authText returns the trimmed body, or the reply-text header when the
// body is empty.
func authText(f *Frame) string {
	if text := strings.TrimSpace(f.Body); text != "" {
		return text
	}
	return f.ReplyText()
}

// displayLine renders a streamed frame as a history line.
func displayLine(f *Frame) string {
	if f.Body != "" {
		return strings.TrimSpace(f.EventName() + "\n" + f.Body)
	}
	return strings.TrimSpace(f.EventName() + " " + f.ReplyText())
}
