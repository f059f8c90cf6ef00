package eventsocket

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"
)

// Recognized header keys. Keys are stored lowercased.
const (
	HeaderContentLength = "content-length"
	HeaderContentType   = "content-type"
	HeaderReplyText     = "reply-text"
	HeaderEventName     = "event-name"
)

// Content types sent by the engine.
const (
	ContentTypeAuthRequest      = "auth/request"
	ContentTypeCommandReply     = "command/reply"
	ContentTypeAPIResponse      = "api/response"
	ContentTypeEventPlain       = "text/event-plain"
	ContentTypeDisconnectNotice = "text/disconnect-notice"
)

// Header holds frame headers. Keys are case-insensitive and stored
// lowercased; the protocol is extensible so unknown keys are kept.
type Header map[string]string

// Get returns the value for key, or "" if absent.
func (h Header) Get(key string) string {
	return h[strings.ToLower(key)]
}

// Lookup returns the value for key and whether it was present.
func (h Header) Lookup(key string) (string, bool) {
	v, ok := h[strings.ToLower(key)]
	return v, ok
}

// Set stores value under the normalized form of key.
func (h Header) Set(key, value string) {
	h[strings.ToLower(strings.TrimSpace(key))] = value
}

// Frame is one protocol message: a header block plus an optional body.
type Frame struct {
	Header Header
	Body   string
}

// ContentLength returns the declared body length, or 0 when the header is
// missing or not a non-negative integer.
func (f *Frame) ContentLength() int {
	return contentLength(f.Header)
}

// ContentType returns the content-type header.
func (f *Frame) ContentType() string {
	return f.Header.Get(HeaderContentType)
}

// ReplyText returns the reply-text header.
func (f *Frame) ReplyText() string {
	return f.Header.Get(HeaderReplyText)
}

// EventName returns the event name of the frame. Plain events carry their
// own header block inside the body, so when the outer headers lack an
// event-name the body is consulted.
func (f *Frame) EventName() string {
	if name := f.Header.Get(HeaderEventName); name != "" {
		return name
	}
	if f.ContentType() != ContentTypeEventPlain || f.Body == "" {
		return ""
	}
	block := []byte(f.Body)
	if end, _ := headerEnd(block); end >= 0 {
		block = block[:end]
	}
	name := parseHeader(block).Get(HeaderEventName)
	if decoded, err := url.QueryUnescape(name); err == nil {
		return decoded
	}
	return name
}

// IsAuthRequest reports whether f is the greeting sent on connect.
func (f *Frame) IsAuthRequest() bool {
	return f.ContentType() == ContentTypeAuthRequest
}

// IsCommandReply reports whether f answers a non-api command.
func (f *Frame) IsCommandReply() bool {
	return f.ContentType() == ContentTypeCommandReply
}

// IsAPIResponse reports whether f answers an api command.
func (f *Frame) IsAPIResponse() bool {
	return f.ContentType() == ContentTypeAPIResponse
}

// IsEvent reports whether f carries a subscribed event.
func (f *Frame) IsEvent() bool {
	return strings.HasPrefix(f.ContentType(), "text/event-")
}

// IsDisconnectNotice reports whether the engine is about to hang up.
func (f *Frame) IsDisconnectNotice() bool {
	return f.ContentType() == ContentTypeDisconnectNotice
}

var (
	sepLF   = []byte("\n\n")
	sepCRLF = []byte("\r\n\r\n")
)

// Decoder incrementally assembles frames from a byte stream. Bytes past
// the end of a completed frame stay buffered for the next call.
//
// A frame without a content-length takes every byte buffered after its
// header block as its body. Replies that carry their payload in a header
// (reply-text) rely on this; a body split across reads is truncated.
type Decoder struct {
	buf []byte
}

// Feed buffers p and returns the next complete frame, if any.
func (d *Decoder) Feed(p []byte) (*Frame, bool) {
	d.buf = append(d.buf, p...)
	return d.Next()
}

// Next returns the next complete frame from already buffered bytes.
func (d *Decoder) Next() (*Frame, bool) {
	end, sepLen := headerEnd(d.buf)
	if end < 0 {
		return nil, false
	}

	header := parseHeader(d.buf[:end])
	rest := d.buf[end+sepLen:]

	var body []byte
	if n := contentLength(header); n > 0 {
		if len(rest) < n {
			return nil, false
		}
		body, rest = rest[:n], rest[n:]
	} else {
		body, rest = rest, nil
	}

	frame := &Frame{Header: header, Body: string(body)}
	if len(rest) == 0 {
		d.buf = d.buf[:0]
	} else {
		d.buf = append([]byte(nil), rest...)
	}
	return frame, true
}

// Buffered returns the number of bytes waiting for a complete frame.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset discards any buffered bytes.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}

// headerEnd locates the first blank line. It returns the offset of the
// separator and its length, or -1 if none is buffered yet.
func headerEnd(buf []byte) (int, int) {
	lf := bytes.Index(buf, sepLF)
	crlf := bytes.Index(buf, sepCRLF)
	switch {
	case lf < 0 && crlf < 0:
		return -1, 0
	case crlf < 0 || (lf >= 0 && lf < crlf):
		return lf, len(sepLF)
	default:
		return crlf, len(sepCRLF)
	}
}

func parseHeader(block []byte) Header {
	header := Header{}
	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		header[key] = strings.TrimSpace(value)
	}
	return header
}

func contentLength(h Header) int {
	n, err := strconv.Atoi(strings.TrimSpace(h[HeaderContentLength]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
