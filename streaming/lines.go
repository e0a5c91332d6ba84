package streaming

import "strings"

// DefaultDelimiter is the record delimiter used when none is configured.
const DefaultDelimiter = "\n"

// LineSubscriber splits a stream of text chunks into delimiter-separated
// records and emits them downstream in batches. A chunk that does not end on a
// delimiter leaves a partial record buffered until the next chunk or until the
// stream completes, at which point the remainder is flushed as a final record.
//
// Rejoining all emitted records with the delimiter reproduces the input text
// exactly, except that a single trailing delimiter is consumed without
// producing an empty trailing record.
//
// Demand accounting: whenever a chunk is consumed without producing a batch,
// the subscriber requests one more chunk itself; when a batch is emitted it
// issues no request and relies on demand forwarded from downstream.
type LineSubscriber struct {
	DelegatingSubscriber[string, []string]

	buf   string
	delim string
	sub   Subscription
}

// LineOption configures a LineSubscriber.
type LineOption func(*LineSubscriber)

// WithDelimiter sets the record delimiter. An empty delimiter is ignored and
// the default is kept.
func WithDelimiter(delim string) LineOption {
	return func(l *LineSubscriber) {
		if delim != "" {
			l.delim = delim
		}
	}
}

// NewLineSubscriber creates a splitter that forwards record batches to downstream.
func NewLineSubscriber(downstream Subscriber[[]string], opts ...LineOption) *LineSubscriber {
	l := &LineSubscriber{
		DelegatingSubscriber: NewDelegatingSubscriber[string, []string](downstream),
		delim:                DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnSubscribe captures the subscription so the splitter can request more input
// when a chunk yields no complete record, then forwards it downstream.
func (l *LineSubscriber) OnSubscribe(s Subscription) {
	l.sub = s
	l.DelegatingSubscriber.OnSubscribe(s)
}

// OnNext appends the chunk to the buffer and emits every complete record.
func (l *LineSubscriber) OnNext(chunk string) {
	l.buf += chunk

	parts := strings.Split(l.buf, l.delim)

	// Buffer ends on a delimiter: every part before the trailing empty
	// fragment is a complete record.
	if strings.HasSuffix(l.buf, l.delim) {
		l.buf = ""
		l.Emit(parts[:len(parts)-1])
		return
	}

	// No delimiter found: keep buffering and ask for the next chunk.
	if len(parts) == 1 {
		l.sub.Request(1)
		return
	}

	// The last part is an incomplete record; it becomes the new buffer.
	l.buf = parts[len(parts)-1]
	l.Emit(parts[:len(parts)-1])
}

// OnComplete flushes any buffered partial record as a final single-record
// batch before forwarding completion.
func (l *LineSubscriber) OnComplete() {
	if l.buf != "" {
		l.Emit([]string{l.buf})
		l.buf = ""
	}
	l.DelegatingSubscriber.OnComplete()
}

// OnError discards the buffered partial record: it cannot be proven complete.
func (l *LineSubscriber) OnError(err error) {
	l.buf = ""
	l.DelegatingSubscriber.OnError(err)
}

// TextSubscriber decodes a byte-chunk stream into a text-chunk stream.
// Each chunk is copied, so pooled upstream buffers are safe to reuse.
type TextSubscriber struct {
	DelegatingSubscriber[[]byte, string]
}

// NewTextSubscriber creates a decoder forwarding text chunks to downstream.
func NewTextSubscriber(downstream Subscriber[string]) *TextSubscriber {
	return &TextSubscriber{
		DelegatingSubscriber: NewDelegatingSubscriber[[]byte, string](downstream),
	}
}

// OnNext forwards the chunk as a string.
func (t *TextSubscriber) OnNext(chunk []byte) {
	t.Emit(string(chunk))
}
