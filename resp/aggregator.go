package resp

import (
	"fmt"

	"github.com/morikuni/resp/resp/buffer"
)

// frame is one open array on the aggregator's stack: its declared
// remaining child count and the children collected so far.
type frame struct {
	remaining int64
	children  []*Message
}

// Aggregator composes the flat token stream a Decoder emits into
// fully-formed, possibly-nested Array messages. It emits exactly one
// top-level Message per complete RESP frame.
//
// An Aggregator is not safe for concurrent use; it owns one Decoder and
// is driven by a single goroutine per connection.
type Aggregator struct {
	dec   *Decoder
	stack []*frame
}

// NewAggregator wraps dec with array-reconstruction state.
func NewAggregator(dec *Decoder) *Aggregator {
	return &Aggregator{dec: dec}
}

// Next decodes tokens from in until a complete top-level Message is
// available, returning (nil, nil) if in runs out of bytes first.
func (a *Aggregator) Next(in *buffer.Bytes) (*Message, error) {
	for {
		tok, err := a.dec.Decode(in)
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return nil, nil
		}

		msg, done, err := a.feed(tok)
		if err != nil {
			return nil, err
		}
		if done {
			return msg, nil
		}
	}
}

// NextToken reads and returns a single raw token from in without
// aggregating it: the streaming bypass named in the design. A consumer
// using NextToken is responsible for honoring ArrayHeader child counts
// itself; mixing NextToken and Next calls on the same Aggregator is not
// supported, since NextToken does not touch the aggregator's stack.
func (a *Aggregator) NextToken(in *buffer.Bytes) (Token, error) {
	return a.dec.Decode(in)
}

// feed folds one token into the aggregator's open-frame stack. It
// returns the completed top-level message and done=true once a full
// frame has been assembled; otherwise done=false and callers should
// decode another token.
func (a *Aggregator) feed(tok Token) (result *Message, done bool, err error) {
	switch t := tok.(type) {
	case *Message:
		return a.collapse(t)

	case ArrayHeader:
		switch {
		case t.Length == -1:
			return a.collapse(NullArray)
		case t.Length == 0:
			return a.collapse(EmptyArray)
		case t.Length > 0:
			if t.Length > MaxMessageLength {
				return nil, false, ErrLengthOutOfRange
			}
			a.stack = append(a.stack, &frame{
				remaining: t.Length,
				children:  make([]*Message, 0, t.Length),
			})
			return nil, false, nil
		default:
			return nil, false, ErrMalformedLength
		}

	default:
		return nil, false, fmt.Errorf("resp: unknown token %T", tok)
	}
}

// collapse appends msg to the innermost open frame, closing any frames
// that become complete as a result -- including frames nested directly
// inside frames that just closed, which is why this is a loop rather
// than a single append.
func (a *Aggregator) collapse(msg *Message) (*Message, bool, error) {
	for len(a.stack) > 0 {
		top := a.stack[len(a.stack)-1]
		top.children = append(top.children, msg)
		top.remaining--
		if top.remaining > 0 {
			return nil, false, nil
		}

		a.stack = a.stack[:len(a.stack)-1]
		msg = Array(top.children)
	}
	return msg, true, nil
}

// Release is a best-effort cleanup for a host discarding the aggregator
// mid-frame: it walks every open frame and releases each already-held
// child exactly once, then clears the stack. It does not touch the
// underlying Decoder.
func (a *Aggregator) Release() error {
	var first error
	for _, f := range a.stack {
		for _, c := range f.children {
			if err := c.Release(); err != nil && first == nil {
				first = err
			}
		}
	}
	a.stack = nil
	return first
}
