package resp

import (
	"fmt"

	"github.com/morikuni/resp/resp/buffer"
)

// MaxMessageLength is the largest declared bulk-string or array length
// this codec accepts: the Decoder enforces it on bulk-string lengths,
// the Aggregator on array lengths (the Decoder emits ArrayHeader tokens
// without checking them). It is an implementation restriction, not part
// of the wire format: declared lengths are carried on the wire as
// signed 64-bit integers, and the cap is the largest signed 32-bit
// value, exactly as the Netty original this codec was distilled from
// restricts array length to Integer.MAX_VALUE.
const MaxMessageLength = 1<<31 - 1

const crlfLen = 2

type decodeState uint8

const (
	stateDecodeType decodeState = iota
	stateDecodeInline
	stateDecodeLength
	stateDecodeBulkString
)

// Decoder is a resumable state machine that parses one RESP token at a
// time out of a growing byte buffer. Its entire memory between calls is
// the current state plus two scalars (messageType, bulkStringLen), so
// it never allocates on the hot path and is trivial for a host to keep
// alive across partial reads.
//
// A Decoder is not safe for concurrent use; a pipeline host owns one
// per connection and never calls Decode concurrently on it.
type Decoder struct {
	state         decodeState
	messageType   Type
	bulkStringLen int64
}

// NewDecoder returns a Decoder ready to decode the start of a new
// frame.
func NewDecoder() *Decoder {
	return &Decoder{state: stateDecodeType}
}

// Decode attempts to parse exactly one Token out of in. It returns
// (nil, nil) when in does not yet contain enough bytes to complete the
// state the decoder is currently suspended in: this is the expected,
// non-error "not enough bytes" condition, and the caller should append
// more bytes to in and call Decode again. Bytes already consumed from
// in in earlier states, or earlier calls, stay consumed.
//
// On any other error, the error is fatal: the decoder resets to its
// initial state and the caller is expected to close the connection
// rather than attempt to resynchronize.
func (d *Decoder) Decode(in *buffer.Bytes) (Token, error) {
	for {
		switch d.state {
		case stateDecodeType:
			ok, err := d.decodeType(in)
			if err != nil {
				d.reset()
				return nil, err
			}
			if !ok {
				return nil, nil
			}

		case stateDecodeInline:
			tok, ok, err := d.decodeInline(in)
			if err != nil {
				d.reset()
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			return tok, nil

		case stateDecodeLength:
			tok, ok, err := d.decodeLength(in)
			if err != nil {
				d.reset()
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			if tok != nil {
				return tok, nil
			}
			// bulk string length stored; fell through to DECODE_BULK_STRING

		case stateDecodeBulkString:
			tok, ok, err := d.decodeBulkString(in)
			if err != nil {
				d.reset()
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			return tok, nil

		default:
			err := fmt.Errorf("resp: unknown decoder state %d", d.state)
			d.reset()
			return nil, err
		}
	}
}

func (d *Decoder) reset() {
	d.state = stateDecodeType
}

func (d *Decoder) decodeType(in *buffer.Bytes) (bool, error) {
	b, err := in.ReadByte()
	if err != nil {
		return false, nil
	}
	typ := Type(b)
	switch typ {
	case TypeSimpleString, TypeError, TypeInteger:
		d.messageType = typ
		d.state = stateDecodeInline
	case TypeBulkString, TypeArray:
		d.messageType = typ
		d.state = stateDecodeLength
	default:
		return false, ErrUnknownType
	}
	return true, nil
}

func (d *Decoder) decodeInline(in *buffer.Bytes) (Token, bool, error) {
	line, ok, err := readLine(in)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var msg *Message
	switch d.messageType {
	case TypeSimpleString:
		msg, err = SimpleString(line)
	case TypeError:
		msg, err = Error(line)
	case TypeInteger:
		var v int64
		v, err = parseInteger(line)
		if err == nil {
			msg = Integer(v)
		}
	default:
		err = fmt.Errorf("resp: bad inline type %q", byte(d.messageType))
	}
	if err != nil {
		return nil, false, err
	}

	d.reset()
	return msg, true, nil
}

func (d *Decoder) decodeLength(in *buffer.Bytes) (Token, bool, error) {
	line, ok, err := readLine(in)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	length, err := parseInteger(line)
	if err != nil {
		return nil, false, err
	}

	switch d.messageType {
	case TypeArray:
		d.reset()
		return ArrayHeader{Length: length}, true, nil
	case TypeBulkString:
		d.bulkStringLen = length
		d.state = stateDecodeBulkString
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("resp: bad length type %q", byte(d.messageType))
	}
}

func (d *Decoder) decodeBulkString(in *buffer.Bytes) (Token, bool, error) {
	switch {
	case d.bulkStringLen == -1:
		d.reset()
		return NullBulkString, true, nil

	case d.bulkStringLen == 0:
		if in.Len() < crlfLen {
			return nil, false, nil
		}
		if err := in.Skip(crlfLen); err != nil {
			return nil, false, err
		}
		d.reset()
		return EmptyBulkString, true, nil

	case d.bulkStringLen > MaxMessageLength:
		return nil, false, ErrLengthOutOfRange

	case d.bulkStringLen > 0:
		need := d.bulkStringLen + crlfLen
		if int64(in.Len()) < need {
			return nil, false, nil
		}
		content, err := in.ReadSlice(int(d.bulkStringLen))
		if err != nil {
			return nil, false, err
		}
		if err := in.Skip(crlfLen); err != nil {
			return nil, false, err
		}
		d.reset()
		return BulkString(content), true, nil

	default:
		return nil, false, ErrMalformedLength
	}
}

// readLine scans for the first LF in the unread window and returns the
// content preceding its CR, without the terminating CRLF, without
// acquiring a reference to it (the caller is expected to consume the
// line immediately, not to retain it). It returns ok=false, with no
// error, when no LF is present yet.
func readLine(in *buffer.Bytes) (line []byte, ok bool, err error) {
	idx := in.IndexByte('\n')
	if idx < 0 {
		return nil, false, nil
	}
	if idx == 0 {
		return nil, false, ErrFraming
	}
	full, err := in.Peek(idx + 1)
	if err != nil {
		return nil, false, err
	}
	if full[idx-1] != '\r' {
		return nil, false, ErrFraming
	}
	content := full[:idx-1]
	if err := in.Skip(idx + 1); err != nil {
		return nil, false, err
	}
	return content, true, nil
}

// parseInteger parses an ASCII decimal signed 64-bit integer using the
// conventional multiply-subtract idiom: it accumulates a non-positive
// magnitude and negates only at the end, so MIN_I64 is representable
// without overflow.
func parseInteger(line []byte) (int64, error) {
	if len(line) == 0 {
		return 0, ErrMalformedLength
	}

	negative := false
	i := 0
	if line[0] == '-' {
		negative = true
		i = 1
		if len(line) == 1 {
			return 0, ErrMalformedLength
		}
	}

	var result int64
	for ; i < len(line); i++ {
		c := line[i]
		if c < '0' || c > '9' {
			return 0, ErrMalformedLength
		}
		result = result*10 - int64(c-'0')
	}

	if negative {
		return result, nil
	}
	return -result, nil
}
