package resp

import (
	"testing"

	"github.com/morikuni/resp/resp/buffer"
	"github.com/morikuni/resp/internal/assert"
)

// feedAll appends every fragment to a single growing buffer one at a
// time, calling Decode after each append, and returns every non-nil
// token produced along the way in order.
func feedAll(t *testing.T, dec *Decoder, fragments ...string) ([]Token, error) {
	t.Helper()

	in := buffer.Wrap(nil)
	var toks []Token
	for _, frag := range fragments {
		in.Append([]byte(frag))
		for {
			tok, err := dec.Decode(in)
			if err != nil {
				return toks, err
			}
			if tok == nil {
				break
			}
			toks = append(toks, tok)
		}
	}
	return toks, nil
}

func TestDecoder_SeedScenarios(t *testing.T) {
	t.Run("simple string fragmented", func(t *testing.T) {
		toks, err := feedAll(t, NewDecoder(), "+", "OK", "\r\n")
		assert.WantError(t, false, err)
		if len(toks) != 1 {
			t.Fatalf("want 1 token, got %d", len(toks))
		}
		msg := toks[0].(*Message)
		assert.Equal(t, TypeSimpleString, msg.Type())
		assert.Equal(t, "OK", msg.Str())
	})

	t.Run("error with split crlf", func(t *testing.T) {
		toks, err := feedAll(t, NewDecoder(), "-", "ERROR sample message", "\r", "\n")
		assert.WantError(t, false, err)
		if len(toks) != 1 {
			t.Fatalf("want 1 token, got %d", len(toks))
		}
		msg := toks[0].(*Message)
		assert.Equal(t, TypeError, msg.Type())
		assert.Equal(t, "ERROR sample message", msg.Str())
	})

	t.Run("integer", func(t *testing.T) {
		toks, err := feedAll(t, NewDecoder(), ":1234\r\n")
		assert.WantError(t, false, err)
		if len(toks) != 1 {
			t.Fatalf("want 1 token, got %d", len(toks))
		}
		msg := toks[0].(*Message)
		assert.Equal(t, TypeInteger, msg.Type())
		assert.Equal(t, int64(1234), msg.Int())
	})

	t.Run("bulk string split across payload", func(t *testing.T) {
		toks, err := feedAll(t, NewDecoder(),
			"$", "21", "\r\n", "bulk\nst", "ring\ntest\n1234", "\r\n")
		assert.WantError(t, false, err)
		if len(toks) != 1 {
			t.Fatalf("want 1 token, got %d", len(toks))
		}
		msg := toks[0].(*Message)
		assert.Equal(t, TypeBulkString, msg.Type())
		assert.Equal(t, "bulk\nstring\ntest\n1234", string(msg.Bytes()))
		assert.WantError(t, false, msg.Release())
	})

	t.Run("null bulk string", func(t *testing.T) {
		toks, err := feedAll(t, NewDecoder(), "$-1\r\n")
		assert.WantError(t, false, err)
		if len(toks) != 1 {
			t.Fatalf("want 1 token, got %d", len(toks))
		}
		assert.Equal(t, NullBulkString, toks[0].(*Message))
	})
}

func TestDecoder_NotEnoughBytes(t *testing.T) {
	dec := NewDecoder()
	in := buffer.Wrap([]byte("+O"))
	tok, err := dec.Decode(in)
	assert.WantError(t, false, err)
	if tok != nil {
		t.Fatalf("want nil token, got %v", tok)
	}
}

func TestDecoder_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type":          "?foo\r\n",
		"malformed length":      "$abc\r\n",
		"framing no leading cr": "+foo\n",
		"bulk negative length":  "$-2\r\n",
	}
	for name, wire := range cases {
		wire := wire
		t.Run(name, func(t *testing.T) {
			dec := NewDecoder()
			in := buffer.Wrap([]byte(wire))
			_, err := dec.Decode(in)
			assert.WantError(t, true, err)
		})
	}
}

func TestDecoder_LengthOutOfRange(t *testing.T) {
	dec := NewDecoder()
	in := buffer.Wrap([]byte("$4294967296\r\n"))
	_, err := dec.Decode(in)
	assert.WantError(t, true, err)
	if err != ErrLengthOutOfRange {
		t.Fatalf("want ErrLengthOutOfRange, got %v", err)
	}
}

func TestDecoder_ResetsAfterFatalError(t *testing.T) {
	dec := NewDecoder()
	in := buffer.Wrap([]byte("?\r\n"))
	_, err := dec.Decode(in)
	assert.WantError(t, true, err)

	in2 := buffer.Wrap([]byte(":5\r\n"))
	tok, err := dec.Decode(in2)
	assert.WantError(t, false, err)
	msg := tok.(*Message)
	assert.Equal(t, int64(5), msg.Int())
}
