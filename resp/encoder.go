package resp

import (
	"strconv"

	"github.com/morikuni/resp/resp/buffer"
)

const typeLen = 1

// a null bulk string or array is just the length field "-1" with no
// payload, written immediately after the type byte.
var (
	nullLength = []byte("-1")
	zeroLength = []byte("0")
)

// EncodedLen returns the exact number of bytes Encode will write for m,
// computed with no allocation beyond the small integer-formatting
// scratch buffer, so a caller can size its output buffer exactly.
func EncodedLen(m *Message) int {
	switch m.typ {
	case TypeSimpleString, TypeError:
		return typeLen + len(m.str) + crlfLen

	case TypeInteger:
		return typeLen + len(strconv.FormatInt(m.i64, 10)) + crlfLen

	case TypeBulkString:
		switch {
		case m.bulkNull:
			return typeLen + len(nullLength) + crlfLen
		case m.bulkEmpty:
			return typeLen + len(zeroLength) + crlfLen + crlfLen
		default:
			n := m.bulk.Len()
			return typeLen + len(strconv.Itoa(n)) + crlfLen + n + crlfLen
		}

	case TypeArray:
		switch {
		case m.arrNull:
			return typeLen + len(nullLength) + crlfLen
		case m.arrEmpty:
			return typeLen + len(zeroLength) + crlfLen
		default:
			total := typeLen + len(strconv.Itoa(len(m.children))) + crlfLen
			for _, c := range m.children {
				total += EncodedLen(c)
			}
			return total
		}

	default:
		return 0
	}
}

// Encode writes m's wire representation into a freshly allocated,
// exactly-sized buffer view with one outstanding reference, using the
// two-phase size-then-emit strategy: EncodedLen first, a single
// allocation second, so no intermediate growth or copying happens on
// the hot path.
func Encode(m *Message) (*buffer.Bytes, error) {
	if !isKnownVariant(m.typ) {
		return nil, ErrUnknownVariant
	}
	n := EncodedLen(m)
	out := buffer.NewSized(n)
	dst := out.Bytes()
	pos, err := encodeInto(dst, 0, m)
	if err != nil {
		_ = out.Release()
		return nil, err
	}
	if pos != n {
		_ = out.Release()
		return nil, ErrUnknownVariant
	}
	return out, nil
}

// EncodeTo appends m's wire representation onto the host's accumulating
// output buffer, for hosts that already own a growable buffer to write
// into. It formats m into a scratch slice of exactly EncodedLen bytes
// and then copies that slice onto the end of out.
func EncodeTo(out *buffer.Bytes, m *Message) error {
	if !isKnownVariant(m.typ) {
		return ErrUnknownVariant
	}
	n := EncodedLen(m)
	scratch := make([]byte, n)
	if _, err := encodeInto(scratch, 0, m); err != nil {
		return err
	}
	out.Append(scratch)
	return nil
}

func isKnownVariant(t Type) bool {
	switch t {
	case TypeSimpleString, TypeError, TypeInteger, TypeBulkString, TypeArray:
		return true
	default:
		return false
	}
}

// encodeInto writes m starting at dst[pos] and returns the position
// immediately following what it wrote.
func encodeInto(dst []byte, pos int, m *Message) (int, error) {
	switch m.typ {
	case TypeSimpleString, TypeError:
		dst[pos] = byte(m.typ)
		pos++
		pos += copy(dst[pos:], m.str)
		pos = appendCRLF(dst, pos)
		return pos, nil

	case TypeInteger:
		dst[pos] = byte(m.typ)
		pos++
		pos = appendInt(dst, pos, m.i64)
		pos = appendCRLF(dst, pos)
		return pos, nil

	case TypeBulkString:
		dst[pos] = byte(m.typ)
		pos++
		switch {
		case m.bulkNull:
			pos += copy(dst[pos:], nullLength)
			pos = appendCRLF(dst, pos)
			return pos, nil
		case m.bulkEmpty:
			pos += copy(dst[pos:], zeroLength)
			pos = appendCRLF(dst, pos)
			pos = appendCRLF(dst, pos)
			return pos, nil
		default:
			pos = appendInt(dst, pos, int64(m.bulk.Len()))
			pos = appendCRLF(dst, pos)
			pos += copy(dst[pos:], m.bulk.Bytes())
			pos = appendCRLF(dst, pos)
			return pos, nil
		}

	case TypeArray:
		dst[pos] = byte(m.typ)
		pos++
		switch {
		case m.arrNull:
			pos += copy(dst[pos:], nullLength)
			pos = appendCRLF(dst, pos)
			return pos, nil
		case m.arrEmpty:
			pos += copy(dst[pos:], zeroLength)
			pos = appendCRLF(dst, pos)
			return pos, nil
		default:
			pos = appendInt(dst, pos, int64(len(m.children)))
			pos = appendCRLF(dst, pos)
			var err error
			for _, c := range m.children {
				pos, err = encodeInto(dst, pos, c)
				if err != nil {
					return pos, err
				}
			}
			return pos, nil
		}

	default:
		return pos, ErrUnknownVariant
	}
}

// Encoder is a stateless handle onto the package-level encode
// functions, kept for symmetry with Decoder and Aggregator: a host
// wiring up a pipeline can hold one value per stage even though, unlike
// them, it carries no per-connection state of its own.
type Encoder struct{}

func (Encoder) EncodedLen(m *Message) int {
	return EncodedLen(m)
}

func (Encoder) Encode(m *Message) (*buffer.Bytes, error) {
	return Encode(m)
}

func (Encoder) EncodeTo(out *buffer.Bytes, m *Message) error {
	return EncodeTo(out, m)
}

func appendCRLF(dst []byte, pos int) int {
	dst[pos] = '\r'
	dst[pos+1] = '\n'
	return pos + 2
}

// appendInt formats v in place at dst[pos:], using AppendInt's
// zero-allocation in-place growth trick against the already-sized
// destination slice.
func appendInt(dst []byte, pos int, v int64) int {
	out := strconv.AppendInt(dst[:pos], v, 10)
	return len(out)
}
