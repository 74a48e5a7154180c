package resp

// Equal reports whether a and b represent the same RESP value: same
// type, same null/empty-ness, same scalar content, and (for arrays)
// recursively equal children in the same order. It ignores identity,
// interning, and reference counts -- two independently built Messages
// with the same content are Equal.
func Equal(a, b *Message) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.typ != b.typ {
		return false
	}

	switch a.typ {
	case TypeSimpleString, TypeError:
		return a.str == b.str

	case TypeInteger:
		return a.i64 == b.i64

	case TypeBulkString:
		if a.bulkNull != b.bulkNull || a.bulkEmpty != b.bulkEmpty {
			return false
		}
		if a.bulkNull || a.bulkEmpty {
			return true
		}
		return string(a.bulk.Bytes()) == string(b.bulk.Bytes())

	case TypeArray:
		if a.arrNull != b.arrNull || a.arrEmpty != b.arrEmpty {
			return false
		}
		if len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], b.children[i]) {
				return false
			}
		}
		return true

	default:
		return false
	}
}
