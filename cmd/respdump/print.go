package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/morikuni/resp/resp"
)

func printMessage(w io.Writer, m *resp.Message, depth int) {
	indent := strings.Repeat("  ", depth)

	switch m.Type() {
	case resp.TypeSimpleString:
		fmt.Fprintf(w, "%s+%s\n", indent, m.Str())
	case resp.TypeError:
		fmt.Fprintf(w, "%s-%s\n", indent, m.Str())
	case resp.TypeInteger:
		fmt.Fprintf(w, "%s:%d\n", indent, m.Int())
	case resp.TypeBulkString:
		switch {
		case m.IsNull():
			fmt.Fprintf(w, "%s$-1 (null)\n", indent)
		case m.IsEmpty():
			fmt.Fprintf(w, "%s$0 \"\"\n", indent)
		default:
			fmt.Fprintf(w, "%s$%d %q\n", indent, len(m.Bytes()), m.Bytes())
		}
	case resp.TypeArray:
		switch {
		case m.IsNull():
			fmt.Fprintf(w, "%s*-1 (null)\n", indent)
		case m.IsEmpty():
			fmt.Fprintf(w, "%s*0 []\n", indent)
		default:
			fmt.Fprintf(w, "%s*%d\n", indent, len(m.Children()))
			for _, c := range m.Children() {
				printMessage(w, c, depth+1)
			}
		}
	}
}
