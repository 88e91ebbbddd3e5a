package sedexec

import (
	"fmt"
	"strings"
)

// defaultLineWrap is hawksed's 'l' wrap width: 0, no wrapping (POSIX leaves
// the width implementation-defined). formatClearly does not read it and
// never wraps, since the common use case (piping into a pager or a diff)
// wants one line in, one line out.
const defaultLineWrap = 0

// formatClearly implements the 'l' command's "clearly printed" rendering
// (spec.md §4.5): non-printable and control bytes are backslash-escaped,
// an embedded newline renders as the literal two-character sequence "\n"
// rather than a real line break, and the result is terminated with "$\n".
// A caller-supplied Options.LineFormat overrides this entirely.
func (ex *Executor) formatClearly(s string) string {
	if ex.opts.LineFormat != nil {
		return ex.opts.LineFormat(s)
	}

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch b {
		case '\\':
			out.WriteString(`\\`)
		case '\a':
			out.WriteString(`\a`)
		case '\b':
			out.WriteString(`\b`)
		case '\f':
			out.WriteString(`\f`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		case '\v':
			out.WriteString(`\v`)
		default:
			if b < 0x20 || b >= 0x7f {
				fmt.Fprintf(&out, "\\%03o", b)
			} else {
				out.WriteByte(b)
			}
		}
	}
	out.WriteString("$\n")
	return out.String()
}
