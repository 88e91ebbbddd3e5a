package sedregex

import "strings"

// translateBRE rewrites sed's POSIX Basic Regular Expression metacharacter
// conventions into the ERE/Perl-flavored syntax regexp2 expects:
//
//	\( \) \| \{ \}   ->  ( ) | { }   (BRE "escaped means special")
//	(  )  |  {  }    ->  \( \) \| \{ \}  (BRE "bare means literal")
//
// Backreferences (\1..\9) and POSIX bracket expressions pass through
// unchanged; bracket-expression tracking prevents the translator from
// reinterpreting metacharacters that appear inside [...] or [:class:].
func translateBRE(pat string) string {
	var out strings.Builder
	inClass := false
	for i := 0; i < len(pat); i++ {
		ch := pat[i]

		if ch == '[' && !inClass {
			inClass = true
			out.WriteByte(ch)
			continue
		}
		if ch == ']' && inClass {
			inClass = false
			out.WriteByte(ch)
			continue
		}
		if inClass {
			out.WriteByte(ch)
			continue
		}

		if ch == '\\' && i+1 < len(pat) {
			next := pat[i+1]
			switch next {
			case '(', ')', '|', '{', '}':
				out.WriteByte(next)
			case '1', '2', '3', '4', '5', '6', '7', '8', '9':
				out.WriteByte('\\')
				out.WriteByte(next)
			default:
				out.WriteByte('\\')
				out.WriteByte(next)
			}
			i++
			continue
		}

		switch ch {
		case '(', ')', '|', '{', '}':
			out.WriteByte('\\')
			out.WriteByte(ch)
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}

// TranslateReplacement rewrites a sed replacement template (& and \1..\9
// already extracted as literal text by the compiler's escape processing)
// is intentionally NOT provided here: replacement expansion is driven by
// the executor directly against the matched Result, not by handing the
// template to the regex engine (see sedexec's substitution step, spec
// §4.5.1 step f).
