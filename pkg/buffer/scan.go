package buffer

type scanState int

const (
	stateCode scanState = iota
	stateComment
	stateString
	stateTriple
)

// Scan walks text and reports whether its end lies inside a comment or a
// string literal. Single quoted strings and comments end at a newline.
func Scan(text []rune) (inComment, inString bool) {
	state := stateCode
	var quote rune
	escaped := false

	for i := 0; i < len(text); i++ {
		r := text[i]
		switch state {
		case stateCode:
			switch r {
			case '#':
				state = stateComment
			case '\'', '"':
				quote = r
				if i+2 < len(text) && text[i+1] == r && text[i+2] == r {
					state = stateTriple
					i += 2
				} else {
					state = stateString
				}
			}

		case stateComment:
			if r == '\n' {
				state = stateCode
			}

		case stateString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote, r == '\n':
				state = stateCode
			}

		case stateTriple:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote && i+2 < len(text) && text[i+1] == quote && text[i+2] == quote:
				state = stateCode
				i += 2
			}
		}
	}
	return state == stateComment, state == stateString || state == stateTriple
}
