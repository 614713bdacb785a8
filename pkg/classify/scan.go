package classify

// ScanLine walks line up to cursor (a rune offset) and reports whether the
// cursor sits inside a '#' comment or an open string literal. Only single
// line state is tracked; triple quotes spanning lines are handled by the
// text source.
func ScanLine(line string, cursor int) (inComment, inString bool) {
	var quote rune
	escaped := false
	i := 0
	for _, r := range line {
		if i >= cursor {
			break
		}
		i++

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}

		switch r {
		case '#':
			return true, false
		case '\'', '"':
			quote = r
		}
	}
	return false, quote != 0
}
