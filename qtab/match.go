package qtab

// globMatch reports whether s matches a shell-style pattern,
// case-insensitively:
//
//   - ? matches any one byte
//   - * matches any run of bytes, including the empty run
//   - [...] matches a byte class, with a-z ranges and a leading
//     ! or ^ for negation; an unterminated class is literal
//   - there is no backslash escaping
//
// The whole of s must match.
func globMatch(pattern, s string) bool {
	px, sx := 0, 0
	starPx, starSx := -1, -1

	for sx < len(s) {
		if px < len(pattern) {
			switch c := pattern[px]; c {
			case '?':
				px++
				sx++
				continue
			case '*':
				starPx, starSx = px, sx
				px++
				continue
			case '[':
				if hit, next, ok := matchClass(pattern, px, s[sx]); ok {
					if hit {
						px = next
						sx++
						continue
					}
				} else if foldByte(c) == foldByte(s[sx]) {
					px++
					sx++
					continue
				}
			default:
				if foldByte(c) == foldByte(s[sx]) {
					px++
					sx++
					continue
				}
			}
		}
		// Mismatch: widen the last *, or fail.
		if starPx >= 0 {
			starSx++
			sx = starSx
			px = starPx + 1
			continue
		}
		return false
	}

	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}

// matchClass matches c against the class opening at pattern[px].
// ok is false when the class has no closing bracket.
func matchClass(pattern string, px int, c byte) (hit bool, next int, ok bool) {
	i := px + 1
	neg := false
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		neg = true
		i++
	}

	c = foldByte(c)
	first := true
	for {
		if i >= len(pattern) {
			return false, 0, false
		}
		if pattern[i] == ']' && !first {
			i++
			break
		}
		first = false
		lo := pattern[i]
		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			hi := pattern[i+2]
			if foldByte(lo) <= c && c <= foldByte(hi) {
				hit = true
			}
			i += 3
		} else {
			if foldByte(lo) == c {
				hit = true
			}
			i++
		}
	}

	if neg {
		hit = !hit
	}
	return hit, i, true
}

func foldByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
