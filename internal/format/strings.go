package format

import "strings"

// normalizeNumber lowercases radix prefixes and exponent markers and
// uppercases hex digits. Digit values never change.
func normalizeNumber(s string) string {
	b := []byte(s)
	if len(b) > 1 && b[0] == '0' {
		switch b[1] {
		case 'x', 'X':
			b[1] = 'x'
			for i := 2; i < len(b); i++ {
				if b[i] >= 'a' && b[i] <= 'f' {
					b[i] -= 'a' - 'A'
				}
			}
			return string(b)
		case 'o', 'O':
			b[1] = 'o'
			return string(b)
		case 'b', 'B':
			b[1] = 'b'
			return string(b)
		}
	}
	for i := range b {
		switch b[i] {
		case 'E':
			b[i] = 'e'
		case 'J':
			b[i] = 'j'
		}
	}
	return string(b)
}

// CanonLiteral maps a literal spelling to a canonical form, so two
// renderings of the same value compare equal regardless of quote or
// case choices. Used when comparing syntax trees across a format cycle.
func CanonLiteral(s string) string {
	if strings.ContainsAny(s, `"'`) {
		return normalizeString(s, QuoteDouble)
	}
	return normalizeNumber(s)
}

// normalizeString canonicalizes one string literal spelling: the prefix
// is lowercased with redundant "u" dropped, and quotes are rewritten to
// the configured style unless that would add escapes. Triple-quoted
// literals keep their quotes.
func normalizeString(s string, style QuoteStyle) string {
	i := 0
	for i < len(s) && s[i] != '"' && s[i] != '\'' {
		i++
	}
	prefix, rest := s[:i], s[i:]
	prefix = strings.ReplaceAll(strings.ToLower(prefix), "u", "")
	if rest == "" || style == QuotePreserve {
		return prefix + rest
	}
	if strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, "'''") {
		return prefix + rest
	}

	target := byte('"')
	if style == QuoteSingle {
		target = '\''
	}
	quote := rest[0]
	if quote == target || len(rest) < 2 {
		return prefix + rest
	}
	body := rest[1 : len(rest)-1]

	if strings.ContainsRune(prefix, 'f') && strings.ContainsAny(body, `"'`) {
		// Replacement fields may hold nested literals whose quotes
		// cannot be escaped; leave such f-strings alone.
		return prefix + rest
	}
	if strings.ContainsRune(prefix, 'r') {
		if strings.IndexByte(body, target) >= 0 {
			return prefix + rest
		}
		return prefix + string(target) + body + string(target)
	}

	newBody, ok := requote(body, quote, target)
	if !ok {
		return prefix + rest
	}
	return prefix + string(target) + newBody + string(target)
}

// requote switches the delimiter of a non-raw single-line literal,
// unescaping old-quote escapes and escaping bare new-quote characters.
// It reports false when the switch would need more escapes than the
// original spelling had.
func requote(body string, old, target byte) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(body) + 2)
	freed, added := 0, 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			next := body[i+1]
			if next == old {
				freed++
				sb.WriteByte(old)
			} else {
				sb.WriteByte(c)
				sb.WriteByte(next)
			}
			i++
			continue
		}
		if c == target {
			added++
			sb.WriteByte('\\')
			sb.WriteByte(target)
			continue
		}
		sb.WriteByte(c)
	}
	if added > freed {
		return "", false
	}
	return sb.String(), true
}
