package cache

import "strings"

// globMeta lists the characters that carry meaning in a Redis MATCH pattern.
const globMeta = `*?[]\`

// EscapeGlob escapes glob metacharacters so s matches itself literally.
func EscapeGlob(s string) string {
	if !strings.ContainsAny(s, globMeta) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(globMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchGlob reports whether s matches pattern using '*', '?' and '\' escapes.
func MatchGlob(pattern, s string) bool {
	p := []rune(pattern)
	str := []rune(s)

	pi, si := 0, 0
	starP, starS := -1, 0

	for si < len(str) {
		if pi < len(p) {
			switch p[pi] {
			case '*':
				starP, starS = pi, si
				pi++
				continue
			case '?':
				pi++
				si++
				continue
			case '\\':
				if pi+1 < len(p) && p[pi+1] == str[si] {
					pi += 2
					si++
					continue
				}
			default:
				if p[pi] == str[si] {
					pi++
					si++
					continue
				}
			}
		}
		// Mismatch: backtrack to the last star, consuming one more char.
		if starP < 0 {
			return false
		}
		starS++
		si = starS
		pi = starP + 1
	}

	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
