package mcpservice

import "strings"

// RenderTemplate substitutes prompt arguments into tmpl.
//
// Two constructs are recognized. A placeholder {name} is replaced by the
// value of name. A conditional block {?name?body} is replaced by body when
// name is present in vars and removed entirely otherwise; body may contain
// placeholders, nested conditional blocks and other balanced braces.
//
// Conditional blocks are resolved first, then placeholders are substituted in
// a single left-to-right pass, so substituted values are never rescanned.
// Placeholders without a value are left as written. Malformed input (an
// unterminated block or unbalanced braces) stops block resolution and the
// remainder is kept verbatim.
func RenderTemplate(tmpl string, vars map[string]string) string {
	return substitutePlaceholders(resolveBlocks(tmpl, vars), vars)
}

func resolveBlocks(s string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		j := strings.Index(s[i:], "{?")
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		start := i + j
		b.WriteString(s[i:start])

		nameStart := start + 2
		q := strings.IndexByte(s[nameStart:], '?')
		if q < 0 {
			b.WriteString(s[start:])
			break
		}
		name := s[nameStart : nameStart+q]
		bodyStart := nameStart + q + 1

		end, ok := matchBrace(s, bodyStart)
		if !ok {
			b.WriteString(s[start:])
			break
		}

		if _, present := vars[name]; present {
			b.WriteString(resolveBlocks(s[bodyStart:end], vars))
		}
		i = end + 1
	}
	return b.String()
}

// matchBrace returns the index of the '}' closing a block whose body starts
// at from, counting nested braces from depth one.
func matchBrace(s string, from int) (int, bool) {
	depth := 1
	for k := from; k < len(s); k++ {
		switch s[k] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return k, true
			}
		}
	}
	return 0, false
}

func substitutePlaceholders(s string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		lb := strings.IndexByte(s[i:], '{')
		if lb < 0 {
			b.WriteString(s[i:])
			break
		}
		lb += i
		b.WriteString(s[i:lb])

		rb := strings.IndexByte(s[lb+1:], '}')
		if rb < 0 {
			b.WriteString(s[lb:])
			break
		}
		rb += lb + 1

		name := s[lb+1 : rb]
		if v, ok := vars[name]; ok && !strings.ContainsRune(name, '{') {
			b.WriteString(v)
			i = rb + 1
			continue
		}
		b.WriteByte('{')
		i = lb + 1
	}
	return b.String()
}
