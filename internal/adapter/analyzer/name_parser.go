package analyzer

import (
	"regexp"
	"strings"
)

var nameSegmentRe = regexp.MustCompile(`::(~?\w+)`)

// ParseName recovers the unqualified function name from a demangled name such
// as "CPed::SetModelIndex(unsigned int)" or "CPed__~CPed". The export pass
// sometimes writes "__" where the demangler would write "::". Names without a
// qualifier do not parse.
func ParseName(demangled string) (string, bool) {
	name := strings.TrimSpace(qualifiedName(strings.ReplaceAll(demangled, "__", "::")))

	matches := nameSegmentRe.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

// HasClassPrefix reports whether a demangled name belongs to class, i.e. it
// starts with the class name followed by a namespace separator.
func HasClassPrefix(demangled, class string) bool {
	rest, ok := strings.CutPrefix(demangled, class)
	if !ok {
		return false
	}
	return strings.HasPrefix(rest, "::") || strings.HasPrefix(rest, "__")
}

// ClassOf returns the qualifier of a demangled member name, i.e. everything
// before its last segment, or "" for free functions. "NS::CPed::Foo()" belongs
// to "NS::CPed".
func ClassOf(demangled string) string {
	name := qualifiedName(demangled)
	depth := 0
	last := -1
	for i := 0; i+1 < len(name); i++ {
		switch name[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':', '_':
			if depth == 0 && name[i+1] == name[i] {
				last = i
				i++
			}
		}
	}
	if last <= 0 {
		return ""
	}
	return name[:last]
}

// paramsOpen returns the index of the '(' opening the parameter list of a
// demangled name, skipping parentheses inside template arguments, or -1.
func paramsOpen(demangled string) int {
	depth := 0
	for i := 0; i < len(demangled); i++ {
		switch demangled[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// qualifiedName strips the parameter list from a demangled name.
func qualifiedName(demangled string) string {
	if i := paramsOpen(demangled); i >= 0 {
		return demangled[:i]
	}
	return demangled
}

// demangledParams returns the raw parameter list of a demangled name, or ""
// when the name carries none.
func demangledParams(demangled string) (string, bool) {
	open := paramsOpen(demangled)
	if open < 0 {
		return "", false
	}
	depth := 0
	for i := open; i < len(demangled); i++ {
		switch demangled[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return demangled[open+1 : i], true
			}
		}
	}
	return "", false
}
