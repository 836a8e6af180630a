package analyzer

import (
	"regexp"
	"strings"
)

var (
	spaceRunRe    = regexp.MustCompile(`\s+`)
	spaceBeforeRe = regexp.MustCompile(`\s+([*&])`)
	identRe       = regexp.MustCompile(`[A-Za-z_]\w*`)
)

// TypeNormalizer rewrites disassembler type spellings into the spelling the
// generated code uses.
type TypeNormalizer struct {
	replacements map[string]string
}

// NewTypeNormalizer creates a normalizer. Replacements map whole identifiers,
// e.g. "_BOOL1" to "bool"; they never match inside a longer identifier.
func NewTypeNormalizer(replacements map[string]string) *TypeNormalizer {
	r := make(map[string]string, len(replacements))
	for k, v := range replacements {
		r[k] = v
	}
	return &TypeNormalizer{replacements: r}
}

// Normalize collapses whitespace, binds pointer and reference markers to the
// type ("int *" becomes "int*") and applies the replacement table.
func (n *TypeNormalizer) Normalize(typ string) string {
	typ = strings.TrimSpace(spaceRunRe.ReplaceAllString(typ, " "))
	typ = spaceBeforeRe.ReplaceAllString(typ, "$1")
	if n == nil || len(n.replacements) == 0 {
		return typ
	}
	return identRe.ReplaceAllStringFunc(typ, func(ident string) string {
		if r, ok := n.replacements[ident]; ok {
			return r
		}
		return ident
	})
}
