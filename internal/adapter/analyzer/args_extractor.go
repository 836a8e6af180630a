package analyzer

import (
	"fmt"
	"strings"

	"sdkgen/internal/domain"
)

// DefaultReceiverMarker is the parameter name the export pass gives the
// implicit receiver of member functions.
const DefaultReceiverMarker = "this"

// ArgsExtractor pairs the raw parameter type and name lists of a row.
type ArgsExtractor struct {
	receiverMarker string
	types          *TypeNormalizer
}

// NewArgsExtractor creates an extractor. An empty marker selects
// DefaultReceiverMarker.
func NewArgsExtractor(receiverMarker string, types *TypeNormalizer) *ArgsExtractor {
	if receiverMarker == "" {
		receiverMarker = DefaultReceiverMarker
	}
	return &ArgsExtractor{receiverMarker: receiverMarker, types: types}
}

// Extract returns the explicit parameters of a member function of class. For
// method-style conventions the implicit receiver is not part of the result.
// Missing names are filled with positional placeholders (arg0, arg1, ...) that
// never reuse a name already present in the row. A
// *domain.MalformedSignatureError is returned when the lists cannot be paired;
// its Symbol is left for the caller to fill in.
func (e *ArgsExtractor) Extract(class, argTypes, argNames, demangled string, cc domain.CallingConvention) ([]domain.Param, error) {
	types := dropVoid(SplitList(argTypes))
	names := SplitList(argNames)

	demangledTypes, haveDemangled := demangledParams(demangled)
	fromDemangled := false
	if len(types) == 0 && haveDemangled {
		types = dropVoid(SplitList(demangledTypes))
		fromDemangled = true
	}

	if cc.IsMethod() {
		switch {
		case len(names) > 0 && names[0] == e.receiverMarker:
			names = names[1:]
			if !fromDemangled && len(types) > 0 {
				types = types[1:]
			}
		case len(names) == 0 && !fromDemangled && haveDemangled:
			if len(types) == len(dropVoid(SplitList(demangledTypes)))+1 {
				types = types[1:]
			}
		case len(names) == 0 && !haveDemangled && len(types) > 0:
			// Nothing tells where the receiver is but its type.
			if !e.isReceiverType(class, types[0]) {
				return nil, &domain.MalformedSignatureError{
					Types:   len(types),
					Message: fmt.Sprintf("cannot locate the %s receiver in the parameter types", class),
				}
			}
			types = types[1:]
		}
	}

	if len(names) > len(types) {
		return nil, &domain.MalformedSignatureError{
			Types:   len(types),
			Names:   len(names),
			Message: "more parameter names than types",
		}
	}

	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}

	params := make([]domain.Param, len(types))
	for i, typ := range types {
		if typ == "" {
			return nil, &domain.MalformedSignatureError{
				Types:   len(types),
				Names:   len(names),
				Message: fmt.Sprintf("empty type for parameter %d", i),
			}
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		if name == "" {
			name = placeholderName(i, taken)
			taken[name] = true
		}
		params[i] = domain.Param{Type: e.types.Normalize(typ), Name: name}
	}
	return params, nil
}

// isReceiverType reports whether typ is a pointer to class.
func (e *ArgsExtractor) isReceiverType(class, typ string) bool {
	typ = strings.TrimPrefix(e.types.Normalize(typ), "const ")
	return class != "" && typ == class+"*"
}

// placeholderName returns arg<i>, suffixed with underscores until it is not
// taken.
func placeholderName(i int, taken map[string]bool) string {
	name := fmt.Sprintf("arg%d", i)
	for taken[name] {
		name += "_"
	}
	return name
}

// SplitList splits a comma separated list on top-level commas only, so
// template arguments and function pointer types stay intact. Entries are
// trimmed. An empty or blank input yields no entries.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(s[start:]))
}

func dropVoid(list []string) []string {
	if len(list) == 1 && list[0] == "void" {
		return nil
	}
	return list
}
