package domain

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Category is the kind of a member function. Exactly one applies per function.
type Category int

const (
	Method Category = iota
	Static
	Virtual
	Constructor
	Destructor
	VirtualDestructor
)

var categoryNames = [...]string{
	Method:            "method",
	Static:            "static",
	Virtual:           "virtual",
	Constructor:       "ctor",
	Destructor:        "dtor",
	VirtualDestructor: "dtor_virtual",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return 0, false
}

// RequiresHook reports whether generated bindings must always intercept
// functions of this category. Object lifetime depends on constructors and
// destructors running through the hooks.
func (c Category) RequiresHook() bool {
	return c == Constructor || c == Destructor || c == VirtualDestructor
}

// Classify decides the category of a member function. The checks run in a
// fixed order and the first match wins: constructor, destructor, static,
// then method or virtual. Constructors of "NS::CPool<T>" are named "CPool".
func Classify(class, name string, cc CallingConvention, vt VTIndex) Category {
	base := className(class)
	switch {
	case name == base:
		return Constructor
	case name == "~"+base:
		if vt.IsVirtual() {
			return VirtualDestructor
		}
		return Destructor
	case cc.IsStatic():
		return Static
	case vt.IsVirtual():
		return Virtual
	default:
		return Method
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return errors.Errorf("unknown function category %q", string(text))
	}
	*c = parsed
	return nil
}

// className strips namespace qualifiers and template arguments from class.
func className(class string) string {
	depth := 0
	start, end := 0, len(class)
	for i := 0; i < len(class); i++ {
		switch class[i] {
		case '<':
			if depth == 0 && end == len(class) {
				end = i
			}
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 && strings.HasPrefix(class[i:], "::") {
				start = i + 2
				end = len(class)
				i++
			}
		}
	}
	return class[start:end]
}
