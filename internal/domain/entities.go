package domain

import (
	"fmt"
	"strings"
)

// VTIndex is a position in a class's virtual table. NotVirtual is the sentinel
// the export table uses for functions outside any virtual table.
type VTIndex int16

const NotVirtual VTIndex = -1

func (v VTIndex) IsVirtual() bool {
	return v != NotVirtual
}

// SymbolRow is one row of the exported function table.
type SymbolRow struct {
	Address       string  `json:"address"`
	FullName      string  `json:"full_name"`
	DemangledName string  `json:"demangled_name"`
	CC            string  `json:"cc"`
	RetType       string  `json:"ret_type"`
	ArgTypes      string  `json:"arg_types"`
	ArgNames      string  `json:"arg_names"`
	VTIndex       VTIndex `json:"vt_index"`
}

// SymbolRef identifies a symbol in diagnostics.
type SymbolRef struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s SymbolRef) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Address)
}

type Param struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FunctionDescriptor is a classified member function of a class.
type FunctionDescriptor struct {
	Class        string            `json:"class"`
	Name         string            `json:"name"`
	Address      string            `json:"address"`
	RetType      string            `json:"ret_type"`
	VTIndex      VTIndex           `json:"vt_index"`
	CC           CallingConvention `json:"cc"`
	Params       []Param           `json:"params"`
	Category     Category          `json:"category"`
	IsOverloaded bool              `json:"is_overloaded"`
	IsHooked     bool              `json:"is_hooked"`
}

// FullName returns the name with its class prefix, e.g. CPed::SetModelIndex.
func (f FunctionDescriptor) FullName() string {
	return f.Class + "::" + f.Name
}

func (f FunctionDescriptor) ParamNames() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func (f FunctionDescriptor) ParamTypes() string {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		types[i] = p.Type
	}
	return strings.Join(types, ", ")
}

// ParamNameTypes returns the parameter list as it appears in a declaration.
func (f FunctionDescriptor) ParamNameTypes() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Type + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

func (f FunctionDescriptor) IsVirtual() bool {
	return f.Category == Virtual || f.Category == VirtualDestructor
}

func (f FunctionDescriptor) IsDtor() bool {
	return f.Category == Destructor || f.Category == VirtualDestructor
}

func (f FunctionDescriptor) IsCtor() bool {
	return f.Category == Constructor
}

func (f FunctionDescriptor) IsStatic() bool {
	return f.CC.IsStatic()
}

func (f FunctionDescriptor) IsMethod() bool {
	return f.CC.IsMethod()
}

// PluginCall returns the C++ statement that forwards a call to the original
// function through the plugin SDK, e.g.
// return plugin::CallMethodAndReturn<bool, 0x5E4880, CPed*, int>(this, arg0).
func (f FunctionDescriptor) PluginCall() string {
	return f.pluginCall(f.RetType)
}

// PluginInvoke is PluginCall with the result discarded. Constructor and
// destructor bodies use it.
func (f FunctionDescriptor) PluginInvoke() string {
	return f.pluginCall("void")
}

func (f FunctionDescriptor) pluginCall(retType string) string {
	var template, args []string

	fn := f.CC.PluginFn()
	returns := retType != "void"
	if returns {
		fn += "AndReturn"
		template = append(template, retType)
	}
	template = append(template, f.Address)

	if f.CC.IsMethod() {
		template = append(template, f.Class+"*")
		args = append(args, "this")
	}
	for _, p := range f.Params {
		template = append(template, p.Type)
		args = append(args, p.Name)
	}

	prefix := ""
	if returns {
		prefix = "return "
	}
	return fmt.Sprintf("%splugin::%s<%s>(%s)", prefix, fn, strings.Join(template, ", "), strings.Join(args, ", "))
}

func (f FunctionDescriptor) String() string {
	return fmt.Sprintf("%s @ %s", f.Name, f.Address)
}

// DroppedRow records a row excluded from a class result and why.
type DroppedRow struct {
	Symbol SymbolRef `json:"symbol"`
	Reason string    `json:"reason"`
}

// GroupedResult is the classified member set of one class.
type GroupedResult struct {
	Class        string               `json:"class"`
	Destructor   *FunctionDescriptor  `json:"destructor,omitempty"`
	Constructors []FunctionDescriptor `json:"constructors"`
	Virtuals     []FunctionDescriptor `json:"virtuals"`
	Methods      []FunctionDescriptor `json:"methods"`
	Statics      []FunctionDescriptor `json:"statics"`
	Dropped      []DroppedRow         `json:"dropped,omitempty"`
}

// ByCategory returns the descriptors stored for c. Both destructor categories
// answer with the single destructor slot.
func (g *GroupedResult) ByCategory(c Category) []FunctionDescriptor {
	switch c {
	case Constructor:
		return g.Constructors
	case Virtual:
		return g.Virtuals
	case Method:
		return g.Methods
	case Static:
		return g.Statics
	case Destructor, VirtualDestructor:
		if g.Destructor != nil && g.Destructor.Category == c {
			return []FunctionDescriptor{*g.Destructor}
		}
	}
	return nil
}

// All returns every descriptor: destructor first, then constructors,
// virtuals, methods and statics.
func (g *GroupedResult) All() []FunctionDescriptor {
	var out []FunctionDescriptor
	if g.Destructor != nil {
		out = append(out, *g.Destructor)
	}
	out = append(out, g.Constructors...)
	out = append(out, g.Virtuals...)
	out = append(out, g.Methods...)
	out = append(out, g.Statics...)
	return out
}

func (g *GroupedResult) Count() int {
	n := len(g.Constructors) + len(g.Virtuals) + len(g.Methods) + len(g.Statics)
	if g.Destructor != nil {
		n++
	}
	return n
}

// ClassRecord is the persisted outcome of generating one class.
type ClassRecord struct {
	Class       string   `json:"class"`
	Fingerprint string   `json:"fingerprint"`
	Functions   int      `json:"functions"`
	Dropped     int      `json:"dropped"`
	Files       []string `json:"files"`
	GeneratedAt int64    `json:"generated_at"`
}
