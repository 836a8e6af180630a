package analyzer

import "sdkgen/internal/domain"

// Draft is a row whose name, convention and parameters are already resolved
// but which is not classified yet.
type Draft struct {
	Row    domain.SymbolRow
	Name   string
	CC     domain.CallingConvention
	Params []domain.Param
}

func (d Draft) Ref() domain.SymbolRef {
	return domain.SymbolRef{Name: d.Name, Address: d.Row.Address}
}

// Classifier builds function descriptors from drafts.
type Classifier struct {
	types *TypeNormalizer
}

func NewClassifier(types *TypeNormalizer) *Classifier {
	return &Classifier{types: types}
}

// Build classifies d as a member of class. Constructors and destructors report
// the receiver type as their return type in the export table encoding; their
// return type is replaced by a pointer to class.
func (c *Classifier) Build(class string, d Draft, overloaded bool) domain.FunctionDescriptor {
	category := domain.Classify(class, d.Name, d.CC, d.Row.VTIndex)

	retType := c.types.Normalize(d.Row.RetType)
	if category == domain.Constructor || category == domain.Destructor || category == domain.VirtualDestructor {
		retType = class + "*"
	}

	return domain.FunctionDescriptor{
		Class:        class,
		Name:         d.Name,
		Address:      d.Row.Address,
		RetType:      retType,
		VTIndex:      d.Row.VTIndex,
		CC:           d.CC,
		Params:       d.Params,
		Category:     category,
		IsOverloaded: overloaded,
		IsHooked:     category.RequiresHook(),
	}
}
