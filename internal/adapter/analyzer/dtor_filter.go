package analyzer

import (
	"strings"

	"sdkgen/internal/domain"
)

// DestructorFilter decides whether a row with a destructor name is the real
// destructor. The compiler also emits a deleting destructor that takes extra
// flags and calls the real one; keeping it would mark the destructor as
// overloaded.
type DestructorFilter interface {
	Keep(row domain.SymbolRow, name string) bool
}

// ReceiverSuffixFilter keeps destructor rows whose raw parameter name list
// ends with the receiver marker. The deleting destructor has a trailing flags
// parameter instead. Rows without "~" in their name are always kept.
type ReceiverSuffixFilter struct {
	Marker string
}

func NewReceiverSuffixFilter(marker string) ReceiverSuffixFilter {
	if marker == "" {
		marker = DefaultReceiverMarker
	}
	return ReceiverSuffixFilter{Marker: marker}
}

func (f ReceiverSuffixFilter) Keep(row domain.SymbolRow, name string) bool {
	if !strings.Contains(name, "~") {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(row.ArgNames), f.Marker)
}
