package port

import "sdkgen/internal/domain"

// RowSource delivers the exported function table in source order.
type RowSource interface {
	Rows() ([]domain.SymbolRow, error)
}
