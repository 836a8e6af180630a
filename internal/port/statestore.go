package port

import "sdkgen/internal/domain"

// StateStore remembers which classes were generated from which inputs.
type StateStore interface {
	PutRecord(rec domain.ClassRecord) error

	GetRecord(class string) (domain.ClassRecord, bool, error)

	ListRecords() ([]domain.ClassRecord, error)

	DeleteRecord(class string) error

	Close() error
}

// ResultStore is a StateStore that also keeps the grouped result each record
// was rendered from.
type ResultStore interface {
	StateStore

	PutRecordWithResult(rec domain.ClassRecord, result *domain.GroupedResult) error

	GetResult(class string) (*domain.GroupedResult, error)
}

// PrototypeWriter dumps the raw prototypes of a class for manual review.
type PrototypeWriter interface {
	WritePrototypes(class string, rows []domain.SymbolRow) (string, error)
}
