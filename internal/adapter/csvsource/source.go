// Package csvsource reads the function table written by the plugin-sdk
// exporter (plugin-sdk.out.functions.csv).
package csvsource

import (
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/domain"
)

// Column names of the exporter output used by the extractor. Other columns
// (Module, IsConst, Refs, Comment, ...) are ignored.
const (
	ColAddress       = "10us"
	ColName          = "Name"
	ColDemangledName = "DemangledName"
	ColCC            = "CC"
	ColRetType       = "RetType"
	ColParamTypes    = "ParamTypes"
	ColParamNames    = "ParamNames"
	ColVTIndex       = "VTIndex"
)

var requiredColumns = []string{
	ColAddress, ColName, ColDemangledName, ColCC,
	ColRetType, ColParamTypes, ColParamNames, ColVTIndex,
}

// Source is a port.RowSource backed by a CSV file.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

// Rows reads the whole table.
func (s *Source) Rows() ([]domain.SymbolRow, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Errorf("%w: %s not present. Try re-running IDA plugin-sdk exporter", domain.ErrTableNotFound, s.path)
	}
	if err != nil {
		return nil, errors.Errorf("failed to open function table: %w", err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, errors.Errorf("%s: %w", s.path, err)
	}
	return rows, nil
}

// Parse reads a function table with a header row. Values are kept verbatim;
// empty cells stay empty strings. An empty VTIndex means not virtual.
func Parse(r io.Reader) ([]domain.SymbolRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("function table is empty")
	}
	if err != nil {
		return nil, errors.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimPrefix(strings.TrimSpace(col), "\ufeff")] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.Errorf("missing column %q", col)
		}
	}

	var rows []domain.SymbolRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("failed to read row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		field := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}

		vt, err := parseVTIndex(field(ColVTIndex))
		if err != nil {
			return nil, errors.Errorf("line %d: %w", line, err)
		}

		rows = append(rows, domain.SymbolRow{
			Address:       field(ColAddress),
			FullName:      field(ColName),
			DemangledName: field(ColDemangledName),
			CC:            field(ColCC),
			RetType:       field(ColRetType),
			ArgTypes:      field(ColParamTypes),
			ArgNames:      field(ColParamNames),
			VTIndex:       vt,
		})
	}
	return rows, nil
}

func parseVTIndex(s string) (domain.VTIndex, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.NotVirtual, nil
	}
	v, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, errors.Errorf("invalid VTIndex %q: %w", s, err)
	}
	return domain.VTIndex(v), nil
}
