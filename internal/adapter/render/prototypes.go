package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/domain"
)

var operatorRe = regexp.MustCompile(`\boperator\s*\b`)

// NormalizePrototype strips the class qualifier from a demangled prototype and
// turns it into a declarable identifier: "operator new" becomes
// "operator_new" and "~" becomes "Destructor_".
func NormalizePrototype(class, demangled string) string {
	prot := strings.ReplaceAll(demangled, class+"::", "")
	prot = strings.ReplaceAll(prot, class+"__", "")
	prot = operatorRe.ReplaceAllString(prot, "operator_")
	return strings.ReplaceAll(prot, "~", "Destructor_")
}

// DumpPrototypes writes one "ret prototype;" line per row.
func DumpPrototypes(w io.Writer, class string, rows []domain.SymbolRow) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s %s;\n", row.RetType, NormalizePrototype(class, row.DemangledName)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePrototypes writes <class>_Prototypes.h into the output directory.
func (r *Renderer) WritePrototypes(class string, rows []domain.SymbolRow) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", errors.Errorf("failed to create output directory: %w", err)
	}

	base := strings.NewReplacer("<", "_", ">", "_").Replace(class)
	path := filepath.Join(r.outputDir, base+"_Prototypes.h")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := DumpPrototypes(f, class, rows); err != nil {
		return "", errors.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
