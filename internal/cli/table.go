package cli

import (
	"context"
	"fmt"

	"sdkgen/config"
	"sdkgen/internal/adapter/analyzer"
	"sdkgen/internal/adapter/csvsource"
	"sdkgen/internal/adapter/fs"
	"sdkgen/internal/domain"
	"sdkgen/internal/logging"
	"sdkgen/internal/port"
	"sdkgen/internal/usecase"
)

// loadTable finds and reads the function table configured for the root dir.
func loadTable(ctx context.Context, cfg *config.Config, root string) ([]domain.SymbolRow, string, error) {
	dbDir := config.ResolvePath(root, cfg.Database.Path)

	walker := fs.NewWalker([]string{cfg.Database.FunctionsGlob}, cfg.Database.Excludes)
	table, err := fs.FindTable(walker, dbDir, cfg.Database.FunctionsGlob)
	if err != nil {
		return nil, "", err
	}

	var source port.RowSource = csvsource.NewSource(table.Path)
	rows, err := source.Rows()
	if err != nil {
		return nil, "", err
	}

	logging.FromContext(ctx).Debug("loaded function table", "path", table.Path, "rows", len(rows))
	return rows, table.Path, nil
}

// newExtractUseCase wires the analyzer components from configuration.
func newExtractUseCase(ctx context.Context, cfg *config.Config) (*usecase.ExtractUseCase, error) {
	fallback, err := cfg.AssumedConvention()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	types := analyzer.NewTypeNormalizer(cfg.Extract.TypeReplacements)
	return usecase.NewExtractUseCase(
		analyzer.NewConventionResolver(fallback, logging.FromContext(ctx)),
		analyzer.NewArgsExtractor(cfg.Extract.ReceiverMarker, types),
		analyzer.NewClassifier(types),
		analyzer.NewReceiverSuffixFilter(cfg.Extract.ReceiverMarker),
	), nil
}
