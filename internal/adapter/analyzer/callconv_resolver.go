package analyzer

import (
	"log/slog"

	"sdkgen/internal/domain"
)

// ConventionResolver maps raw convention codes to known conventions, falling
// back to an assumed convention when one is configured.
type ConventionResolver struct {
	fallback *domain.CallingConvention
	logger   *slog.Logger
}

// NewConventionResolver creates a resolver. A nil fallback makes unknown codes
// fatal.
func NewConventionResolver(fallback *domain.CallingConvention, logger *slog.Logger) *ConventionResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConventionResolver{fallback: fallback, logger: logger}
}

// Resolve returns the convention for code. Unknown codes resolve to the
// fallback with a warning naming sym, or fail with a
// *domain.UnknownConventionError when there is no fallback.
func (r *ConventionResolver) Resolve(code string, sym domain.SymbolRef) (domain.CallingConvention, error) {
	if cc, ok := domain.ParseCallingConvention(code); ok {
		return cc, nil
	}

	if r.fallback == nil {
		return 0, &domain.UnknownConventionError{Symbol: sym, Code: code}
	}

	r.logger.Warn("invalid calling convention, using assumed convention",
		"symbol", sym.Name,
		"address", sym.Address,
		"cc", code,
		"assumed", r.fallback.String(),
	)
	return *r.fallback, nil
}
