package port

import "sdkgen/internal/domain"

// Renderer turns a classified class into generated source files.
type Renderer interface {
	// Render writes the bindings for one class and returns the written paths.
	Render(class string, result *domain.GroupedResult) ([]string, error)
}
