// Package render writes C++ bindings for classified classes.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"gitlab.com/tozd/go/errors"

	"sdkgen/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options are the generator switches exposed to the templates.
type Options struct {
	UseStaticInline bool
	WrapVirtuals    bool
	Category        string
}

// Renderer is a port.Renderer writing a header and a source file per class.
type Renderer struct {
	outputDir string
	opts      Options
	tmpl      *template.Template
}

type templateData struct {
	Class      string
	File       string
	Result     *domain.GroupedResult
	Options    Options
	FwdDeclare []string
}

func NewRenderer(outputDir string, opts Options) (*Renderer, error) {
	tmpl, err := template.New("").
		Funcs(template.FuncMap{"hookInstall": hookInstall}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{outputDir: outputDir, opts: opts, tmpl: tmpl}, nil
}

// FileName returns the base file name used for class: template brackets
// become underscores and the leading "C" of the class naming scheme is dropped.
func FileName(class string) string {
	name := strings.NewReplacer("<", "_", ">", "_").Replace(class)
	return strings.TrimPrefix(name, "C")
}

// Render writes <File>.h and <File>.cpp and returns their paths.
func (r *Renderer) Render(class string, result *domain.GroupedResult) ([]string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, errors.Errorf("failed to create output directory: %w", err)
	}

	data := templateData{
		Class:      class,
		File:       FileName(class),
		Result:     result,
		Options:    r.opts,
		FwdDeclare: forwardDeclarations(class, result),
	}

	var written []string
	for _, out := range []struct{ tmpl, ext string }{
		{"header.h.tmpl", "h"},
		{"source.cpp.tmpl", "cpp"},
	} {
		var buf bytes.Buffer
		if err := r.tmpl.ExecuteTemplate(&buf, out.tmpl, data); err != nil {
			return written, errors.Errorf("rendering %s for %s: %w", out.tmpl, class, err)
		}
		buf.WriteByte('\n')

		path := filepath.Join(r.outputDir, data.File+"."+out.ext)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return written, errors.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// hookInstall renders the hook registration line of one function.
func hookInstall(class string, f domain.FunctionDescriptor) string {
	name := f.Name
	switch {
	case f.IsCtor():
		name = "Constructor"
	case f.IsDtor():
		name = "Destructor"
	}

	opts := ""
	if !f.IsHooked {
		opts = ", { .reversed = false }"
	}

	if f.IsOverloaded {
		return fmt.Sprintf("RH_ScopedOverloadedInstall(%s, \"\", %s, %s%s);", name, f.Address, signature(class, f), opts)
	}
	return fmt.Sprintf("RH_ScopedInstall(%s, %s%s);", name, f.Address, opts)
}

// signature returns the function pointer type used to pick an overload.
func signature(class string, f domain.FunctionDescriptor) string {
	if f.IsMethod() {
		return fmt.Sprintf("%s(%s::*)(%s)", f.RetType, class, f.ParamTypes())
	}
	return fmt.Sprintf("%s(*)(%s)", f.RetType, f.ParamTypes())
}

var builtinTypes = map[string]bool{
	"bool": true, "char": true, "int": true, "float": true, "double": true,
	"long": true, "long long": true, "short": true, "unsigned char": true,
	"unsigned int": true, "unsigned long": true, "unsigned long long": true,
	"unsigned short": true, "void": true,
}

// forwardDeclarations lists the game classes referenced through pointers or
// references in the class's signatures.
func forwardDeclarations(class string, result *domain.GroupedResult) []string {
	seen := make(map[string]bool)
	add := func(typ string) {
		if !strings.ContainsAny(typ, "*&") {
			return
		}
		base := strings.TrimSpace(strings.NewReplacer("*", "", "&", "", "const ", "").Replace(typ))
		if base == class || builtinTypes[base] || !strings.HasPrefix(base, "C") || strings.ContainsAny(base, "<:") {
			return
		}
		seen[base] = true
	}

	for _, f := range result.All() {
		add(f.RetType)
		for _, p := range f.Params {
			add(p.Type)
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
