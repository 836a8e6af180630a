package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkgen/internal/domain"
)

func pedResult() *domain.GroupedResult {
	dtor := domain.FunctionDescriptor{
		Class: "CPed", Name: "~CPed", Address: "0x5E8620", RetType: "CPed*",
		VTIndex: 0, CC: domain.Thiscall, Category: domain.VirtualDestructor, IsHooked: true,
	}
	return &domain.GroupedResult{
		Class:      "CPed",
		Destructor: &dtor,
		Constructors: []domain.FunctionDescriptor{{
			Class: "CPed", Name: "CPed", Address: "0x5E8030", RetType: "CPed*",
			VTIndex: domain.NotVirtual, CC: domain.Thiscall, Category: domain.Constructor, IsHooked: true,
			Params: []domain.Param{{Type: "ePedType", Name: "pedType"}},
		}},
		Virtuals: []domain.FunctionDescriptor{{
			Class: "CPed", Name: "ProcessControl", Address: "0x5E8A20", RetType: "void",
			VTIndex: 3, CC: domain.Thiscall, Category: domain.Virtual,
		}},
		Methods: []domain.FunctionDescriptor{
			{
				Class: "CPed", Name: "Say", Address: "0x5EFFE0", RetType: "bool",
				VTIndex: domain.NotVirtual, CC: domain.Thiscall, Category: domain.Method, IsOverloaded: true,
				Params: []domain.Param{{Type: "uint16", Name: "id"}},
			},
			{
				Class: "CPed", Name: "AttachTo", Address: "0x5E7CB0", RetType: "void",
				VTIndex: domain.NotVirtual, CC: domain.Thiscall, Category: domain.Method,
				Params: []domain.Param{{Type: "CEntity*", Name: "entity"}},
			},
		},
		Statics: []domain.FunctionDescriptor{{
			Class: "CPed", Name: "Initialise", Address: "0x5E8A00", RetType: "void",
			VTIndex: domain.NotVirtual, CC: domain.Cdecl, Category: domain.Static,
		}},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Ped", FileName("CPed"))
	assert.Equal(t, "Pool_CPed_", FileName("CPool<CPed>"))
	assert.Equal(t, "RenderWare", FileName("RenderWare"))
}

func TestRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir, Options{Category: "Entity/Ped", WrapVirtuals: true})
	require.NoError(t, err)

	files, err := r.Render("CPed", pedResult())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "Ped.h"), filepath.Join(dir, "Ped.cpp")}, files)

	header, err := os.ReadFile(files[0])
	require.NoError(t, err)
	h := string(header)
	assert.Contains(t, h, "class CEntity;")
	assert.Contains(t, h, "class CPed {")
	assert.Contains(t, h, "    CPed(ePedType pedType);")
	assert.Contains(t, h, "    virtual ~CPed();")
	assert.Contains(t, h, "    virtual void ProcessControl(); // vt 3")
	assert.Contains(t, h, "    static void Initialise();")
	assert.Contains(t, h, "ProcessControl_Reversed()")

	source, err := os.ReadFile(files[1])
	require.NoError(t, err)
	cpp := string(source)
	assert.Contains(t, cpp, `#include "Ped.h"`)
	assert.Contains(t, cpp, `RH_ScopedCategory("Entity/Ped");`)
	assert.Contains(t, cpp, "RH_ScopedInstall(Constructor, 0x5E8030);")
	assert.Contains(t, cpp, "RH_ScopedInstall(Destructor, 0x5E8620);")
	assert.Contains(t, cpp, "RH_ScopedInstall(ProcessControl, 0x5E8A20, { .reversed = false });")
	assert.Contains(t, cpp, `RH_ScopedOverloadedInstall(Say, "", 0x5EFFE0, bool(CPed::*)(uint16), { .reversed = false });`)
	assert.Contains(t, cpp, "plugin::CallMethod<0x5E8030, CPed*, ePedType>(this, pedType);")
	assert.Contains(t, cpp, "return plugin::CallMethodAndReturn<bool, 0x5EFFE0, CPed*, uint16>(this, id);")
	assert.Contains(t, cpp, "void CPed::Initialise() {")

	// The destructor is registered before everything else.
	assert.Less(t, strings.Index(cpp, "Destructor, 0x5E8620"), strings.Index(cpp, "Constructor, 0x5E8030"))
}

func TestRenderer_StaticInline(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir, Options{UseStaticInline: true})
	require.NoError(t, err)

	files, err := r.Render("CPed", pedResult())
	require.NoError(t, err)

	header, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(header), "static inline void Initialise() {")
	assert.Contains(t, string(header), "plugin::Call<0x5E8A00>();")
	assert.NotContains(t, string(header), "_Reversed")

	source, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.NotContains(t, string(source), "CPed::Initialise() {")
}

func TestHookInstall_Static(t *testing.T) {
	f := domain.FunctionDescriptor{
		Name: "Load", Address: "0x1", RetType: "bool", CC: domain.Cdecl, Category: domain.Static, IsOverloaded: true,
		Params: []domain.Param{{Type: "int32", Name: "slot"}},
	}
	assert.Equal(t, `RH_ScopedOverloadedInstall(Load, "", 0x1, bool(*)(int32), { .reversed = false });`, hookInstall("CPed", f))
}
