package domain

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// CallingConvention is one of the conventions the plugin SDK can call through.
type CallingConvention int

const (
	Cdecl CallingConvention = iota + 1
	Stdcall
	Thiscall
	Fastcall
)

type conventionInfo struct {
	name     string
	isMethod bool
	pluginFn string
}

var conventions = map[CallingConvention]conventionInfo{
	Cdecl:    {name: "cdecl", pluginFn: "Call"},
	Stdcall:  {name: "stdcall", pluginFn: "CallStd"},
	Thiscall: {name: "thiscall", isMethod: true, pluginFn: "CallMethod"},
	Fastcall: {name: "fastcall", pluginFn: "CallFast"},
}

// ParseCallingConvention maps a raw convention code to a convention. Both the
// bare name and the keyword spelling are accepted: "thiscall", "__thiscall".
func ParseCallingConvention(code string) (CallingConvention, bool) {
	code = strings.ToLower(strings.TrimLeft(strings.TrimSpace(code), "_"))
	for cc, info := range conventions {
		if info.name == code {
			return cc, true
		}
	}
	return 0, false
}

func (c CallingConvention) String() string {
	if info, ok := conventions[c]; ok {
		return info.name
	}
	return "unknown"
}

// IsMethod reports whether the convention passes an implicit receiver.
func (c CallingConvention) IsMethod() bool {
	return conventions[c].isMethod
}

// IsStatic reports whether the convention has no implicit receiver.
func (c CallingConvention) IsStatic() bool {
	info, ok := conventions[c]
	return ok && !info.isMethod
}

// PluginFn is the plugin SDK call helper used for this convention.
func (c CallingConvention) PluginFn() string {
	return conventions[c].pluginFn
}

func (c CallingConvention) MarshalText() ([]byte, error) {
	if _, ok := conventions[c]; !ok {
		return nil, errors.Errorf("invalid calling convention %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *CallingConvention) UnmarshalText(text []byte) error {
	cc, ok := ParseCallingConvention(string(text))
	if !ok {
		return errors.Errorf("%w: %q", ErrUnknownCallingConvention, string(text))
	}
	*c = cc
	return nil
}
