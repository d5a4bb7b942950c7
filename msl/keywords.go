package msl

import "strings"

// reservedWords are identifiers that cannot be used as names in MSL:
// C++14 keywords, Metal qualifiers and attributes, and names the
// generated code relies on.
var reservedWords = map[string]struct{}{
	// C++ keywords
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {},
	"bitand": {}, "bitor": {}, "bool": {}, "break": {}, "case": {}, "catch": {},
	"char": {}, "char16_t": {}, "char32_t": {}, "class": {}, "compl": {}, "const": {},
	"const_cast": {}, "constexpr": {}, "continue": {}, "decltype": {}, "default": {},
	"delete": {}, "do": {}, "double": {}, "dynamic_cast": {}, "else": {}, "enum": {},
	"explicit": {}, "export": {}, "extern": {}, "false": {}, "float": {}, "for": {},
	"friend": {}, "goto": {}, "if": {}, "inline": {}, "int": {}, "long": {},
	"mutable": {}, "namespace": {}, "new": {}, "noexcept": {}, "not": {}, "not_eq": {},
	"nullptr": {}, "operator": {}, "or": {}, "or_eq": {}, "private": {}, "protected": {},
	"public": {}, "register": {}, "reinterpret_cast": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "static_assert": {}, "static_cast": {},
	"struct": {}, "switch": {}, "template": {}, "this": {}, "thread_local": {},
	"throw": {}, "true": {}, "try": {}, "typedef": {}, "typeid": {}, "typename": {},
	"union": {}, "unsigned": {}, "using": {}, "virtual": {}, "void": {}, "volatile": {},
	"wchar_t": {}, "while": {}, "xor": {}, "xor_eq": {},

	// Metal address spaces, stages and qualifiers
	"device": {}, "constant": {}, "thread": {}, "threadgroup": {}, "threadgroup_imageblock": {},
	"ray_data": {}, "object_data": {}, "kernel": {}, "vertex": {}, "fragment": {},
	"compute": {}, "metal": {}, "half": {}, "uint": {}, "uchar": {}, "ushort": {},
	"ulong": {}, "size_t": {}, "ptrdiff_t": {}, "sampler": {}, "texture": {},
	"array": {}, "array_ref": {}, "vec": {}, "matrix": {}, "packed_vec": {},
	"NAN": {}, "INFINITY": {}, "FLT_MAX": {}, "FLT_MIN": {}, "HALF_MAX": {},

	// Names of the generated code
	"main": {}, "main0": {}, "in": {}, "out": {}, sizesBufferName: {},
}

// typeNamePrefixes are Metal scalar names that, followed by a vector or
// matrix shape, are type names (float4, uint2, half3x3).
var typeNamePrefixes = []string{"bool", "char", "uchar", "short", "ushort", "int", "uint", "long", "ulong", "half", "float"}

// isReserved reports whether name is a keyword or a Metal type name.
func isReserved(name string) bool {
	if _, ok := reservedWords[name]; ok {
		return true
	}
	if strings.HasPrefix(name, "packed_") {
		return true
	}
	for _, p := range typeNamePrefixes {
		rest, ok := strings.CutPrefix(name, p)
		if !ok || rest == "" {
			continue
		}
		if isShape(rest) {
			return true
		}
	}
	return false
}

// isShape reports whether s is a vector size ("2".."4") or a matrix shape
// ("2x3").
func isShape(s string) bool {
	valid := func(c byte) bool { return c >= '2' && c <= '4' }
	switch len(s) {
	case 1:
		return valid(s[0])
	case 3:
		return valid(s[0]) && s[1] == 'x' && valid(s[2])
	}
	return false
}

// escapeName turns a debug name into an identifier that does not clash
// with a reserved word. Names starting with an underscore followed by an
// upper case letter or a second underscore are reserved in C++.
func escapeName(name string) string {
	name = sanitize(name)
	if name == "" {
		return ""
	}
	if isReserved(name) {
		return name + "_"
	}
	if strings.HasPrefix(name, "__") || (len(name) > 1 && name[0] == '_' && name[1] >= 'A' && name[1] <= 'Z') {
		return "m" + name
	}
	return name
}

// sanitize keeps the identifier part of a debug name. Compilers mangle
// function names as "name(args;", which is cut at the parenthesis.
func sanitize(name string) string {
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}
