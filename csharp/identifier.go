package csharp

import (
	"strings"
	"unicode"
)

// C# reserved keywords. Contextual keywords (var, record, nameof...) are
// valid identifiers and are not listed.
var reservedWords = map[string]bool{
	"abstract":   true,
	"as":         true,
	"base":       true,
	"bool":       true,
	"break":      true,
	"byte":       true,
	"case":       true,
	"catch":      true,
	"char":       true,
	"checked":    true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"decimal":    true,
	"default":    true,
	"delegate":   true,
	"do":         true,
	"double":     true,
	"else":       true,
	"enum":       true,
	"event":      true,
	"explicit":   true,
	"extern":     true,
	"false":      true,
	"finally":    true,
	"fixed":      true,
	"float":      true,
	"for":        true,
	"foreach":    true,
	"goto":       true,
	"if":         true,
	"implicit":   true,
	"in":         true,
	"int":        true,
	"interface":  true,
	"internal":   true,
	"is":         true,
	"lock":       true,
	"long":       true,
	"namespace":  true,
	"new":        true,
	"null":       true,
	"object":     true,
	"operator":   true,
	"out":        true,
	"override":   true,
	"params":     true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"readonly":   true,
	"ref":        true,
	"return":     true,
	"sbyte":      true,
	"sealed":     true,
	"short":      true,
	"sizeof":     true,
	"stackalloc": true,
	"static":     true,
	"string":     true,
	"struct":     true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"uint":       true,
	"ulong":      true,
	"unchecked":  true,
	"unsafe":     true,
	"ushort":     true,
	"using":      true,
	"virtual":    true,
	"void":       true,
	"volatile":   true,
	"while":      true,
}

// escapeIdentifier prefixes a reserved word with '@' so it can be used as an
// identifier. Names already carrying the prefix are returned unchanged.
func escapeIdentifier(name string) string {
	if reservedWords[name] {
		return "@" + name
	}
	return name
}

// escapeQualified escapes each segment of a dotted name.
func escapeQualified(name string) string {
	if !strings.Contains(name, ".") {
		return escapeIdentifier(name)
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = escapeIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// isIdentifier reports whether name is a valid, unescaped identifier.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
