// Package typedval implements the typed-value codec: conversion between
// operator-facing text and the raw byte sequences compared against target
// memory, across every supported scalar representation.
package typedval

// Type tags a TypedValue with the representation its bytes were encoded
// from. Ordering of a TypedValue never consults Type; it exists purely to
// drive Encode/Decode/Scan.
type Type int

const (
	Invalid Type = iota
	ASCII
	UTF16BE
	UTF32BE
	HEX
	I32LE
	I32BE
	I64LE
	I64BE
	F32LE
	F32BE
	F64LE
	F64BE
	F32FuzzyLE
)

// names maps the user-facing command tokens (recovered from the original
// ChangeString::PrintCommandUsage command table) onto Type constants.
var names = map[string]Type{
	"ascii":       ASCII,
	"utf16":       UTF16BE,
	"utf32":       UTF32BE,
	"hex":         HEX,
	"int":         I32LE,
	"int_big":     I32BE,
	"long":        I64LE,
	"long_big":    I64BE,
	"float":       F32LE,
	"float_big":   F32BE,
	"double":      F64LE,
	"double_big":  F64BE,
	"float_fuzzy": F32FuzzyLE,
}

var tokens = map[Type]string{
	ASCII:      "ascii",
	UTF16BE:    "utf16",
	UTF32BE:    "utf32",
	HEX:        "hex",
	I32LE:      "int",
	I32BE:      "int_big",
	I64LE:      "long",
	I64BE:      "long_big",
	F32LE:      "float",
	F32BE:      "float_big",
	F64LE:      "double",
	F64BE:      "double_big",
	F32FuzzyLE: "float_fuzzy",
	Invalid:    "invalid",
}

// ParseType resolves a user-facing command token to a Type, returning
// Invalid if the token is unrecognized.
func ParseType(token string) Type {
	if t, ok := names[token]; ok {
		return t
	}
	return Invalid
}

// String returns the canonical command token for t.
func (t Type) String() string {
	if s, ok := tokens[t]; ok {
		return s
	}
	return "invalid"
}

// Footprint returns the fixed byte length for fixed-width types, or -1 for
// variable-width types (ASCII, UTF16BE, UTF32BE, HEX) whose length depends
// on the input text.
func (t Type) Footprint() int {
	switch t {
	case I32LE, I32BE, F32LE, F32BE, F32FuzzyLE:
		return 4
	case I64LE, I64BE, F64LE, F64BE:
		return 8
	default:
		return -1
	}
}
