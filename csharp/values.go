package csharp

import (
	"strconv"

	"github.com/broady/smartgen/ir"
)

// supportedValueTypes are the value types whose instances get literal
// values. The shift limit is the largest n for which 1<<n is representable.
var supportedValueTypes = map[ir.SpecialType]int{
	ir.SpecialString:  -1,
	ir.SpecialByte:    7,
	ir.SpecialSByte:   6,
	ir.SpecialInt16:   14,
	ir.SpecialUInt16:  15,
	ir.SpecialInt32:   30,
	ir.SpecialUInt32:  31,
	ir.SpecialInt64:   62,
	ir.SpecialUInt64:  63,
	ir.SpecialDecimal: 62,
	ir.SpecialDouble:  62,
	ir.SpecialSingle:  62,
}

// SupportsValueType reports whether instances with value type s can be
// generated.
func SupportsValueType(s ir.SpecialType) bool {
	_, ok := supportedValueTypes[s]
	return ok
}

// FlagsFit reports whether n flag-style members fit value type s: member 0
// is the zero value and member n-1 takes bit n-2.
func FlagsFit(s ir.SpecialType, n int) bool {
	limit, ok := supportedValueTypes[s]
	if !ok || limit < 0 {
		return false
	}
	return n-2 <= limit
}

// Value returns the value expression of the i-th (zero based) member.
//
// Text enums use the member's own name. Flag enums start with 0 and give
// every following member the next bit. Plain enums number members 0..n-1.
func Value(member string, i int, text, flag bool) string {
	switch {
	case text:
		return NameOf(member)
	case flag && i == 0:
		return "0"
	case flag:
		return strconv.FormatUint(uint64(1)<<uint(i-1), 10)
	default:
		return strconv.Itoa(i)
	}
}
