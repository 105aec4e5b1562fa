package expression

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Identifier character classes follow the Unicode ID_Start / ID_Continue
// derived properties, built from the character database tables so they
// track the Unicode version of the toolchain.
var (
	idStartTable = rangetable.Merge(
		unicode.L,
		unicode.Nl,
		unicode.Other_ID_Start,
	)

	idContinueTable = rangetable.Merge(
		unicode.L,
		unicode.Nl,
		unicode.Other_ID_Start,
		unicode.Mn,
		unicode.Mc,
		unicode.Nd,
		unicode.Pc,
		unicode.Other_ID_Continue,
	)
)

func isIDStart(ch rune) bool {
	return unicode.Is(idStartTable, ch) &&
		!unicode.In(ch, unicode.Pattern_Syntax, unicode.Pattern_White_Space)
}

func isIDContinue(ch rune) bool {
	return unicode.Is(idContinueTable, ch) &&
		!unicode.In(ch, unicode.Pattern_Syntax, unicode.Pattern_White_Space)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func hexValue(ch rune) byte {
	switch {
	case isDigit(ch):
		return byte(ch - '0')
	case 'a' <= ch && ch <= 'f':
		return byte(ch-'a') + 10
	}

	return byte(ch-'A') + 10
}
