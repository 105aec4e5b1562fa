package expression

import (
	"errors"
	"testing"
)

type lexerCase struct {
	expectedType    TokenType
	expectedLiteral string
}

func TestTokenize(t *testing.T) {
	table := map[string][]lexerCase{
		`pi`: {
			{IDENT, "pi"},
		},
		`pi = pi + 10`: {
			{IDENT, "pi"},
			{EQ, "="},
			{IDENT, "pi"},
			{PLUS, "+"},
			{NUMBER, "10"},
		},
		`a = -5, b = 1.5e3`: {
			{IDENT, "a"},
			{EQ, "="},
			{NUMBER, "-5"},
			{COMMA, ","},
			{IDENT, "b"},
			{EQ, "="},
			{NUMBER, "1.5e3"},
		},
		`10 -5`: {
			{NUMBER, "10"},
			{MINUS, "-"},
			{NUMBER, "5"},
		},
		`{"a": 9, "b": "str"}`: {
			{LBRACE, "{"},
			{STRING, "a"},
			{COLON, ":"},
			{NUMBER, "9"},
			{COMMA, ","},
			{STRING, "b"},
			{COLON, ":"},
			{STRING, "str"},
			{RBRACE, "}"},
		},
		`<<1, 2>>`: {
			{LTLT, "<<"},
			{NUMBER, "1"},
			{COMMA, ","},
			{NUMBER, "2"},
			{GTGT, ">>"},
		},
		`a <= b`: {
			{IDENT, "a"},
			{LTE, "<="},
			{IDENT, "b"},
		},
		`>= 42`: {
			{GTE, ">="},
			{NUMBER, "42"},
		},
		`== "x"`: {
			{EQEQ, "=="},
			{STRING, "x"},
		},
		`between 1 and 5`: {
			{BETWEEN, "between"},
			{NUMBER, "1"},
			{AND, "and"},
			{NUMBER, "5"},
		},
		`BEGINS_WITH "0"`: {
			{BEGINSWITH, "BEGINS_WITH"},
			{STRING, "0"},
		},
		`begins_with "0"`: {
			{BEGINSWITH, "begins_with"},
			{STRING, "0"},
		},
		"map.`Do you have spaces?`": {
			{IDENT, "map"},
			{DOT, "."},
			{QUOTED, "Do you have spaces?"},
		},
		"`back``tick`": {
			{QUOTED, "back`tick"},
		},
		`families[0].parents`: {
			{IDENT, "families"},
			{LBRACKET, "["},
			{NUMBER, "0"},
			{RBRACKET, "]"},
			{DOT, "."},
			{IDENT, "parents"},
		},
		`list_append(a, ["x"])`: {
			{IDENT, "list_append"},
			{LPAREN, "("},
			{IDENT, "a"},
			{COMMA, ","},
			{LBRACKET, "["},
			{STRING, "x"},
			{RBRACKET, "]"},
			{RPAREN, ")"},
		},
		`"tab\tnewline\n"`: {
			{STRING, "tab\tnewline\n"},
		},
		`"é😀"`: {
			{STRING, "é\U0001F600"},
		},
		`b"\x00\xff"`: {
			{BINARY, "\x00\xff"},
		},
		`b'raw bytes'`: {
			{BINARY, "raw bytes"},
		},
		`b64"aGVsbG8="`: {
			{BINARY, "hello"},
		},
		`名前 = "太郎"`: {
			{IDENT, "名前"},
			{EQ, "="},
			{STRING, "太郎"},
		},
	}

	for input, tests := range table {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatalf("for %s: unexpected lex error: %v", input, err)
		}

		if len(tokens) != len(tests)+1 {
			t.Fatalf("for %s: token count wrong. expected=%d, got=%d",
				input, len(tests)+1, len(tokens))
		}

		for i, tt := range tests {
			tok := tokens[i]

			if tok.Type != tt.expectedType {
				t.Fatalf("for %s: tokens[%d] - token type wrong. expected=%q, got=%q",
					input, i, tt.expectedType, tok.Type)
			}

			if tok.Literal != tt.expectedLiteral {
				t.Fatalf("for %s: tokens[%d] - literal wrong. expected=%q, got=%q",
					input, i, tt.expectedLiteral, tok.Literal)
			}
		}

		if tokens[len(tokens)-1].Type != EOF {
			t.Fatalf("for %s: last token is not EOF. got=%q", input, tokens[len(tokens)-1].Type)
		}
	}
}

func TestTokenizeBinaryEscapes(t *testing.T) {
	table := map[string]string{
		`b"\n\r\t\0\\\'\""`: "\n\r\t\x00\\'\"",
		`b"a\x20b"`:         "a b",
		"b\"split\\\n  line\"": "splitline",
	}

	for input, expected := range table {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatalf("for %s: unexpected lex error: %v", input, err)
		}

		if tokens[0].Type != BINARY {
			t.Fatalf("for %s: token type wrong. expected=%q, got=%q", input, BINARY, tokens[0].Type)
		}

		if tokens[0].Literal != expected {
			t.Fatalf("for %s: bytes wrong. expected=%q, got=%q", input, expected, tokens[0].Literal)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	table := map[string]LexErrorKind{
		`"unterminated`:   LexUnterminatedString,
		`"bad \q escape"`: LexInvalidEscape,
		`"\u12`:           LexUnterminatedString,
		`b"open`:          LexUnterminatedBinary,
		`b"\xZZ"`:         LexInvalidEscape,
		"b'line\nbreak'":  LexUnterminatedBinary,
		"`open":           LexUnterminatedString,
		`b64"not base64"`: LexInvalidEscape,
		`@`:               LexUnexpectedChar,
	}

	for input, kind := range table {
		_, err := Tokenize(input)
		if err == nil {
			t.Fatalf("for %s: expected lex error, got none", input)
		}

		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("for %s: error is not *LexError. got=%T", input, err)
		}

		if lexErr.Kind != kind {
			t.Fatalf("for %s: error kind wrong. expected=%v, got=%v", input, kind, lexErr.Kind)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	input := `pi = pi + 10, families[0].parents = list_append(families[0].parents, ["grandpa"])`

	for n := 0; n < b.N; n++ {
		if _, err := Tokenize(input); err != nil {
			b.Fatal(err)
		}
	}
}
