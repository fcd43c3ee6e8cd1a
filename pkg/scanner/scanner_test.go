package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/pkg/scanner"
	"github.com/emberlang/ember/pkg/token"
)

func scanAll(t *testing.T, source string) []token.Token {
	t.Helper()
	s := scanner.New(source)
	var toks []token.Token
	for {
		tok := s.ScanToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestScanTokenNumbersAndOperators(t *testing.T) {
	toks := scanAll(t, "1 + 2 * 3;")
	require.Equal(t, []token.Type{
		token.Number, token.Plus, token.Number, token.Star, token.Number, token.Semicolon, token.EOF,
	}, types(toks))
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, "3", toks[4].Lexeme)
}

func TestScanTokenKeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll(t, "var classy = class;")
	require.Equal(t, token.Var, toks[0].Type)
	require.Equal(t, token.Identifier, toks[1].Type, "classy is not the keyword class")
	require.Equal(t, token.Equal, toks[2].Type)
	require.Equal(t, token.Class, toks[3].Type)
}

func TestScanTokenString(t *testing.T) {
	toks := scanAll(t, `"hi there"`)
	require.Equal(t, token.String, toks[0].Type)
	require.Equal(t, `"hi there"`, toks[0].Lexeme)
}

func TestScanTokenUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"hi`)
	require.Equal(t, token.Error, toks[0].Type)
	require.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScanTokenUnknownCharacter(t *testing.T) {
	toks := scanAll(t, "@")
	require.Equal(t, token.Error, toks[0].Type)
	require.Equal(t, "Unexpected character.", toks[0].Lexeme)
}

func TestScanTokenCommentsAndWhitespaceSkipped(t *testing.T) {
	toks := scanAll(t, "// a comment\n  1 // trailing\n")
	require.Equal(t, []token.Type{token.Number, token.EOF}, types(toks))
	require.Equal(t, 2, toks[0].Line)
}

func TestScanTokenTwoCharOperators(t *testing.T) {
	toks := scanAll(t, "!= == <= >= = < >")
	require.Equal(t, []token.Type{
		token.BangEqual, token.EqualEqual, token.LessEqual, token.GreaterEqual,
		token.Equal, token.Less, token.Greater, token.EOF,
	}, types(toks))
}

func TestScanTokenLineTrackingAcrossMultilineString(t *testing.T) {
	toks := scanAll(t, "\"a\nb\"\n1")
	require.Equal(t, token.String, toks[0].Type)
	require.Equal(t, token.Number, toks[1].Type)
	require.Equal(t, 3, toks[1].Line)
}
