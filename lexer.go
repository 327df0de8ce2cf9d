package tagdb

import (
	"fmt"
	"strings"
)

// location of the token in source code
type location struct {
	line uint
	col  uint
}

// shell command keywords
type keyword string

const (
	createKeyword keyword = "create"
	dropKeyword   keyword = "drop"
	insertKeyword keyword = "insert"
	updateKeyword keyword = "update"
	setKeyword    keyword = "set"
	deleteKeyword keyword = "delete"
	readKeyword   keyword = "read"
	getKeyword    keyword = "get"
	whereKeyword  keyword = "where"
	andKeyword    keyword = "and"
	orKeyword     keyword = "or"
)

var keywords = []keyword{
	createKeyword,
	dropKeyword,
	insertKeyword,
	updateKeyword,
	setKeyword,
	deleteKeyword,
	readKeyword,
	getKeyword,
	whereKeyword,
	andKeyword,
	orKeyword,
}

type symbol string

const (
	semicolonSymbol  symbol = ";"
	colonSymbol      symbol = ":"
	asteriskSymbol   symbol = "*"
	commaSymbol      symbol = ","
	periodSymbol     symbol = "."
	leftParenSymbol  symbol = "("
	rightParenSymbol symbol = ")"
	eqSymbol         symbol = "="
	neqSymbol        symbol = "<>"
	neqSymbol2       symbol = "!="
	concatSymbol     symbol = "||"
	plusSymbol       symbol = "+"
	minusSymbol      symbol = "-"
	slashSymbol      symbol = "/"
	percentSymbol    symbol = "%"
	ltSymbol         symbol = "<"
	lteSymbol        symbol = "<="
	gtSymbol         symbol = ">"
	gteSymbol        symbol = ">="
)

var symbols = []symbol{
	eqSymbol,
	neqSymbol,
	neqSymbol2,
	ltSymbol,
	lteSymbol,
	gtSymbol,
	gteSymbol,
	concatSymbol,
	plusSymbol,
	minusSymbol,
	slashSymbol,
	percentSymbol,
	commaSymbol,
	periodSymbol,
	colonSymbol,
	leftParenSymbol,
	rightParenSymbol,
	semicolonSymbol,
	asteriskSymbol,
}

type tokenKind uint

const (
	keywordKind tokenKind = iota
	symbolKind
	identifierKind
	stringKind
	numericKind
)

type token struct {
	value string
	kind  tokenKind
	loc   location
}

func (t *token) equals(other *token) bool {
	return t.value == other.value && t.kind == other.kind
}

// cursor indicates the current position of the lexer
type cursor struct {
	pointer uint
	loc     location
}

// longestMatch iterates through a source string starting at the given
// cursor to find the longest matching substring among the provided
// options
func longestMatch(source string, ic cursor, options []string) string {
	var value []byte
	var skipList []int
	var match string

	cur := ic

	for cur.pointer < uint(len(source)) {
		value = append(value, strings.ToLower(string(source[cur.pointer]))...)
		cur.pointer++

	match:
		for i, option := range options {
			for _, skip := range skipList {
				if i == skip {
					continue match
				}
			}

			if option == string(value) {
				skipList = append(skipList, i)
				if len(option) > len(match) {
					match = option
				}

				continue
			}

			tooLong := len(value) > len(option)
			if tooLong || string(value) != option[:len(value)] {
				skipList = append(skipList, i)
			}
		}

		if len(skipList) == len(options) {
			break
		}
	}

	return match
}

func isIdentifierByte(c byte) bool {
	isAlphabetical := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	isNumeric := c >= '0' && c <= '9'
	// Bytes of multi-byte UTF-8 sequences count as letters
	return isAlphabetical || isNumeric || c == '_' || c == '$' || c >= 0x80
}

func lexSymbol(source string, ic cursor) (*token, cursor, bool) {
	c := source[ic.pointer]
	cur := ic
	cur.pointer++
	cur.loc.col++

	switch c {
	// Syntax that should be thrown away
	case '\n':
		cur.loc.line++
		cur.loc.col = 0
		fallthrough
	case '\r', '\t', ' ':
		return nil, cur, true
	}

	var options []string
	for _, s := range symbols {
		options = append(options, string(s))
	}

	// Use `ic`, not `cur`
	match := longestMatch(source, ic, options)
	if match == "" {
		return nil, ic, false
	}

	cur.pointer = ic.pointer + uint(len(match))
	cur.loc.col = ic.loc.col + uint(len(match))

	if match == string(neqSymbol2) {
		match = string(neqSymbol)
	}

	return &token{
		value: match,
		loc:   ic.loc,
		kind:  symbolKind,
	}, cur, true
}

func lexKeyword(source string, ic cursor) (*token, cursor, bool) {
	cur := ic

	var options []string
	for _, k := range keywords {
		options = append(options, string(k))
	}

	match := longestMatch(source, ic, options)
	if match == "" {
		return nil, ic, false
	}

	end := ic.pointer + uint(len(match))
	// "order" is an identifier, not "or" followed by "der"
	if end < uint(len(source)) && isIdentifierByte(source[end]) {
		return nil, ic, false
	}

	cur.pointer = end
	cur.loc.col = ic.loc.col + uint(len(match))

	return &token{
		value: match,
		kind:  keywordKind,
		loc:   ic.loc,
	}, cur, true
}

func lexNumeric(source string, ic cursor) (*token, cursor, bool) {
	cur := ic

	periodFound := false
	expMarkerFound := false

	for ; cur.pointer < uint(len(source)); cur.pointer++ {
		c := source[cur.pointer]

		isDigit := c >= '0' && c <= '9'
		isPeriod := c == '.'
		isExpMarker := c == 'e' || c == 'E'

		// Must start with a digit or period
		if cur.pointer == ic.pointer {
			if !isDigit && !isPeriod {
				return nil, ic, false
			}

			// A lone period is a symbol
			if isPeriod && (cur.pointer+1 >= uint(len(source)) || source[cur.pointer+1] < '0' || source[cur.pointer+1] > '9') {
				return nil, ic, false
			}

			periodFound = isPeriod
			continue
		}

		if isPeriod {
			if periodFound {
				return nil, ic, false
			}

			periodFound = true
			continue
		}

		if isExpMarker {
			if expMarkerFound {
				return nil, ic, false
			}

			// No periods allowed after expMarker
			periodFound = true
			expMarkerFound = true

			// expMarker must be followed by digits
			if cur.pointer == uint(len(source)-1) {
				return nil, ic, false
			}

			cNext := source[cur.pointer+1]
			if cNext == '-' || cNext == '+' {
				cur.pointer++
			}
			continue
		}

		if !isDigit {
			break
		}
	}
	cur.loc.col = ic.loc.col + (cur.pointer - ic.pointer)

	// 30abc is an identifier
	if cur.pointer < uint(len(source)) && isIdentifierByte(source[cur.pointer]) {
		return nil, ic, false
	}

	return &token{
		value: source[ic.pointer:cur.pointer],
		loc:   ic.loc,
		kind:  numericKind,
	}, cur, true
}

// lexCharacterDelimited looks through a source string starting at the
// given cursor to find a start- and end- delimiter. The delimiter can
// be escaped by preceding it with itself.
func lexCharacterDelimited(source string, ic cursor, delimiter byte, kind tokenKind) (*token, cursor, bool) {
	cur := ic

	if len(source[cur.pointer:]) == 0 {
		return nil, ic, false
	}

	if source[cur.pointer] != delimiter {
		return nil, ic, false
	}

	cur.loc.col++
	cur.pointer++

	var value []byte
	for ; cur.pointer < uint(len(source)); cur.pointer++ {
		c := source[cur.pointer]

		if c == delimiter {
			// SQL escapes are via double characters, not backslash.
			if cur.pointer+1 >= uint(len(source)) || source[cur.pointer+1] != delimiter {
				cur.pointer++
				cur.loc.col++
				return &token{
					value: string(value),
					loc:   ic.loc,
					kind:  kind,
				}, cur, true
			}
			cur.pointer++
			cur.loc.col++
		}

		value = append(value, c)
		cur.loc.col++
	}

	return nil, ic, false
}

func lexIdentifier(source string, ic cursor) (*token, cursor, bool) {
	// Handle separately if is a double-quoted identifier
	if token, newCursor, ok := lexCharacterDelimited(source, ic, '"', identifierKind); ok {
		return token, newCursor, true
	}

	cur := ic

	c := source[cur.pointer]
	isDigit := c >= '0' && c <= '9'
	if !isIdentifierByte(c) || c == '$' {
		return nil, ic, false
	}

	var value []byte
	for ; cur.pointer < uint(len(source)); cur.pointer++ {
		c = source[cur.pointer]
		if !isIdentifierByte(c) {
			break
		}

		value = append(value, c)
		cur.loc.col++
	}

	// Identifiers may start with a digit only when a letter follows, as
	// in a value like 30abc
	if isDigit && strings.IndexFunc(string(value), func(r rune) bool { return r < '0' || r > '9' }) < 0 {
		return nil, ic, false
	}

	return &token{
		value: string(value),
		loc:   ic.loc,
		kind:  identifierKind,
	}, cur, true
}

func lexString(source string, ic cursor) (*token, cursor, bool) {
	return lexCharacterDelimited(source, ic, '\'', stringKind)
}

type lexer func(string, cursor) (*token, cursor, bool)

// lex splits an input string into a list of tokens. Each lexer is tried
// in order at the cursor; the first one that matches emits a token and
// moves the cursor, and lexing restarts from there.
func lex(source string) ([]*token, error) {
	var tokens []*token
	cur := cursor{}

lex:
	for cur.pointer < uint(len(source)) {
		lexers := []lexer{lexKeyword, lexNumeric, lexSymbol, lexString, lexIdentifier}
		for _, l := range lexers {
			if token, newCursor, ok := l(source, cur); ok {
				cur = newCursor

				// Omit nil tokens for valid, but empty syntax like newlines
				if token != nil {
					tokens = append(tokens, token)
				}

				continue lex
			}
		}

		hint := ""
		if len(tokens) > 0 {
			hint = " after " + tokens[len(tokens)-1].value
		}
		return nil, fmt.Errorf("Unable to lex token%s, at %d:%d", hint, cur.loc.line, cur.loc.col)
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("Nothing to lex")
	}

	return tokens, nil
}
