package tagdb

import (
	"errors"
	"fmt"
	"strings"
)

type CommandKind uint

const (
	CreateCommand CommandKind = iota
	DropCommand
	InsertCommand
	UpdateCommand
	DeleteCommand
	ReadCommand
	GetCommand
)

// Command is one parsed shell command
type Command struct {
	Kind        CommandKind
	Table       string
	Spec        string
	Tables      []string
	Columns     []string
	Values      []Value
	Projection  []ColumnSpec
	Conditions  []string
	Conjunction Conjunction
}

func tokenFromKeyword(k keyword) token {
	return token{
		kind:  keywordKind,
		value: string(k),
	}
}

func tokenFromSymbol(s symbol) token {
	return token{
		kind:  symbolKind,
		value: string(s),
	}
}

func expectToken(tokens []*token, cursor uint, t token) bool {
	if cursor >= uint(len(tokens)) {
		return false
	}

	return t.equals(tokens[cursor])
}

func parseError(tokens []*token, cursor uint, msg string) error {
	if cursor < uint(len(tokens)) {
		c := tokens[cursor]
		return fmt.Errorf("[%d,%d]: %s, got: %s", c.loc.line, c.loc.col, msg, c.value)
	}

	return fmt.Errorf("%s, got end of input", msg)
}

func parseToken(tokens []*token, initialCursor uint, kind tokenKind) (*token, uint, bool) {
	cursor := initialCursor

	if cursor >= uint(len(tokens)) {
		return nil, initialCursor, false
	}

	current := tokens[cursor]
	if current.kind == kind {
		return current, cursor + 1, true
	}

	return nil, initialCursor, false
}

// value := identifier | string | [-] numeric
func parseValue(tokens []*token, initialCursor uint) (string, uint, error) {
	cursor := initialCursor

	sign := ""
	if expectToken(tokens, cursor, tokenFromSymbol(minusSymbol)) {
		sign = "-"
		cursor++

		t, newCursor, ok := parseToken(tokens, cursor, numericKind)
		if !ok {
			return "", initialCursor, parseError(tokens, cursor, "Expected number")
		}
		return sign + t.value, newCursor, nil
	}

	for _, kind := range []tokenKind{stringKind, numericKind, identifierKind} {
		if t, newCursor, ok := parseToken(tokens, cursor, kind); ok {
			return t.value, newCursor, nil
		}
	}

	return "", initialCursor, parseError(tokens, cursor, "Expected value")
}

// column := identifier [: tag]
func parseColumnSpec(tokens []*token, initialCursor uint, tagRequired bool) (string, string, uint, error) {
	cursor := initialCursor

	name, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		return "", "", initialCursor, parseError(tokens, cursor, "Expected column name")
	}
	cursor = newCursor

	if !expectToken(tokens, cursor, tokenFromSymbol(colonSymbol)) {
		if tagRequired {
			return "", "", initialCursor, parseError(tokens, cursor, "Expected colon")
		}
		return name.value, Text.String(), cursor, nil
	}
	cursor++

	tag, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		return "", "", initialCursor, parseError(tokens, cursor, "Expected type")
	}

	return name.value, tag.value, newCursor, nil
}

// assignments := column:tag=value [[,] ...]
func parseAssignments(tokens []*token, initialCursor uint, cmd *Command) (uint, error) {
	cursor := initialCursor

	for {
		if cursor >= uint(len(tokens)) || expectToken(tokens, cursor, tokenFromKeyword(whereKeyword)) {
			break
		}

		if len(cmd.Columns) > 0 && expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
			cursor++
		}

		name, tag, newCursor, err := parseColumnSpec(tokens, cursor, true)
		if err != nil {
			return initialCursor, err
		}
		cursor = newCursor

		if !expectToken(tokens, cursor, tokenFromSymbol(eqSymbol)) {
			return initialCursor, parseError(tokens, cursor, "Expected =")
		}
		cursor++

		value, newCursor, err := parseValue(tokens, cursor)
		if err != nil {
			return initialCursor, err
		}
		cursor = newCursor

		cmd.Columns = append(cmd.Columns, name)
		cmd.Values = append(cmd.Values, RawValue{TagName: tag, Payload: value})
	}

	if len(cmd.Columns) == 0 {
		return initialCursor, parseError(tokens, cursor, "Expected at least one column")
	}

	return cursor, nil
}

// where := WHERE key=value [(AND|OR) key=value ...]
func parseWhere(tokens []*token, initialCursor uint, cmd *Command) (uint, error) {
	cursor := initialCursor

	if !expectToken(tokens, cursor, tokenFromKeyword(whereKeyword)) {
		return initialCursor, parseError(tokens, cursor, "Expected WHERE")
	}
	cursor++

	var conj *Conjunction
	for {
		key, newCursor, ok := parseToken(tokens, cursor, identifierKind)
		if !ok {
			return initialCursor, parseError(tokens, cursor, "Expected column name")
		}
		cursor = newCursor

		if !expectToken(tokens, cursor, tokenFromSymbol(eqSymbol)) {
			return initialCursor, parseError(tokens, cursor, "Expected =")
		}
		cursor++

		value, newCursor, err := parseValue(tokens, cursor)
		if err != nil {
			return initialCursor, err
		}
		cursor = newCursor

		cmd.Conditions = append(cmd.Conditions, key.value+"="+value)

		next := And
		switch {
		case expectToken(tokens, cursor, tokenFromKeyword(andKeyword)):
		case expectToken(tokens, cursor, tokenFromKeyword(orKeyword)):
			next = Or
		default:
			if conj != nil {
				cmd.Conjunction = *conj
			}
			return cursor, nil
		}

		if conj != nil && *conj != next {
			return initialCursor, parseError(tokens, cursor, "Cannot mix AND and OR")
		}
		conj = &next
		cursor++
	}
}

func parseIdentifierList(tokens []*token, initialCursor uint) ([]string, uint, error) {
	cursor := initialCursor

	var names []string
	for {
		name, newCursor, ok := parseToken(tokens, cursor, identifierKind)
		if !ok {
			return nil, initialCursor, parseError(tokens, cursor, "Expected table name")
		}
		cursor = newCursor
		names = append(names, name.value)

		if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
			return names, cursor, nil
		}
		cursor++
	}
}

func parseTable(tokens []*token, cursor uint) (string, uint, error) {
	name, newCursor, ok := parseToken(tokens, cursor, identifierKind)
	if !ok {
		return "", cursor, parseError(tokens, cursor, "Expected table name")
	}

	return name.value, newCursor, nil
}

func parseProjection(tokens []*token, initialCursor uint, cmd *Command) (uint, error) {
	cursor := initialCursor

	for {
		name, tagName, newCursor, err := parseColumnSpec(tokens, cursor, false)
		if err != nil {
			return initialCursor, err
		}

		tag, err := ParseTag(tagName)
		if err != nil {
			return initialCursor, parseError(tokens, newCursor-1, err.Error())
		}
		cursor = newCursor
		cmd.Projection = append(cmd.Projection, ColumnSpec{Tag: tag, Name: name})

		if !expectToken(tokens, cursor, tokenFromSymbol(commaSymbol)) {
			return cursor, nil
		}
		cursor++
	}
}

// ParseCommand parses one shell command line
func ParseCommand(source string) (*Command, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	first, cursor, ok := parseToken(tokens, 0, keywordKind)
	if !ok {
		return nil, parseError(tokens, 0, "Expected command")
	}

	cmd := &Command{}
	switch keyword(first.value) {
	case createKeyword:
		cmd.Kind = CreateCommand
		// The table spec is SQL, pass it through untouched
		trimmed := strings.TrimSpace(source)
		cmd.Spec = strings.TrimSpace(trimmed[len(createKeyword):])
		if cmd.Spec == "" {
			return nil, errors.New("Expected table spec")
		}
		return cmd, nil
	case dropKeyword:
		cmd.Kind = DropCommand
		cmd.Tables, cursor, err = parseIdentifierList(tokens, cursor)
	case insertKeyword:
		cmd.Kind = InsertCommand
		cmd.Table, cursor, err = parseTable(tokens, cursor)
		if err == nil {
			cursor, err = parseAssignments(tokens, cursor, cmd)
		}
	case updateKeyword:
		cmd.Kind = UpdateCommand
		cmd.Table, cursor, err = parseTable(tokens, cursor)
		if err == nil {
			if !expectToken(tokens, cursor, tokenFromKeyword(setKeyword)) {
				return nil, parseError(tokens, cursor, "Expected SET")
			}
			cursor, err = parseAssignments(tokens, cursor+1, cmd)
		}
		if err == nil {
			cursor, err = parseWhere(tokens, cursor, cmd)
		}
	case deleteKeyword:
		cmd.Kind = DeleteCommand
		cmd.Table, cursor, err = parseTable(tokens, cursor)
		if err == nil {
			cursor, err = parseWhere(tokens, cursor, cmd)
		}
	case readKeyword, getKeyword:
		cmd.Kind = ReadCommand
		if keyword(first.value) == getKeyword {
			cmd.Kind = GetCommand
		}

		cmd.Table, cursor, err = parseTable(tokens, cursor)
		if err == nil {
			cursor, err = parseProjection(tokens, cursor, cmd)
		}
		if err == nil && cmd.Kind == GetCommand && len(cmd.Projection) != 1 {
			return nil, errors.New("get takes exactly one column")
		}
		if err == nil && cursor < uint(len(tokens)) {
			cursor, err = parseWhere(tokens, cursor, cmd)
		}
	default:
		return nil, parseError(tokens, 0, "Expected command")
	}

	if err != nil {
		return nil, err
	}

	if cursor < uint(len(tokens)) {
		return nil, parseError(tokens, cursor, "Unexpected trailing input")
	}

	return cmd, nil
}
