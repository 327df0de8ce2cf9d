package tagdb

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Table and column names cannot be bound as parameters, so they are
// restricted to plain identifiers and always quoted.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Condition keys may name the table as well, as in users.name
var qualifiedPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

func validQualified(s string) bool {
	return qualifiedPattern.MatchString(s)
}

// quoteIdentifier uses backticks. A double-quoted name that matches no
// column is read by SQLite as a string literal; a backticked one never is.
func quoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func quoteQualified(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}

	return strings.Join(parts, ".")
}

// Statement is a built statement. Values are bound separately.
type Statement interface {
	GenerateCode() string
}

type CreateTableStatement struct {
	name string
	spec string
}

// newCreateTableStatement accepts a table spec such as
// "users (id INTEGER PRIMARY KEY, name TEXT)". The spec is used verbatim
// after checking that it starts with a table name and holds a single
// statement. Everything else is left to the engine.
func newCreateTableStatement(spec string) (*CreateTableStatement, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty table spec", ErrStatementBuild)
	}

	name, ok := scanTableName(spec)
	if !ok {
		return nil, fmt.Errorf("%w: table spec must start with a table name", ErrStatementBuild)
	}

	body, err := singleStatement(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStatementBuild, err)
	}

	return &CreateTableStatement{name: name, spec: body}, nil
}

// scanTableName reads the leading name of a table spec. Bare names and
// names quoted with ", ` or [] are accepted.
func scanTableName(spec string) (string, bool) {
	var end byte
	switch spec[0] {
	case '"', '`':
		end = spec[0]
	case '[':
		end = ']'
	default:
		i := 0
		for i < len(spec) && isIdentifierByte(spec[i]) {
			i++
		}
		if i == 0 || (spec[0] >= '0' && spec[0] <= '9') {
			return "", false
		}
		return spec[:i], true
	}

	for i := 1; i < len(spec); i++ {
		if spec[i] != end {
			continue
		}
		// a doubled quote is part of the name
		if end != ']' && i+1 < len(spec) && spec[i+1] == end {
			i++
			continue
		}
		if i == 1 {
			return "", false
		}
		return spec[1:i], true
	}

	return "", false
}

// singleStatement scans spec the way sqlite3_complete does, skipping
// strings, quoted names and comments. A semicolon may only end the spec;
// it is trimmed off. Unterminated strings and comments are errors.
func singleStatement(spec string) (string, error) {
	end := -1
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		if end >= 0 && !isSpace(c) && !isCommentStart(spec, i) {
			return "", errors.New("table spec holds more than one statement")
		}

		switch {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closing := c
			if c == '[' {
				closing = ']'
			}
			j := strings.IndexByte(spec[i+1:], closing)
			if j < 0 {
				return "", fmt.Errorf("unterminated %c", c)
			}
			i += j + 1
		case strings.HasPrefix(spec[i:], "--"):
			j := strings.IndexByte(spec[i:], '\n')
			if j < 0 {
				return strings.TrimSpace(specBefore(spec, end)), nil
			}
			i += j
		case strings.HasPrefix(spec[i:], "/*"):
			j := strings.Index(spec[i+2:], "*/")
			if j < 0 {
				return "", errors.New("unterminated comment")
			}
			i += j + 3
		case c == ';':
			end = i
		}
	}

	return strings.TrimSpace(specBefore(spec, end)), nil
}

func specBefore(spec string, end int) string {
	if end < 0 {
		return spec
	}

	return spec[:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isCommentStart(spec string, i int) bool {
	return strings.HasPrefix(spec[i:], "--") || strings.HasPrefix(spec[i:], "/*")
}

func (cts CreateTableStatement) GenerateCode() string {
	return "CREATE TABLE IF NOT EXISTS " + cts.spec
}

type DropTableStatement struct {
	name string
}

func newDropTableStatement(name string) (*DropTableStatement, error) {
	name, err := checkTable(name)
	if err != nil {
		return nil, err
	}

	return &DropTableStatement{name: name}, nil
}

func (dts DropTableStatement) GenerateCode() string {
	return "DROP TABLE IF EXISTS " + quoteIdentifier(dts.name)
}

type InsertStatement struct {
	table   string
	columns []string
}

func newInsertStatement(table string, columns []string) (*InsertStatement, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	cols, err := checkColumns(columns)
	if err != nil {
		return nil, err
	}

	return &InsertStatement{table: table, columns: cols}, nil
}

func (is InsertStatement) GenerateCode() string {
	cols := make([]string, len(is.columns))
	placeholders := make([]string, len(is.columns))
	for i, c := range is.columns {
		cols[i] = quoteIdentifier(c)
		placeholders[i] = "?"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(is.table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

type UpdateStatement struct {
	table   string
	columns []string
	where   Conditions
}

func newUpdateStatement(table string, columns []string, where Conditions) (*UpdateStatement, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	cols, err := checkColumns(columns)
	if err != nil {
		return nil, err
	}

	if where.Len() == 0 {
		return nil, ErrEmptyCondition
	}

	return &UpdateStatement{table: table, columns: cols, where: where}, nil
}

func (us UpdateStatement) GenerateCode() string {
	set := make([]string, len(us.columns))
	for i, c := range us.columns {
		set[i] = quoteIdentifier(c) + " = ?"
	}

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quoteIdentifier(us.table), strings.Join(set, ", "), us.where.GenerateCode())
}

type DeleteStatement struct {
	table string
	where Conditions
}

func newDeleteStatement(table string, where Conditions) (*DeleteStatement, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	if where.Len() == 0 {
		return nil, ErrEmptyCondition
	}

	return &DeleteStatement{table: table, where: where}, nil
}

func (ds DeleteStatement) GenerateCode() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdentifier(ds.table), ds.where.GenerateCode())
}

type SelectStatement struct {
	table   string
	columns []ColumnSpec
	where   Conditions
}

// newSelectStatement builds a projection over columns. An empty where
// selects every row.
func newSelectStatement(table string, columns []ColumnSpec, where Conditions) (*SelectStatement, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrStatementBuild)
	}

	cols := make([]ColumnSpec, len(columns))
	for i, c := range columns {
		if !c.Tag.valid() {
			return nil, fmt.Errorf("%w: %s for column %q", ErrUnsupportedType, c.Tag, c.Name)
		}

		name := strings.TrimSpace(c.Name)
		if !validIdentifier(name) {
			return nil, fmt.Errorf("%w: invalid column name %q", ErrStatementBuild, c.Name)
		}
		cols[i] = ColumnSpec{Tag: c.Tag, Name: name}
	}

	return &SelectStatement{table: table, columns: cols, where: where}, nil
}

func (ss SelectStatement) GenerateCode() string {
	cols := make([]string, len(ss.columns))
	for i, c := range ss.columns {
		cols[i] = quoteIdentifier(c.Name)
	}

	where := ""
	if ss.where.Len() > 0 {
		where = " WHERE " + ss.where.GenerateCode()
	}

	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(cols, ", "), quoteIdentifier(ss.table), where)
}

func checkTable(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("%w: empty table name", ErrStatementBuild)
	}

	if !validIdentifier(table) {
		return "", fmt.Errorf("%w: invalid table name %q", ErrStatementBuild, table)
	}

	return table, nil
}

func checkColumns(columns []string) ([]string, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrStatementBuild)
	}

	cols := make([]string, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if !validIdentifier(c) {
			return nil, fmt.Errorf("%w: invalid column name %q", ErrStatementBuild, columns[i])
		}
		cols[i] = c
	}

	return cols, nil
}
