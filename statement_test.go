package tagdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatement_GenerateCode(t *testing.T) {
	where := ParseConditions([]string{"id=1", "name=Alice"}, Or)

	tests := []struct {
		result string
		stmt   Statement
	}{
		{
			`CREATE TABLE IF NOT EXISTS users (id INTEGER PRIMARY KEY, name TEXT)`,
			&CreateTableStatement{name: "users", spec: "users (id INTEGER PRIMARY KEY, name TEXT)"},
		},
		{
			"DROP TABLE IF EXISTS `users`",
			&DropTableStatement{name: "users"},
		},
		{
			"INSERT INTO `users` (`name`, `age`) VALUES (?, ?)",
			&InsertStatement{table: "users", columns: []string{"name", "age"}},
		},
		{
			"UPDATE `users` SET `name` = ?, `age` = ? WHERE `id` = ? OR `name` = ?",
			&UpdateStatement{table: "users", columns: []string{"name", "age"}, where: where},
		},
		{
			"DELETE FROM `users` WHERE `id` = ? OR `name` = ?",
			&DeleteStatement{table: "users", where: where},
		},
		{
			"SELECT `name`, `age` FROM `users` WHERE `id` = ? OR `name` = ?",
			&SelectStatement{
				table:   "users",
				columns: []ColumnSpec{{Tag: Text, Name: "name"}, {Tag: Number, Name: "age"}},
				where:   where,
			},
		},
		{
			"SELECT `name` FROM `users`",
			&SelectStatement{table: "users", columns: []ColumnSpec{{Tag: Text, Name: "name"}}},
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.result, test.stmt.GenerateCode())
	}
}

func TestNewCreateTableStatement(t *testing.T) {
	stmt, err := newCreateTableStatement("  users (id INTEGER PRIMARY KEY, note TEXT DEFAULT 'a;b')  ")
	assert.Nil(t, err)
	assert.Equal(t, "users", stmt.name)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS users (id INTEGER PRIMARY KEY, note TEXT DEFAULT 'a;b')", stmt.GenerateCode())

	for _, spec := range []string{
		"",
		"   ",
		"users (id INTEGER); DROP TABLE accounts",
		"(id INTEGER)",
		"'users' (id INTEGER)",
		"users (id INTEGER, note TEXT DEFAULT 'unterminated)",
		"users (id INTEGER) /* open",
		"1users (id INTEGER)",
		"`` (id INTEGER)",
		"[users (id INTEGER)",
		"users (id INTEGER);;",
	} {
		_, err := newCreateTableStatement(spec)
		assert.True(t, errors.Is(err, ErrStatementBuild), spec)
	}
}

func TestNewCreateTableStatement_passthrough(t *testing.T) {
	tests := []struct {
		spec string
		name string
		code string
	}{
		{"`bt` (a TEXT)", "bt", "CREATE TABLE IF NOT EXISTS `bt` (a TEXT)"},
		{"[br] (a TEXT)", "br", "CREATE TABLE IF NOT EXISTS [br] (a TEXT)"},
		{`"my ""t""" (a TEXT)`, `my ""t""`, `CREATE TABLE IF NOT EXISTS "my ""t""" (a TEXT)`},
		{"bits (a INTEGER CHECK (a & 1), b INTEGER DEFAULT (~0 | 2))", "bits",
			"CREATE TABLE IF NOT EXISTS bits (a INTEGER CHECK (a & 1), b INTEGER DEFAULT (~0 | 2))"},
		{"cm (a TEXT) /* note; */", "cm", "CREATE TABLE IF NOT EXISTS cm (a TEXT) /* note; */"},
		{"cm (a TEXT) -- note; here", "cm", "CREATE TABLE IF NOT EXISTS cm (a TEXT) -- note; here"},
		{"t (a TEXT DEFAULT 'it''s; ok');  ", "t", "CREATE TABLE IF NOT EXISTS t (a TEXT DEFAULT 'it''s; ok')"},
		{"t (a TEXT); -- done", "t", "CREATE TABLE IF NOT EXISTS t (a TEXT)"},
	}

	for _, test := range tests {
		stmt, err := newCreateTableStatement(test.spec)
		if assert.Nil(t, err, test.spec) {
			assert.Equal(t, test.name, stmt.name)
			assert.Equal(t, test.code, stmt.GenerateCode())
		}
	}
}

func TestStatementBuildErrors(t *testing.T) {
	where := ParseConditions([]string{"id=1"}, And)
	none := ParseConditions([]string{"id", "=1", "a=b=c"}, And)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"empty table", buildErr(newInsertStatement("", []string{"a"})), ErrStatementBuild},
		{"blank table", buildErr(newDropTableStatement("   ")), ErrStatementBuild},
		{"injected table", buildErr(newInsertStatement("users; DROP TABLE x", []string{"a"})), ErrStatementBuild},
		{"no columns", buildErr(newInsertStatement("users", nil)), ErrStatementBuild},
		{"empty column", buildErr(newInsertStatement("users", []string{"a", " "})), ErrStatementBuild},
		{"update without conditions", buildErr(newUpdateStatement("users", []string{"a"}, none)), ErrEmptyCondition},
		{"update empty condition is build error", buildErr(newUpdateStatement("users", []string{"a"}, none)), ErrStatementBuild},
		{"delete without conditions", buildErr(newDeleteStatement("users", none)), ErrEmptyCondition},
		{"delete bad table", buildErr(newDeleteStatement("", where)), ErrStatementBuild},
		{"select no columns", buildErr(newSelectStatement("users", nil, where)), ErrStatementBuild},
		{"select bad column", buildErr(newSelectStatement("users", []ColumnSpec{{Tag: Text, Name: "a b"}}, where)), ErrStatementBuild},
		{"select bad tag", buildErr(newSelectStatement("users", []ColumnSpec{{Tag: TypeTag(9), Name: "a"}}, where)), ErrUnsupportedType},
	}

	for _, test := range tests {
		assert.True(t, errors.Is(test.err, test.want), "%s: %v", test.name, test.err)
	}
}

func TestNewSelectStatement_trimsNames(t *testing.T) {
	stmt, err := newSelectStatement(" users ", []ColumnSpec{{Tag: Text, Name: " name "}}, Conditions{})
	assert.Nil(t, err)
	assert.Equal(t, "SELECT `name` FROM `users`", stmt.GenerateCode())
}

func buildErr(_ interface{}, err error) error {
	return err
}
