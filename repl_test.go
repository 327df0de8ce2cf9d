package tagdb

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunLine(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)

	tests := []struct {
		line     string
		contains []string
		quit     bool
	}{
		{line: "", quit: false},
		{line: "\\dt", contains: []string{"Did not find any relations."}},
		{line: "create users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)", contains: []string{"ok"}},
		{line: "insert users name:text=Alice age:number=30", contains: []string{"(1 record)", "ok"}},
		{line: "insert users name:text=Bob age:number=old", contains: []string{"Error:", "Unable to bind value"}},
		{line: "update users set age:number=31 where name=Alice", contains: []string{"(1 record)"}},
		{line: "read users name, age:number", contains: []string{"Alice", "31", "(1 result)"}},
		{line: "get users age:number where name=Alice", contains: []string{"31"}},
		{line: "read users name where name=Nobody", contains: []string{"(no results)"}},
		{line: "read users name:integer", contains: []string{"Error while parsing:"}},
		{line: "delete users where missing", contains: []string{"Error while parsing:"}},
		{line: "delete nowhere where id=1", contains: []string{"Error:", "Unable to prepare statement"}},
		{line: "\\dt", contains: []string{"List of relations", "users"}},
		{line: "\\code", contains: []string{"0"}},
		{line: "\\log", contains: []string{"database insert: data inserted at ID: 1"}},
		{line: "delete users where name=Alice", contains: []string{"(1 record)"}},
		{line: "drop users", contains: []string{"ok"}},
		{line: "  exit ", quit: true},
		{line: "\\q", quit: true},
	}

	for _, test := range tests {
		var out bytes.Buffer
		quit := runLine(ctx, d, test.line, &out)
		assert.Equal(t, test.quit, quit, test.line)
		for _, s := range test.contains {
			assert.Contains(t, out.String(), s, test.line)
		}
	}
}
