package tagdb

import (
	"fmt"
	"strings"
)

// Conjunction joins every clause of one condition set
type Conjunction uint

const (
	And Conjunction = iota
	Or
)

func (c Conjunction) String() string {
	if c == Or {
		return "OR"
	}

	return "AND"
}

// Condition is one equality test between a column and a value
type Condition struct {
	Key   string
	Value string
}

// Conditions is an ordered list of equality tests joined by a single
// conjunction.
type Conditions struct {
	clauses []Condition
	conj    Conjunction
}

// ParseConditions parses clauses of the form key=value. The key is a column
// name, optionally prefixed by its table as in users.name. A clause that
// does not split into exactly two non-empty parts, or whose key is not a
// column name, is dropped. The order of the remaining clauses is kept.
func ParseConditions(raw []string, conj Conjunction) Conditions {
	c := Conditions{conj: conj}
	for _, r := range raw {
		kv := strings.Split(r, "=")
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		if key == "" || value == "" || !validQualified(key) {
			continue
		}

		c.clauses = append(c.clauses, Condition{Key: key, Value: value})
	}

	return c
}

func (c Conditions) Len() int {
	return len(c.clauses)
}

func (c Conditions) Conjunction() Conjunction {
	return c.conj
}

func (c Conditions) Clauses() []Condition {
	out := make([]Condition, len(c.clauses))
	copy(out, c.clauses)
	return out
}

// GenerateCode returns the WHERE fragment with one placeholder per clause,
// or "" when there are no clauses.
func (c Conditions) GenerateCode() string {
	parts := make([]string, 0, len(c.clauses))
	for _, cl := range c.clauses {
		parts = append(parts, fmt.Sprintf("%s = ?", quoteQualified(cl.Key)))
	}

	return strings.Join(parts, " "+c.conj.String()+" ")
}

// Args returns the clause values in placeholder order
func (c Conditions) Args() []interface{} {
	args := make([]interface{}, 0, len(c.clauses))
	for _, cl := range c.clauses {
		args = append(args, cl.Value)
	}

	return args
}

// String renders the clauses with inline literals, for messages only.
func (c Conditions) String() string {
	parts := make([]string, 0, len(c.clauses))
	for _, cl := range c.clauses {
		parts = append(parts, fmt.Sprintf("%s='%s'", cl.Key, strings.ReplaceAll(cl.Value, "'", "''")))
	}

	return strings.Join(parts, " "+c.conj.String()+" ")
}
