package tagdb

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when the database file cannot be opened
	ErrConnection = errors.New("Unable to open database")
	// ErrStatementBuild is returned when a statement cannot be built from
	// the supplied table, columns or conditions
	ErrStatementBuild = errors.New("Unable to build statement")
	// ErrEmptyCondition is returned when an update or delete has no valid
	// condition clause left after filtering
	ErrEmptyCondition = fmt.Errorf("%w: no valid condition", ErrStatementBuild)
	// ErrPrepare is returned when the engine rejects a statement
	ErrPrepare = errors.New("Unable to prepare statement")
	// ErrBind is returned when a value cannot be bound to a statement
	ErrBind            = errors.New("Unable to bind value")
	ErrExecution       = errors.New("Statement execution failed")
	ErrUnsupportedType = errors.New("Unsupported data type")
)
