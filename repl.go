package tagdb

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"
)

func renderRows(out io.Writer, columns []ColumnSpec, rows []Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "(no results)")
		return
	}

	table := tablewriter.NewWriter(out)
	header := []string{}
	for _, col := range columns {
		header = append(header, col.Name)
	}
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	data := [][]string{}
	for _, row := range rows {
		r := []string{}
		for _, col := range columns {
			r = append(r, row[col.Name])
		}
		data = append(data, r)
	}

	table.SetBorder(false)
	table.AppendBulk(data)
	table.Render()

	if len(rows) == 1 {
		fmt.Fprintln(out, "(1 result)")
	} else {
		fmt.Fprintf(out, "(%d results)\n", len(rows))
	}
}

func debugTables(ctx context.Context, d *DB, out io.Writer) error {
	tables, err := d.Tables(ctx)
	if err != nil {
		return err
	}

	if len(tables) == 0 {
		fmt.Fprintln(out, "Did not find any relations.")
		return nil
	}

	fmt.Fprintln(out, "List of relations")

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Name", "Type"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	rows := [][]string{}
	for _, t := range tables {
		rows = append(rows, []string{t, "table"})
	}

	table.AppendBulk(rows)
	table.Render()

	fmt.Fprintln(out, "")
	return nil
}

func affected(out io.Writer, n int64) {
	if n == 1 {
		fmt.Fprintln(out, "(1 record)")
	} else {
		fmt.Fprintf(out, "(%d records)\n", n)
	}
}

// Execute runs one parsed command against d and writes its outcome to out
func Execute(ctx context.Context, d *DB, cmd *Command, out io.Writer) error {
	switch cmd.Kind {
	case CreateCommand:
		return d.CreateTables(ctx, []string{cmd.Spec})
	case DropCommand:
		return d.DropTables(ctx, cmd.Tables)
	case InsertCommand:
		n, err := d.Insert(ctx, cmd.Table, cmd.Columns, [][]Value{cmd.Values})
		if err != nil {
			return err
		}
		affected(out, n)
	case UpdateCommand:
		n, err := d.Update(ctx, cmd.Table, cmd.Columns, cmd.Values, cmd.Conditions, cmd.Conjunction)
		if err != nil {
			return err
		}
		affected(out, n)
	case DeleteCommand:
		n, err := d.Delete(ctx, cmd.Table, cmd.Conditions, cmd.Conjunction)
		if err != nil {
			return err
		}
		affected(out, n)
	case ReadCommand:
		rows, err := d.Read(ctx, cmd.Table, cmd.Projection, cmd.Conditions, cmd.Conjunction)
		if err != nil {
			return err
		}
		renderRows(out, cmd.Projection, rows)
	case GetCommand:
		col := cmd.Projection[0]
		v, err := d.GetSingleValue(ctx, cmd.Table, col.Name, col.Tag, cmd.Conditions, cmd.Conjunction)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
	default:
		return fmt.Errorf("Unknown command kind %d", cmd.Kind)
	}

	return nil
}

// runLine handles one line of shell input. It reports whether the shell
// should exit.
func runLine(ctx context.Context, d *DB, line string, out io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "":
		return false
	case "quit", "exit", "\\q":
		return true
	case "\\dt":
		if err := debugTables(ctx, d, out); err != nil {
			fmt.Fprintln(out, "Error listing tables:", err)
		}
		return false
	case "\\log":
		for i, m := range d.Messages() {
			fmt.Fprintf(out, "%4d  %s\n", i+1, m)
		}
		return false
	case "\\code":
		fmt.Fprintln(out, d.Code())
		return false
	}

	cmd, err := ParseCommand(trimmed)
	if err != nil {
		fmt.Fprintln(out, "Error while parsing:", err)
		return false
	}

	if err := Execute(ctx, d, cmd, out); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return false
	}

	fmt.Fprintln(out, "ok")
	return false
}

// RunRepl reads commands from the terminal until quit or EOF
func RunRepl(d *DB) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "# ",
		HistoryFile:     filepath.Join(os.TempDir(), "tagdb_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	ctx := context.Background()

	fmt.Println("Welcome to tagdb.")
	fmt.Println("Database:", d.Path())
repl:
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue repl
			}
		} else if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("Error while reading line:", err)
			continue repl
		}

		if runLine(ctx, d, line, os.Stdout) {
			break
		}
	}
}
