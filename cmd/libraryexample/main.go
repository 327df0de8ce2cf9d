package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eatonphil/tagdb"
)

func main() {
	dir, err := os.MkdirTemp("", "tagdb-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	db, err := tagdb.OpenPath(filepath.Join(dir, "example.db"))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	err = db.CreateTables(ctx, []string{"users (id INTEGER PRIMARY KEY, name TEXT, age INTEGER)"})
	if err != nil {
		panic(err)
	}

	_, err = db.Insert(ctx, "users", []string{"name", "age"}, [][]tagdb.Value{
		{tagdb.TextValue("Admin"), tagdb.NumberValue(45)},
		{tagdb.TextValue("Terry"), tagdb.NumberValue(57)},
	})
	if err != nil {
		panic(err)
	}

	_, err = db.Update(ctx, "users", []string{"age"}, []tagdb.Value{tagdb.NumberValue(46)}, []string{"name=Admin"}, tagdb.And)
	if err != nil {
		panic(err)
	}

	columns := []tagdb.ColumnSpec{
		{Tag: tagdb.Number, Name: "id"},
		{Tag: tagdb.Text, Name: "name"},
		{Tag: tagdb.Number, Name: "age"},
	}
	rows, err := db.Read(ctx, "users", columns, nil, tagdb.And)
	if err != nil {
		panic(err)
	}

	for _, col := range columns {
		fmt.Printf("| %s ", col.Name)
	}
	fmt.Println("|")

	for i := 0; i < 20; i++ {
		fmt.Printf("=")
	}
	fmt.Println()

	for _, row := range rows {
		fmt.Printf("|")
		for _, col := range columns {
			fmt.Printf(" %s | ", row[col.Name])
		}
		fmt.Println()
	}

	for _, m := range db.Messages() {
		fmt.Println(m)
	}
}
