// Command yview colorizes a YAML file's token stream to a terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-colorable"

	"github.com/biot2/ytoj/printer"
)

func _main(args []string) error {
	if len(args) < 2 {
		return errors.New("yview: usage: yview file.yml")
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	p := printer.Default()
	writer := colorable.NewColorableStdout()
	_, err = writer.Write([]byte(p.PrintTokens(string(data))))
	return err
}

func main() {
	if err := _main(os.Args); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
