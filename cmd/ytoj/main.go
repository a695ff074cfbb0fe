// Command ytoj exposes three of the library's conversion operations
// (y2j, j2y, minify) as subcommands, built on cobra/pflag the way the MacroPower-x example's
// cmd/magicschema and cmd/godocfmt tools are.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/biot2/ytoj"
)

var (
	indent             = 2
	yesNoBool          bool
	allowDuplicateKeys bool
)

// indentValue is a pflag.Value that rejects an out-of-range --indent at
// flag-parse time instead of deferring to the library's own Config
// validation, the same way cmd/magicschema registers its own Var types
// on top of pflag's IntVar/StringVar family.
type indentValue struct{ n *int }

var _ pflag.Value = (*indentValue)(nil)

func (v *indentValue) String() string { return strconv.Itoa(*v.n) }

func (v *indentValue) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("indent: %w", err)
	}
	if n < 0 || n > 8 {
		return fmt.Errorf("indent: %d out of range 0-8", n)
	}
	*v.n = n
	return nil
}

func (v *indentValue) Type() string { return "int" }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ytoj",
		Short: "Convert between an indentation-sensitive format and a JSON-family format",
	}
	root.PersistentFlags().Var(&indentValue{n: &indent}, "indent", "spaces per nesting level (0-8)")
	root.PersistentFlags().BoolVar(&yesNoBool, "yes-no-bool", false, "treat yes/no as booleans")
	root.PersistentFlags().BoolVar(&allowDuplicateKeys, "allow-duplicate-keys", false, "allow repeated mapping keys")

	root.AddCommand(newY2JCmd(), newJ2YCmd(), newMinifyCmd())
	return root
}

func options() []ytoj.Option {
	return []ytoj.Option{
		ytoj.WithIndent(indent),
		ytoj.WithYesNoBool(yesNoBool),
		ytoj.WithAllowDuplicateKeys(allowDuplicateKeys),
	}
}

func newY2JCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "y2j [file]",
		Short: "Convert Y text to J text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args)
			if err != nil {
				return err
			}
			out, err := ytoj.YAMLToJSONText(src, options()...)
			if err != nil {
				return fmt.Errorf("%s", ytoj.FormatError(err, src, true, true))
			}
			fmt.Println(out)
			return nil
		},
	}
}

func newJ2YCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "j2y [file]",
		Short: "Convert J text to Y text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args)
			if err != nil {
				return err
			}
			out, err := ytoj.JSONToYAMLText(src, options()...)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func newMinifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "minify [file]",
		Short: "Collapse J text to a single line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args)
			if err != nil {
				return err
			}
			fmt.Println(ytoj.JSONMinify(src))
			return nil
		},
	}
}

func readInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
