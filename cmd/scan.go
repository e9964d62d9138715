package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wbdeps/internal/formatting"
	"wbdeps/internal/template"
)

var scanSet map[string]string

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan VALUE|@FILE",
		Short: "List the variables referenced by a value",
		Long: `List the {Variable} placeholders referenced by a string or JSON value,
in order of first appearance. Strings that hold JSON are searched too.

Prefix the argument with @ to read the value from a file, or use @- for
standard input. With --set the placeholders are substituted instead and
the resulting value is printed.

Examples:
  wbdeps scan '{FunctionApp}/functions/{Name}'
  wbdeps scan @query.json
  wbdeps scan --set Subscription=0000 '/subscriptions/{Subscription}'`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringToStringVar(&scanSet, "set", nil, "Substitute NAME=VALUE instead of listing names")
	return cmd
}

// readScanValue resolves the argument to the value to scan. File content
// that parses as JSON is scanned as a JSON value.
func readScanValue(arg string, stdin io.Reader) (interface{}, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}

	var data []byte
	var err error
	if name := arg[1:]; name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg[1:], err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err == nil && !dec.More() {
		return v, nil
	}
	return string(data), nil
}

func runScan(cmd *cobra.Command, args []string) error {
	value, err := readScanValue(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	engine := template.New()

	if len(scanSet) > 0 {
		replaced := engine.Replace(value, scanSet)
		if s, ok := replaced.(string); ok {
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatting.PrettyJSON(replaced))
		return nil
	}

	return newFormatter(cmd).FormatNames(engine.ExtractVariables(value))
}
