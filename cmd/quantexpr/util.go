package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepnoodle-ai/quantexpr/object"
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

// Resolves an expression from positional arguments or stdin. An explicit
// "-" argument forces a stdin read even on a terminal.
func getExpression(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if len(args) > 1 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	source := strings.TrimSpace(string(data))
	if source == "" {
		return "", fmt.Errorf("no expression provided")
	}
	return source, nil
}

// Parses the --vars JSON object into bindings usable by the evaluator.
// JSON arrays of numbers become float slices so indicator functions can
// consume them directly.
func getVariables() (map[string]interface{}, error) {
	raw := viper.GetString("vars")
	if raw == "" {
		return nil, nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("invalid vars: %w", err)
	}
	vars := make(map[string]interface{}, len(parsed))
	for name, value := range parsed {
		vars[name] = convertJSONValue(value)
	}
	return vars, nil
}

func convertJSONValue(value interface{}) interface{} {
	items, ok := value.([]interface{})
	if !ok {
		return value
	}
	floats := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := item.(float64)
		if !ok {
			return value
		}
		floats = append(floats, f)
	}
	return floats
}

func getOutput(result object.Object, format string) (string, error) {
	switch strings.ToLower(format) {
	case "":
		// With an unspecified format, we'll try to do the most helpful thing:
		//  1. If the result is nil, we want to print nothing
		//  2. If the result marshals to JSON, we'll print that
		//  3. Otherwise, we'll print the result's string representation
		if result == nil {
			return "", nil
		}
		output, err := getOutputJSON(result)
		if err != nil {
			return result.Inspect(), nil
		}
		return string(output), nil
	case "json":
		output, err := getOutputJSON(result)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "text":
		if result == nil {
			return "", nil
		}
		return result.Inspect(), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func getOutputJSON(result object.Object) ([]byte, error) {
	if viper.GetBool("no-color") {
		return json.MarshalIndent(result.Interface(), "", "  ")
	}
	return prettyjson.Marshal(result.Interface())
}
