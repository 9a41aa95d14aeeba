package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepnoodle-ai/quantexpr"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Run: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
		vars, err := getVariables()
		if err != nil {
			fatal(err)
		}
		if err := runREPL(context.Background(), vars); err != nil {
			fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(ctx context.Context, vars map[string]interface{}) error {
	interactive := isTerminalIO()
	if interactive {
		fmt.Println("quantexpr repl (ctrl-d to exit)")
	}
	prompt := color.New(color.FgCyan).SprintFunc()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Printf("%s ", prompt(">"))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && err != io.EOF {
				return err
			}
			if interactive {
				fmt.Println()
			}
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result, err := quantexpr.Eval(ctx, line,
			quantexpr.WithFunctions(quantexpr.Builtins()),
			quantexpr.WithVariables(vars))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		output, err := getOutput(result, viper.GetString("output"))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		if output != "" {
			fmt.Println(output)
		}
	}
}
