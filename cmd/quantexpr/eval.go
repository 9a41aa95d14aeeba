package main

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/quantexpr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate an expression and print its result",
	Long: `Evaluate an expression and print its result. The expression is read
from the first positional argument, or from stdin when no argument is
given. Variables may be bound with --vars, e.g.

  quantexpr eval --vars '{"price": 101.5, "prices": [99, 100, 101]}' \
      'price > sma(prices, 3)'`,
	Run: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
		source, err := getExpression(args)
		if err != nil {
			fatal(err)
		}
		vars, err := getVariables()
		if err != nil {
			fatal(err)
		}
		result, err := quantexpr.Eval(context.Background(), source,
			quantexpr.WithFunctions(quantexpr.Builtins()),
			quantexpr.WithVariables(vars))
		if err != nil {
			fatal(err)
		}
		output, err := getOutput(result, viper.GetString("output"))
		if err != nil {
			fatal(err)
		}
		if output != "" {
			fmt.Println(output)
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
