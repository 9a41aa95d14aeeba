package main

import (
	"fmt"

	"github.com/deepnoodle-ai/quantexpr"
	"github.com/deepnoodle-ai/quantexpr/dis"
	"github.com/spf13/cobra"
)

var disCmd = &cobra.Command{
	Use:   "dis [expression]",
	Short: "Print the compiled instruction listing for an expression",
	Run: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
		source, err := getExpression(args)
		if err != nil {
			fatal(err)
		}
		code, err := quantexpr.Compile(source)
		if err != nil {
			fatal(err)
		}
		listing, err := dis.Dump(code)
		if err != nil {
			fatal(err)
		}
		fmt.Print(listing)
	},
}

func init() {
	rootCmd.AddCommand(disCmd)
}
