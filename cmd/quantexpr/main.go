// Command quantexpr evaluates trading rule expressions from the
// command line. It offers three subcommands: eval runs an expression
// and prints its result, dis prints the compiled instruction listing,
// and repl starts an interactive read-eval-print loop.
package main

func main() {
	Execute()
}
