// Command registros-cli manages the ledger from a terminal, sharing the
// storage backends and configuration of the web server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"registros/internal/cli"
	"registros/internal/core"
)

func completion() *complete.Command {
	kinds := predict.Set{core.Income.String(), core.Expense.String(), "income", "expense"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"plain": predict.Nothing,
			"style": predict.Set{"dark", "light", "notty", "ascii"},
			"width": predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"add":    {Flags: map[string]complete.Predictor{"d": predict.Nothing, "a": predict.Nothing, "k": kinds}},
			"list":   {},
			"delete": {Flags: map[string]complete.Predictor{"p": predict.Nothing}},
			"clear":  {Flags: map[string]complete.Predictor{"y": predict.Nothing}},
			"export": {Flags: map[string]complete.Predictor{"o": predict.Files("*.csv")}},
		},
	}
}

func main() {
	name := path.Base(os.Args[0])
	completion().Complete(name)

	cli.LoadEnvFile()

	sh := &shell{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	sh.setFlags(flag.CommandLine)
	flag.Parse()

	os.Exit(int(newCommander(flag.CommandLine, name, sh).Execute(context.Background())))
}
