package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"registros/internal/app"
	"registros/internal/backend"
	"registros/internal/cli"
	"registros/internal/ledger"
	"registros/internal/present"
	"registros/internal/terminal"
)

// shell is what every command shares: the standard streams and the global
// output flags.
type shell struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	plain bool
	style string
	width int
}

func (sh *shell) setFlags(f *flag.FlagSet) {
	f.BoolVar(&sh.plain, "plain", false, "print raw markdown instead of styled output")
	f.StringVar(&sh.style, "style", "", "glamour style (dark, light, notty, ascii); detected from the terminal when empty")
	f.IntVar(&sh.width, "width", 100, "word wrap width for styled output")
}

// newCommander registers the ledger commands on top of topFlags, which must
// already be parsed.
func newCommander(topFlags *flag.FlagSet, name string, sh *shell) *subcommands.Commander {
	commander := subcommands.NewCommander(topFlags, name)
	commander.Output = sh.out
	commander.Error = sh.errOut
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range []subcommands.Command{
		&addCmd{sh: sh},
		&listCmd{sh: sh},
		&deleteCmd{sh: sh},
		&clearCmd{sh: sh},
		&exportCmd{sh: sh},
	} {
		commander.Register(c, "ledger")
	}
	return commander
}

// session is what every command needs: the loaded ledger and a terminal UI.
type session struct {
	ctrl    *app.Controller
	backend *backend.BackendResult
	ui      *terminal.Surface
}

func (sh *shell) openSession(ctx context.Context) (*session, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, sh.errOut)
	cfg := cli.LoadAndValidateConfig(logger)

	marker, err := present.CurrencyMarker(cfg.Currency)
	if err != nil {
		return nil, err
	}
	ctrl, res, err := cli.InitController(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	md := &present.Markdown{Out: sh.out, Plain: sh.plain, Style: sh.style, Width: sh.width}
	return &session{
		ctrl:    ctrl,
		backend: res,
		ui:      terminal.New(sh.in, sh.out, sh.errOut, md, marker),
	}, nil
}

// run opens a session, runs fn and maps its error to an exit status.
func (sh *shell) run(ctx context.Context, fn func(*session) error) subcommands.ExitStatus {
	s, err := sh.openSession(ctx)
	if err != nil {
		fmt.Fprintln(sh.errOut, err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := s.backend.Close(); err != nil {
			fmt.Fprintln(sh.errOut, err)
		}
	}()

	if err := fn(s); err != nil {
		// Validation problems were already shown through the alert.
		if !errors.Is(err, app.ErrMissingFields) {
			fmt.Fprintln(sh.errOut, err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type addCmd struct {
	sh                 *shell
	desc, amount, kind string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "append an income or expense entry" }
func (*addCmd) Usage() string {
	return `registros-cli add -d <description> -a <amount> -k <Entrada|Saida>

  Appends an entry at the end of the ledger and prints the updated table.
  The amount is stored as its absolute value with two decimals; "," is
  accepted as decimal separator. -k also accepts income/expense.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.desc, "d", "", "description")
	f.StringVar(&c.amount, "a", "", "amount")
	f.StringVar(&c.kind, "k", "", "kind: Entrada (income) or Saida (expense)")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.sh.run(ctx, func(s *session) error {
		return s.ctrl.Add(ctx, s.ui, app.Input{Description: c.desc, Amount: c.amount, Kind: c.kind})
	})
}

type listCmd struct{ sh *shell }

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print the ledger and its totals" }
func (*listCmd) Usage() string {
	return `registros-cli list

  Prints every entry in insertion order with its position, followed by the
  income, expense and net totals.
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.sh.run(ctx, func(s *session) error {
		return s.ctrl.Show(ctx, s.ui)
	})
}

type deleteCmd struct {
	sh       *shell
	position int
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "remove the entry at a position" }
func (*deleteCmd) Usage() string {
	return `registros-cli delete -p <position>

  Removes the entry at the 0-based position shown by list and prints the
  updated table.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.position, "p", -1, "0-based position of the entry")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.position < 0 {
		fmt.Fprintln(c.sh.errOut, "missing -p")
		return subcommands.ExitUsageError
	}
	return c.sh.run(ctx, func(s *session) error {
		err := s.ctrl.Delete(ctx, s.ui, c.position, "")
		if errors.Is(err, ledger.ErrPositionOutOfRange) {
			return fmt.Errorf("no entry at position %d", c.position)
		}
		return err
	})
}

type clearCmd struct {
	sh  *shell
	yes bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every entry after confirmation" }
func (*clearCmd) Usage() string {
	return `registros-cli clear [-y]

  Asks for confirmation, then empties the ledger.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "do not ask for confirmation")
}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.sh.run(ctx, func(s *session) error {
		s.ui.AssumeYes = c.yes
		cleared, err := s.ctrl.ClearAll(ctx, s.ui)
		if err != nil {
			return err
		}
		if !cleared {
			fmt.Fprintln(c.sh.out, "Nothing removed.")
		}
		return nil
	})
}

type exportCmd struct {
	sh     *shell
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the ledger as CSV" }
func (*exportCmd) Usage() string {
	return `registros-cli export [-o <file>|-]

  Writes the ledger as CSV to registros.csv in the current directory, to
  the given file, or to stdout with -o -.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, - for stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.sh.run(ctx, func(s *session) error {
		s.ui.OutputPath = c.output
		return s.ctrl.Export(ctx, s.ui)
	})
}
