package cmd

import (
	"context"
	"flag"
	"fmt"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/google/subcommands"
)

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	single  bool
	noEmail bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "fetch the latest prices and update the ledger" }
func (*runCmd) Usage() string {
	return `dd run [-single] [-no-email]

  Fetches the latest Brent and diesel observations, appends or refreshes the
  ledger row, forward-fills missing days up to today, recomputes the derived
  columns, and sends the weekly email when today matches the reporting day.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.single, "single", false, "Update the observation day only, without forward-filling to today")
	f.BoolVar(&c.noEmail, "no-email", false, "Never send the weekly email, even on the reporting day")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	notify := !c.noEmail
	engine, err := newEngine(cfg, notify)
	if err != nil {
		return fail(err)
	}

	mode := dailydiesel.ModeDailyCatchUp
	if c.single {
		mode = dailydiesel.ModeSingleDay
	}
	res, err := engine.Run(ctx, dailydiesel.RunRequest{Mode: mode, Notify: notify})
	if err != nil {
		return fail(err)
	}
	if res.NotifyErr != nil {
		// Ledger is updated; only the email failed.
		fmt.Printf("Updated ledger through %s (%d merged, %d backfilled), but sending failed: %v\n",
			res.RefDate, res.Merged, res.Backfilled, res.NotifyErr)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated ledger through %s (%d merged, %d backfilled, %d emails sent)\n",
		res.RefDate, res.Merged, res.Backfilled, res.Notified)
	return subcommands.ExitSuccess
}
