package cmd

import (
	"context"
	"flag"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/renderer"
	"github.com/google/subcommands"
)

// statusCmd holds the flags for the 'status' subcommand.
type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "display the heartbeat and the latest ledger rows" }
func (*statusCmd) Usage() string {
	return `dd status

  Displays the heartbeat (operational or degraded, last run, last success,
  last error) and the tail of the ledger.
`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {}

func (c *statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := dailydiesel.LoadConfig(*configFile)
	if err != nil {
		return fail(err)
	}

	rec := dailydiesel.NewHeartbeatStore(cfg.HeartbeatPath).Read()

	ledger, err := dailydiesel.LoadLedger(cfg.LedgerPath, cfg.Schedule())
	if err != nil {
		return fail(err)
	}

	printMarkdown(renderer.StatusMarkdown(rec, ledger.Rows()))
	return subcommands.ExitSuccess
}
