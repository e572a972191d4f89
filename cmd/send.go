package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/mailer"
	"github.com/google/subcommands"
)

// sendCmd holds the flags for the 'send' subcommand.
type sendCmd struct {
	to string
}

func (*sendCmd) Name() string     { return "send" }
func (*sendCmd) Synopsis() string { return "send the weekly report email now" }
func (*sendCmd) Usage() string {
	return `dd send [-to <addr>[,<addr>...]]

  Sends the weekly report for the latest ledger row, regardless of the
  reporting day. The ledger is not updated. Use -to to override the
  configured recipients for this send only.
`
}

func (c *sendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Comma-separated recipients overriding the configuration")
}

func (c *sendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	if err := cfg.ValidateNotifier(); err != nil && c.to == "" {
		return fail(err)
	}

	ledger, err := dailydiesel.LoadLedger(cfg.LedgerPath, cfg.Schedule())
	if err != nil {
		return fail(err)
	}
	last, ok := ledger.Last()
	if !ok {
		return fail(fmt.Errorf("the ledger is empty, run 'dd run' first"))
	}

	m := mailer.New(cfg.SMTP, cfg.Recipients)
	if c.to != "" {
		m = m.WithRecipients(splitRecipients(c.to))
	}

	snap := dailydiesel.Snapshot{On: last.Date, Rows: ledger.Rows(), LedgerPath: cfg.LedgerPath}
	if err := m.Send(ctx, snap); err != nil {
		return fail(err)
	}
	fmt.Printf("Sent weekly report for %s\n", last.Date)
	return subcommands.ExitSuccess
}

func splitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
