// Package cmd implements the CLI application that maintains the daily
// Brent/diesel price ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/eia"
	"github.com/Thiagoscocco/DAILY-DIESEL/fred"
	"github.com/Thiagoscocco/DAILY-DIESEL/mailer"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Commands lists the subcommands in registration order. A main package
// registers them on its commander and executes the user-selected one.
var Commands = []subcommands.Command{
	&runCmd{},
	&backfillCmd{},
	&sendCmd{},
	&statusCmd{},
}

// As a CLI application with a short lived lifecycle, it is ok to use global
// variables for the shared flags.

var configFile = flag.String("config", "dailydiesel.yaml", "Path to the YAML configuration file")

// Verbose enables debug logging. The main package applies it after parsing.
var Verbose = flag.Bool("v", false, "Enable debug logging")

// loadConfig reads the configuration file and validates the fetch settings.
func loadConfig() (dailydiesel.Config, error) {
	cfg, err := dailydiesel.LoadConfig(*configFile)
	if err != nil {
		return dailydiesel.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return dailydiesel.Config{}, err
	}
	return cfg, nil
}

// newSource builds the price source selected by the configuration.
func newSource(cfg dailydiesel.Config) dailydiesel.PriceSource {
	if cfg.Provider == "eia" {
		return eia.New(cfg.EIAAPIKey)
	}
	return fred.New(cfg.FredAPIKey, fred.WithLookback(cfg.LookbackDays))
}

// newEngine wires the engine. When withNotifier is set the SMTP settings are
// validated and a mailer is attached; otherwise the engine runs without one.
func newEngine(cfg dailydiesel.Config, withNotifier bool) (*dailydiesel.Engine, error) {
	var notifier dailydiesel.Notifier
	if withNotifier {
		if err := cfg.ValidateNotifier(); err != nil {
			return nil, err
		}
		notifier = mailer.New(cfg.SMTP, cfg.Recipients)
	}
	return dailydiesel.NewEngine(cfg, newSource(cfg), notifier)
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// source when rendering fails.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
