package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/Thiagoscocco/DAILY-DIESEL/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// completion describes the CLI for shell completion. It must run before
// flag.Parse: when invoked by the shell it prints candidates and exits.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"config": predict.Files("*.yaml"),
		"v":      predict.Nothing,
	},
	Sub: map[string]*complete.Command{
		"run": {Flags: map[string]complete.Predictor{
			"single":   predict.Nothing,
			"no-email": predict.Nothing,
		}},
		"backfill": {Flags: map[string]complete.Predictor{
			"start":             predict.Something,
			"end":               predict.Something,
			"year":              predict.Something,
			"start-week":        predict.Something,
			"end-week":          predict.Something,
			"send-email-if-day": predict.Nothing,
		}},
		"send":   {Flags: map[string]complete.Predictor{"to": predict.Something}},
		"status": {},
	},
}

func main() {
	completion.Complete("dd")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *cmd.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	os.Exit(int(commander.Execute(context.Background())))
}
