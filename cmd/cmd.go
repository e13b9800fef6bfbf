// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// transferFlags override the [transfer] and [checkpoint] sections of the config.
//
// The root command marks them local so subcommands that define their own copies don't inherit them.
func transferFlags(local bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "source",
			Usage: "Source playlist ID",
			Local: local,
		},
		&cli.StringFlag{
			Name:  "dest",
			Usage: "Destination playlist ID",
			Local: local,
		},
		&cli.StringFlag{
			Name:  "checkpoint",
			Usage: "Path to the checkpoint file",
			Local: local,
		},
		&cli.DurationFlag{
			Name:  "delay",
			Usage: "Pause after each successful insert",
			Value: 500 * time.Millisecond,
			Local: local,
		},
	}
}

// runCommand copies the source playlist into the destination, resuming from the checkpoint.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Copy every video from the source playlist into the destination playlist",
		Flags:  transferFlags(false),
		Action: r.Transfer,
	}
}

// listCommand prints the source sequence.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the videos in the source playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Source playlist ID",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown or text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Export file path (defaults to <source>.<ext>; \"-\" writes to stdout)",
			},
		},
		Action: r.List,
	}
}

// checkpointCommand inspects and resets resume state.
func checkpointCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "source", Usage: "Source playlist ID"},
			&cli.StringFlag{Name: "dest", Usage: "Destination playlist ID"},
			&cli.StringFlag{Name: "checkpoint", Usage: "Path to the checkpoint file"},
		}
	}

	return &cli.Command{
		Name:    "checkpoint",
		Aliases: []string{"cp"},
		Usage:   "Inspect or reset the transfer checkpoint",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the last successfully copied video ID",
				Flags:  flags(),
				Action: r.CheckpointShow,
			},
			{
				Name:   "clear",
				Usage:  "Remove the checkpoint so the next run starts from the beginning",
				Flags:  flags(),
				Action: r.CheckpointClear,
			},
		},
	}
}

// historyCommand lists recorded transfer runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent transfer runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show runs with this status (completed, aborted, failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand creates the config file and initializes the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml from the template and initialize the database",
		Action: r.Setup,
	}
}

// authCommand runs the browser sign-in that fills in the YouTube tokens.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize plcopy to manage your YouTube playlists and save the tokens to the config",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser redirect",
				Value: 2 * time.Minute,
			},
		},
		Action: r.Auth,
	}
}

// tuiCommand returns the top-level TUI command for an interactive transfer.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist transfer",
		Flags:   transferFlags(false),
		Action:  r.TUI,
	}
}
