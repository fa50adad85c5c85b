// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// libraryCommand manages tracked library items
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage tracked library items",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Track a new item",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Item title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "URL checked during updates",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Source ID",
						Value:   1,
					},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:  "list",
				Usage: "List tracked items",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "yaml",
						Usage: "Output YAML",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "remove",
				Usage: "Stop tracking an item and drop its update errors",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.LibraryRemove,
			},
		},
	}
}

// updateCommand runs library update passes
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Check library items against their sources",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run an update pass and record failures",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Export and open the error report when items fail",
					},
				},
				Action: r.UpdateRun,
			},
		},
	}
}

// errorsCommand inspects and acts on the failures of the last update pass
func errorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "errors",
		Aliases: []string{"err"},
		Usage:   "Inspect failures from the last update",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List failures in recorded order",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "yaml",
						Usage: "Output YAML",
					},
				},
				Action: r.ErrorsList,
			},
			{
				Name:  "export",
				Usage: "Write the grouped error report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to the configured report path)",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the report after writing it",
					},
				},
				Action: r.ErrorsExport,
			},
			{
				Name:   "clear",
				Usage:  "Delete all recorded failures",
				Action: r.ErrorsClear,
			},
			{
				Name:      "migrate",
				Usage:     "Hand failed items to the migration workflow",
				ArgsUsage: "<id> [id...]",
				Action:    r.ErrorsMigrate,
			},
			{
				Name:   "guide",
				Usage:  "Open the troubleshooting guide",
				Action: r.ErrorsGuide,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse update errors interactively",
		Action: r.TUI,
	}
}
