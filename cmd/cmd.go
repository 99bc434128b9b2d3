// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func projectIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "Project ID",
		Required: true,
	}
}

func subtitleSourceFlags() []cli.Flag {
	return []cli.Flag{
		projectIDFlag(),
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "SRT file to send instead of the saved draft's subtitles",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the result as the project's draft",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config.toml if missing, initialize the local database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file (default: config.toml)",
					},
					&cli.BoolFlag{
						Name:  "status",
						Usage: "List migrations and whether each has been applied",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the stored session token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the session token",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Store a bearer token, given directly or taken from a DevTools \"Copy as cURL\" command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "token",
						Usage: "Bearer token",
					},
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check whether a token is stored and accepted by the server",
				Action: r.AuthStatus,
			},
		},
	}
}

// projectCommand handles the project list
func projectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "project",
		Aliases: []string{"projects", "p"},
		Usage:   "List, add and delete projects",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List projects as shown on the my-page view",
				Flags: []cli.Flag{
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
						Name:  "format",
						Usage: "Output format: text, csv or md",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout (csv: base path for _projects.csv and _profile.json)",
					},
				},
				Action: r.ProjectList,
			},
			{
				Name:  "add",
				Usage: "Register a video link as a new project",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Project title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "Video link",
						Required: true,
					},
				},
				Action: r.ProjectAdd,
			},
			{
				Name:    "rm",
				Aliases: []string{"delete"},
				Usage:   "Delete a project by ID",
				Flags: []cli.Flag{
					projectIDFlag(),
				},
				Action: r.ProjectRemove,
			},
		},
	}
}

// userCommand handles the account profile
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Show and update the account profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UserShow,
			},
			{
				Name:  "update",
				Usage: "Replace the profile; fields not given keep their current values",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Name"},
					&cli.StringFlag{Name: "email", Usage: "Email"},
					&cli.StringFlag{Name: "password", Usage: "Password"},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
				},
				Action: r.UserUpdate,
			},
		},
	}
}

// editCommand handles the edit panel of one project
func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "Generate, check, recommend and translate a project's subtitles",
		Commands: []*cli.Command{
			{
				Name:   "link",
				Usage:  "Print the embeddable video link",
				Flags:  []cli.Flag{projectIDFlag()},
				Action: r.EditLink,
			},
			{
				Name:   "open",
				Usage:  "Open the video in the browser",
				Flags:  []cli.Flag{projectIDFlag()},
				Action: r.EditOpen,
			},
			{
				Name:  "generate",
				Usage: "Generate subtitles and print the SRT",
				Flags: []cli.Flag{
					projectIDFlag(),
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save the subtitles as the project's draft",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the SRT to a file",
					},
				},
				Action: r.EditGenerate,
			},
			{
				Name:   "check",
				Usage:  "Check the subtitles and print the corrected text",
				Flags:  subtitleSourceFlags(),
				Action: r.EditCheck,
			},
			{
				Name:   "recommend",
				Usage:  "Recommend a video title and hashtags",
				Flags:  subtitleSourceFlags(),
				Action: r.EditRecommend,
			},
			{
				Name:  "translate",
				Usage: "Translate the subtitles (en, es, fr, de, ja, zh)",
				Flags: append(subtitleSourceFlags(), &cli.StringFlag{
					Name:     "lang",
					Aliases:  []string{"l"},
					Usage:    "Target language code",
					Required: true,
				}),
				Action: r.EditTranslate,
			},
			{
				Name:  "export",
				Usage: "Export the project's draft to a directory (README.md, SRT files, thumbnail)",
				Flags: []cli.Flag{
					projectIDFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: project-{id})",
					},
					&cli.BoolFlag{
						Name:  "thumbnail",
						Usage: "Download the YouTube thumbnail",
						Value: true,
					},
				},
				Action: r.EditExport,
			},
		},
	}
}

// draftCommand handles locally saved edit sessions
func draftCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "draft",
		Aliases: []string{"drafts"},
		Usage:   "Manage edit sessions saved on this machine",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved drafts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.DraftList,
			},
			{
				Name:  "show",
				Usage: "Show a draft as Markdown",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Draft ID"},
					&cli.StringFlag{Name: "project", Usage: "Project ID"},
				},
				Action: r.DraftShow,
			},
			{
				Name:    "rm",
				Aliases: []string{"delete"},
				Usage:   "Delete a draft",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Draft ID", Required: true},
				},
				Action: r.DraftRemove,
			},
		},
	}
}

// apiCommand handles direct API calls for debugging
func apiCommand(r *Runner) *cli.Command {
	llmFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "llm",
			Usage: "Send to the LLM service instead of the account service",
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the raw response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
					llmFlag(),
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					llmFlag(),
				},
				Action: r.APIPost,
			},
		},
	}
}

// serverCommand runs the in-memory stand-in backend
func serverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run the in-memory stand-in backend (account and LLM services) for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: [server] host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Account service port (default: [server] port)",
			},
			&cli.IntFlag{
				Name:  "llm-port",
				Usage: "LLM service port (default: [server] llm_port)",
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Start with a demo profile and projects",
				Value: true,
			},
		},
		Action: r.Server,
	}
}

// tuiCommand returns the top-level TUI command for the interactive my-page view.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive my-page and edit views",
		Action:  r.TUI,
	}
}
