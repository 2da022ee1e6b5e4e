// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for config and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "migrations",
				Usage: "Show applied and pending migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SetupMigrations,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles sign-in and session state.
func authCommand(r *Runner) *cli.Command {
	credentials := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (read from stdin when omitted)",
			},
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with email and password",
				Flags:  credentials(),
				Action: r.AuthLogin,
			},
			{
				Name:   "register",
				Usage:  "Create an account and sign in",
				Flags:  credentials(),
				Action: r.AuthRegister,
			},
			{
				Name:  "google",
				Usage: "Sign in with Google through the browser",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser redirect",
						Value: authTimeout,
					},
				},
				Action: r.AuthGoogle,
			},
			{
				Name:  "callback",
				Usage: "Complete sign-in from a redirect URL carrying ?token=",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.AuthCallback,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
			{
				Name:    "status",
				Aliases: []string{"whoami"},
				Usage:   "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// foldersCommand handles folder operations.
func foldersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "folders",
		Aliases: []string{"ls"},
		Usage:   "List and manage note folders",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List folders and their files",
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
						Name:  "csv",
						Usage: "Write the listing to a CSV file",
					},
				},
				Action: r.FoldersList,
			},
			{
				Name:  "create",
				Usage: "Create a folder",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.FoldersCreate,
			},
			{
				Name:  "delete",
				Usage: "Delete a folder and its files",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.FoldersDelete,
			},
		},
	}
}

// filesCommand handles file operations inside folders.
func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "Upload, view and delete files",
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a local file into a folder",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "folder",
						Aliases:  []string{"f"},
						Usage:    "Destination folder ID",
						Required: true,
					},
				},
				Action: r.FilesUpload,
			},
			{
				Name:  "view",
				Usage: "Open a file in the default viewer",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.FilesView,
			},
			{
				Name:  "delete",
				Usage: "Delete a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "folder",
						Aliases: []string{"f"},
						Usage:   "Folder holding the file",
					},
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.FilesDelete,
			},
		},
	}
}

// recordCommand launches the live recorder.
func recordCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "record",
		Aliases: []string{"rec"},
		Usage:   "Record a lecture with live transcription",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "audio",
				Aliases:  []string{"a"},
				Usage:    "Raw 16 kHz mono PCM or WAV source, such as a FIFO fed by arecord",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "events",
				Usage: "JSON lines of recognizer results to display as the transcript",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Recognition language",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for the saved audio",
				Value:   "recordings",
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload the audio for transcription after stopping",
			},
		},
		Action: r.Record,
	}
}

// recordingsCommand manages locally saved recordings.
func recordingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recordings",
		Usage: "Manage saved recordings",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved recordings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "Only recordings in this language",
					},
					&cli.BoolFlag{
						Name:  "pending",
						Usage: "Only recordings not yet uploaded",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecordingsList,
			},
			{
				Name:  "upload",
				Usage: "Upload a saved recording for transcription",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.RecordingsUpload,
			},
			{
				Name:  "sync",
				Usage: "Upload every recording not yet uploaded",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent uploads",
						Value: 3,
					},
				},
				Action: r.RecordingsSync,
			},
			{
				Name:  "summarize",
				Usage: "Summarize every saved recording into notes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: summaries_{epoch})",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Summary language (English or Urdu)",
					},
					&cli.StringFlag{
						Name:  "length",
						Usage: "Summary length (short or long)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests",
						Value: 3,
					},
				},
				Action: r.RecordingsSummarize,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved recording",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.RecordingsDelete,
			},
		},
	}
}

// summarizeCommand summarizes text, a file or a saved recording.
func summarizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "summarize",
		Usage: "Summarize lecture text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "text",
				Aliases: []string{"t"},
				Usage:   "Text to summarize",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read text from a file",
			},
			&cli.StringFlag{
				Name:  "recording",
				Usage: "Summarize the transcript of a saved recording",
			},
			&cli.BoolFlag{
				Name:  "latest",
				Usage: "Summarize the most recent recording",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Summary language (English or Urdu)",
			},
			&cli.StringFlag{
				Name:  "length",
				Usage: "Summary length (short or long)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title for exported notes",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write Markdown and HTML notes to this directory",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Summarize,
	}
}

// demoCommand sends an audio file to the demo transcription endpoint.
func demoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Transcribe and summarize an audio file without signing in",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Demo,
	}
}

// apiCommand handles direct authenticated API calls.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the notes backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Authenticated GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// dashboardCommand returns the interactive folder browser.
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"ui"},
		Usage:   "Browse folders and files interactively",
		Action:  r.Dashboard,
	}
}
