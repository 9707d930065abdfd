package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/ops"
	"github.com/bigviv/CleanSheet/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "cleansheet",
		Usage:   "Rule-based rewriting for audit prose",
		Version: Version,
		Commands: []*cli.Command{
			rewriteCmd(db, cfg),
			exampleCmd(db, cfg),
			settingsCmd(db, cfg),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// optionFlags are shared by rewrite and settings set.
func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "active-voice", Usage: "Convert passive findings to active voice (needs --owner and --clear-ownership)"},
		&cli.BoolFlag{Name: "clear-ownership", Usage: "Name the owner in rewritten findings"},
		&cli.BoolFlag{Name: "sharper-impact", Usage: "Suggest stating the impact of findings"},
		&cli.BoolFlag{Name: "calm-tone", Usage: "Soften alarmist wording"},
		&cli.BoolFlag{Name: "concise", Usage: "Remove filler and wordy phrases"},
		&cli.BoolFlag{Name: "audit-safe", Usage: "Flag speculative qualifiers instead of asserting"},
		&cli.BoolFlag{Name: "standardise-spelling", Usage: "Convert spelling to the chosen English variant"},
		&cli.StringFlag{Name: "owner", Usage: "Accountable party, e.g. Finance"},
		&cli.StringFlag{Name: "document-type", Aliases: []string{"d"}, Usage: "audit-finding|audit-report|executive-summary|management-letter|general"},
		&cli.StringFlag{Name: "english-variant", Aliases: []string{"e"}, Usage: "en-GB|en-US"},
	}
}

// patchFromFlags collects only the option flags given on the command line.
func patchFromFlags(c *cli.Context) ops.SettingsPatch {
	var p ops.SettingsPatch
	boolFlag := func(name string) *bool {
		if !c.IsSet(name) {
			return nil
		}
		v := c.Bool(name)
		return &v
	}
	stringFlag := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}
	p.ActiveVoice = boolFlag("active-voice")
	p.ClearOwnership = boolFlag("clear-ownership")
	p.SharperImpact = boolFlag("sharper-impact")
	p.CalmTone = boolFlag("calm-tone")
	p.Concise = boolFlag("concise")
	p.AuditSafeMode = boolFlag("audit-safe")
	p.StandardiseSpelling = boolFlag("standardise-spelling")
	p.Owner = stringFlag("owner")
	p.DocumentType = stringFlag("document-type")
	p.EnglishVariant = stringFlag("english-variant")
	return p
}

// rewriteCmd creates the rewrite command.
func rewriteCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Text to rewrite (default: read from stdin)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: text|json"},
		&cli.BoolFlag{Name: "save", Usage: "Save the resulting options as the new defaults"},
	}, optionFlags()...)

	return &cli.Command{
		Name:  "rewrite",
		Usage: "Rewrite text with the saved options, overridden by any option flags",
		Flags: flags,
		Action: func(c *cli.Context) error {
			format := c.String("format")
			if format != "text" && format != "json" {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid format: %q (must be text or json)", format)))
			}

			text, err := textInput(c)
			if err != nil {
				return outputError(err)
			}

			ctx := c.Context
			input := ops.RewriteInput{Text: text}
			patch := patchFromFlags(c)
			if patch != (ops.SettingsPatch{}) {
				saved, err := ops.GetSettings(ctx, db, cfg)
				if err != nil {
					return outputError(err)
				}
				opts := patch.Apply(saved.Options)
				opts.Owner = strings.TrimSpace(opts.Owner)
				input.Options = &opts
			}

			output, err := ops.Rewrite(ctx, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("save") {
				if _, err := ops.SaveSettings(ctx, db, output.Options); err != nil {
					return outputError(err)
				}
			}

			if format == "json" {
				return outputJSON(c, output)
			}
			return outputRewriteText(c, output)
		},
	}
}

// outputRewriteText prints the rewritten text to stdout and the change log
// and suggestions to stderr, so the text alone can be piped on.
func outputRewriteText(c *cli.Context, output *ops.RewriteOutput) error {
	fmt.Fprintln(c.App.Writer, output.RewrittenText)

	w := c.App.ErrWriter
	if len(output.ChangeLog) > 0 {
		fmt.Fprintln(w, "\nChanges:")
		for _, ch := range output.ChangeLog {
			fmt.Fprintf(w, "  [%s] %s\n", ch.Type, ch.Description)
		}
	}
	if len(output.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range output.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}

// exampleCmd creates the example command and its subcommands.
func exampleCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "Manage style examples",
		Subcommands: []*cli.Command{
			exampleAddCmd(db, cfg),
			exampleGetCmd(db),
			exampleListCmd(db),
			exampleUpdateCmd(db, cfg),
			exampleSetActiveCmd(db, cfg, "activate", true),
			exampleSetActiveCmd(db, cfg, "deactivate", false),
			exampleDeleteCmd(db),
		},
	}
}

// exampleAddCmd creates the example add command.
func exampleAddCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Store a new style example (text from --text or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"n"}, Required: true, Usage: "Example title"},
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Example text (default: read from stdin)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.BoolFlag{Name: "inactive", Usage: "Store without using it for rewrites"},
		},
		Action: func(c *cli.Context) error {
			text, err := textInput(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.StoreExample(c.Context, db, cfg, ops.StoreInput{
				Title:    c.String("title"),
				Text:     text,
				Tags:     parseTags(c.String("tags")),
				Inactive: c.Bool("inactive"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// exampleGetCmd creates the example get command.
func exampleGetCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a style example by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.FetchExample(c.Context, db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exampleListCmd creates the example list command.
func exampleListCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List style examples, most recently updated first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.StringFlag{Name: "active", Usage: "Filter by state: true|false"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Tag:    c.String("tag"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			}
			if c.IsSet("active") {
				active, err := strconv.ParseBool(c.String("active"))
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid --active value: %q", c.String("active"))))
				}
				input.Active = &active
			}

			output, err := ops.ListExamples(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exampleUpdateCmd creates the example update command.
func exampleUpdateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a style example (optionally reads text from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"n"}, Usage: "New title"},
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "New text"},
			&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags"},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateInput{ID: c.Args().First()}

			if c.IsSet("text") {
				text := c.String("text")
				input.Text = &text
			} else if stdinHasData(c) {
				text, err := readStdin(c)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if text != "" {
					input.Text = &text
				}
			}
			if c.IsSet("title") {
				title := c.String("title")
				input.Title = &title
			}
			if c.IsSet("tags") {
				tags := parseTags(c.String("tags"))
				input.Tags = &tags
			}

			output, err := ops.UpdateExample(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exampleSetActiveCmd creates the example activate and deactivate commands.
func exampleSetActiveCmd(db *sql.DB, cfg *config.Config, name string, active bool) *cli.Command {
	usage := "Use a style example to calibrate rewrites"
	if !active {
		usage = "Stop using a style example for rewrites"
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.SetActive(c.Context, db, cfg, c.Args().First(), active)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exampleDeleteCmd creates the example delete command.
func exampleDeleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a style example",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteExample(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// settingsCmd creates the settings command and its subcommands.
func settingsCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the saved rewrite options",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the saved rewrite options",
				Action: func(c *cli.Context) error {
					output, err := ops.GetSettings(c.Context, db, cfg)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "set",
				Usage: "Change the saved rewrite options given as flags",
				Flags: optionFlags(),
				Action: func(c *cli.Context) error {
					patch := patchFromFlags(c)
					if patch == (ops.SettingsPatch{}) {
						return outputError(errors.NewInvalidRequest("at least one option flag is required"))
					}
					output, err := ops.UpdateSettings(c.Context, db, cfg, patch)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export settings and style examples to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.cleansheet/exports/examples-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a JSONL export or a YAML style pack",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path (.jsonl, .yaml or .yml)"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|rename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to listen on"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port: %d", port)))
			}
			srv := web.NewServer(db, cfg, Version, c.String("bind"), port)
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to the app's stdout as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var csErr *errors.CleanSheetError
	if stderrors.As(err, &csErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", csErr.Code, csErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// textInput returns --text when given, otherwise piped stdin.
func textInput(c *cli.Context) (string, error) {
	if c.IsSet("text") {
		return c.String("text"), nil
	}
	if !stdinHasData(c) {
		return "", errors.NewInvalidRequest("text must be given with --text or piped via stdin")
	}
	text, err := readStdin(c)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return text, nil
}

// stdinHasData returns true if stdin is piped rather than a terminal.
// A non-file reader (as in tests) always counts as piped.
func stdinHasData(c *cli.Context) bool {
	f, ok := c.App.Reader.(*os.File)
	if !ok {
		return c.App.Reader != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, dropping trailing newlines.
func readStdin(c *cli.Context) (string, error) {
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
