package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/logger"
	"github.com/hpungsan/quotebook/internal/mcp"
	"github.com/hpungsan/quotebook/internal/ops"
	"github.com/hpungsan/quotebook/internal/web"
)

// newCLIApp creates the CLI application with all commands. e may be nil when
// only help or version output is needed.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "quotebook",
		Usage:   "Chat quote capture and recall",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", EnvVars: []string{"QUOTEBOOK_DEBUG"}, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "console", EnvVars: []string{"QUOTEBOOK_CONSOLE"}, Usage: "Human readable logs"},
		},
		Before: func(c *cli.Context) error {
			logger.Init(c.Bool("debug"), c.Bool("console"))
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(e),
			mcpCmd(e),
			selectCmd(e),
			listCmd(e),
			getCmd(e),
			removeCmd(e),
			tagCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Accept chat events over HTTP and serve quotes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (overrides http_bind)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (overrides http_port)"},
		},
		Action: func(c *cli.Context) error {
			bind, port := e.cfg.HTTPBind, e.cfg.HTTPPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}

			h := web.NewHandlers(e.db, e.cfg, e.bot, e.selector)
			err := web.Run(web.NewServer(h, bind, port))
			e.drain()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the quote tools over MCP on stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(e.db, e.cfg, e.selector, Version)
		},
	}
}

// selectCmd creates the select command.
func selectCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "select",
		Usage:     "Draw a random quote",
		ArgsUsage: "[filter...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Aliases: []string{"s"}, Usage: "Community or user id"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Requesting user"},
			&cli.BoolFlag{Name: "global", Aliases: []string{"g"}, Usage: "Draw from every scope"},
			&cli.BoolFlag{Name: "tags", Aliases: []string{"t"}, Usage: "Include tags"},
		},
		Action: func(c *cli.Context) error {
			output, err := e.selector.Select(c.Context, ops.SelectInput{
				Scope:    c.String("scope"),
				User:     c.String("user"),
				Global:   c.Bool("global"),
				WithTags: c.Bool("tags"),
				Filters:  c.Args().Slice(),
			})
			e.drain()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List quote ids and tags",
		ArgsUsage: "[filter...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Aliases: []string{"s"}, Usage: "Community or user id"},
			&cli.BoolFlag{Name: "global", Aliases: []string{"g"}, Usage: "List every scope"},
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number"},
			&cli.BoolFlag{Name: "full", Aliases: []string{"f"}, Usage: "List from the page start to the end"},
		},
		Action: func(c *cli.Context) error {
			output, err := e.selector.Select(c.Context, ops.SelectInput{
				Scope:   c.String("scope"),
				Global:  c.Bool("global"),
				List:    true,
				Page:    c.Int("page"),
				Full:    c.Bool("full"),
				Filters: c.Args().Slice(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one quote",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "tags", Aliases: []string{"t"}, Usage: "Include tags"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			output, err := e.selector.Select(c.Context, ops.SelectInput{ID: &id, WithTags: c.Bool("tags")})
			e.drain()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Permanently delete a quote and its file",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Remove(c.Context, e.db, e.cfg.DataDir, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// tagCmd creates the tag command group.
func tagCmd(e *env) *cli.Command {
	edit := func(name, usage string, fn func(*cli.Context, int64, []string) (*ops.TagsOutput, error)) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: "<id> <tag...>",
			Action: func(c *cli.Context) error {
				id, err := parseID(c.Args().First())
				if err != nil {
					return outputError(err)
				}

				output, err := fn(c, id, c.Args().Tail())
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			},
		}
	}

	return &cli.Command{
		Name:  "tag",
		Usage: "Edit the tags of a quote",
		Subcommands: []*cli.Command{
			edit("add", "Add tags", func(c *cli.Context, id int64, tags []string) (*ops.TagsOutput, error) {
				return ops.AddTags(c.Context, e.db, id, tags)
			}),
			edit("remove", "Remove tags (the scope tag is kept)", func(c *cli.Context, id int64, tags []string) (*ops.TagsOutput, error) {
				return ops.RemoveTags(c.Context, e.db, id, tags)
			}),
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if qErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", qErr.Code, qErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseID parses a positional quote id.
func parseID(s string) (int64, error) {
	if s == "" {
		return 0, errors.NewInvalidRequest("quote id is required")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid quote id %q", s))
	}
	return id, nil
}
