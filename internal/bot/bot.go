// Package bot turns chat messages into capture requests and quote commands.
package bot

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quotebook/internal/capture"
	"github.com/hpungsan/quotebook/internal/chat"
	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/ops"
)

// Bot handles inbound chat messages one at a time.
type Bot struct {
	mu       sync.Mutex
	db       *sql.DB
	cfg      *config.Config
	pipeline *capture.Pipeline
	selector *ops.Selector
}

// New creates a bot.
func New(database *sql.DB, cfg *config.Config, pipeline *capture.Pipeline, selector *ops.Selector) *Bot {
	return &Bot{db: database, cfg: cfg, pipeline: pipeline, selector: selector}
}

// Handle processes msg and returns the replies to send back to its scope.
// Errors never escape; they become replies.
func (b *Bot) Handle(ctx context.Context, msg *chat.Message) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.pipeline.HandleMessage(ctx, msg) {
	case capture.Cancelled:
		return []string{msgCancelled}
	case capture.Started:
		return nil
	}

	args := strings.Fields(commandLine(msg))
	if len(args) == 0 || !isCommand(args[0]) {
		return nil
	}
	args = append([]string{args[0]}, hoistFlags(commandFlags[commandNames[args[0]]], args[1:])...)

	var reply string
	app := b.newApp(ctx, msg, &reply)
	if err := app.Run(append([]string{app.Name}, args...)); err != nil {
		log.Debug().Err(err).Str("command", args[0]).Msg("command usage error")
		return []string{fmt.Sprintf(msgUsage, err)}
	}
	if reply == "" {
		return nil
	}
	return []string{reply}
}

// commandLine returns the command text of msg. In a reply, platforms may
// prefix the text with quote or mention markup, so only what follows the
// last '>' counts.
func commandLine(msg *chat.Message) string {
	line := msg.Text()
	if msg.Quote != nil {
		line = line[strings.LastIndex(line, ">")+1:]
	}
	return strings.TrimSpace(line)
}

// commandNames maps every command name and alias to its command name.
var commandNames = map[string]string{
	"quote_add": "quote_add", "addquote": "quote_add",
	"quote_remove": "quote_remove", "rmquote": "quote_remove",
	"quote_tag_add": "quote_tag_add", "addtag": "quote_tag_add",
	"quote_tag_remove": "quote_tag_remove", "rmtag": "quote_tag_remove",
	"quote_select": "quote_select", "quote": "quote_select",
}

func isCommand(name string) bool {
	_, ok := commandNames[name]
	return ok
}

// commandFlags lists the flags of each command, short and long, and whether
// the flag takes a value. Must match the cli.Flag definitions below.
var commandFlags = map[string]map[string]bool{
	"quote_remove": {"id": true, "i": true},
	"quote_select": {
		"id": true, "i": true,
		"page": true, "p": true,
		"global": false, "g": false,
		"tag": false, "t": false,
		"list": false, "l": false,
		"full": false, "f": false,
	},
}

// hoistFlags moves the known flags of a command, with their values, ahead of
// its positional arguments and ends them with "--". Chat users put options
// anywhere, while the parser stops at the first positional argument.
// Unknown dash words stay positional, and everything after a literal "--" is
// left as typed.
func hoistFlags(flags map[string]bool, args []string) []string {
	named := make([]string, 0, len(args)+1)
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		name, inline := flagName(arg)
		takesValue, ok := flags[name]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		named = append(named, arg)
		if takesValue && !inline && i+1 < len(args) {
			i++
			named = append(named, args[i])
		}
	}
	named = append(named, "--")
	return append(named, rest...)
}

// flagName returns the name of a "-x", "--name" or "--name=value" word and
// whether the value is inline. Other words yield "".
func flagName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name := strings.TrimPrefix(arg[1:], "-")
	name, _, inline := strings.Cut(name, "=")
	return name, inline
}

// newApp builds the command parser for one message. Actions write their
// reply to reply.
func (b *Bot) newApp(ctx context.Context, msg *chat.Message, reply *string) *cli.App {
	var out bytes.Buffer
	app := &cli.App{
		Name:            "quotebook",
		HideHelp:        true,
		HideHelpCommand: true,
		Writer:          &out,
		ErrWriter:       &out,
		Commands: []*cli.Command{
			b.addCmd(msg, reply),
			b.removeCmd(ctx, msg, reply),
			b.tagAddCmd(ctx, msg, reply),
			b.tagRemoveCmd(ctx, msg, reply),
			b.selectCmd(ctx, msg, reply),
		},
	}
	// Disable default exit error handler so the event loop keeps running
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	for _, cmd := range app.Commands {
		cmd.HideHelp = true
		cmd.OnUsageError = func(_ *cli.Context, err error, _ bool) error { return err }
	}
	return app
}

func (b *Bot) addCmd(msg *chat.Message, reply *string) *cli.Command {
	return &cli.Command{
		Name:    "quote_add",
		Aliases: []string{"addquote"},
		Usage:   "Capture the next image you send as a quote",
		Action: func(c *cli.Context) error {
			if _, err := b.pipeline.Request(msg, c.Args().Slice()); err != nil {
				*reply = b.errorText(err, 0)
				return nil
			}
			*reply = fmt.Sprintf(msgWaitPic, b.cfg.CancelKeyword)
			return nil
		},
	}
}

func (b *Bot) removeCmd(ctx context.Context, msg *chat.Message, reply *string) *cli.Command {
	return &cli.Command{
		Name:    "quote_remove",
		Aliases: []string{"rmquote"},
		Usage:   "Remove a quote by id or by quoting it",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Aliases: []string{"i"}, Usage: "Quote id"},
		},
		Action: func(c *cli.Context) error {
			id := c.Int64("id")
			if !c.IsSet("id") {
				resolved, err := ops.ResolveQuoted(ctx, b.db, msg.Quote)
				if err != nil {
					if errors.Is(err, errors.ErrMalformedReference) {
						*reply = msgRemoveHint
					} else {
						*reply = b.errorText(err, 0)
					}
					return nil
				}
				id = resolved
			}

			if _, err := ops.Remove(ctx, b.db, b.cfg.DataDir, id); err != nil {
				*reply = b.errorText(err, 0)
				return nil
			}
			*reply = fmt.Sprintf(msgRemoveSucceed, id)
			return nil
		},
	}
}

func (b *Bot) tagAddCmd(ctx context.Context, msg *chat.Message, reply *string) *cli.Command {
	return &cli.Command{
		Name:    "quote_tag_add",
		Aliases: []string{"addtag"},
		Usage:   "Add tags to the quoted quote",
		Action: func(c *cli.Context) error {
			*reply = b.editTags(ctx, msg, c.Args().Slice(), msgNoTagToAdd, msgTagAddSucceed, ops.AddTags)
			return nil
		},
	}
}

func (b *Bot) tagRemoveCmd(ctx context.Context, msg *chat.Message, reply *string) *cli.Command {
	return &cli.Command{
		Name:    "quote_tag_remove",
		Aliases: []string{"rmtag"},
		Usage:   "Remove tags from the quoted quote",
		Action: func(c *cli.Context) error {
			*reply = b.editTags(ctx, msg, c.Args().Slice(), msgNoTagToRemove, msgTagRemoveSucceed, ops.RemoveTags)
			return nil
		},
	}
}

type tagEdit func(ctx context.Context, database *sql.DB, id int64, tags []string) (*ops.TagsOutput, error)

func (b *Bot) editTags(ctx context.Context, msg *chat.Message, tags []string, noTags, succeed string, edit tagEdit) string {
	if len(tags) == 0 {
		return noTags
	}
	if msg.Quote == nil {
		return msgNoMessageQuoted
	}
	id, err := ops.ResolveQuoted(ctx, b.db, msg.Quote)
	if err != nil {
		return b.errorText(err, 0)
	}

	out, err := edit(ctx, b.db, id, tags)
	if err != nil {
		return b.errorText(err, id)
	}
	return fmt.Sprintf(succeed, out.Count)
}

func (b *Bot) selectCmd(ctx context.Context, msg *chat.Message, reply *string) *cli.Command {
	return &cli.Command{
		Name:    "quote_select",
		Aliases: []string{"quote"},
		Usage:   "Pick a random quote, look one up, or list quotes",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Aliases: []string{"i"}, Usage: "Quote id"},
			&cli.BoolFlag{Name: "global", Aliases: []string{"g"}, Usage: "Search every scope"},
			&cli.BoolFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Show tags"},
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "List ids and tags"},
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "Listing page"},
			&cli.BoolFlag{Name: "full", Aliases: []string{"f"}, Usage: "List every remaining page"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SelectInput{
				Scope:    msg.Scope(),
				User:     msg.UserID,
				Global:   c.Bool("global"),
				WithTags: c.Bool("tag"),
				List:     c.Bool("list"),
				Page:     c.Int("page"),
				Full:     c.Bool("full"),
				Filters:  c.Args().Slice(),
			}
			if c.IsSet("id") {
				id := c.Int64("id")
				input.ID = &id
			}

			out, err := b.selector.Select(ctx, input)
			if err != nil {
				*reply = b.errorText(err, 0)
				return nil
			}
			*reply = formatSelect(out)
			return nil
		},
	}
}

// formatSelect renders a pick as its quote text and a listing as one
// "id:tags" line per quote.
func formatSelect(out *ops.SelectOutput) string {
	if out.Quote != nil {
		return out.Rendered
	}

	var sb strings.Builder
	for _, item := range out.Items {
		sb.WriteString(item.Line())
		sb.WriteByte('\n')
	}
	if out.Page != nil && out.Page.More {
		fmt.Fprintf(&sb, msgRest, out.Page.Number, out.Page.Total)
	}
	return sb.String()
}

// errorText maps an operation error to a reply. id, when known, names the
// quote in not-found replies.
func (b *Bot) errorText(err error, id int64) string {
	switch {
	case errors.Is(err, errors.ErrCapturePending):
		return msgPicInProcess
	case errors.Is(err, errors.ErrCaptureWaiting):
		return fmt.Sprintf(msgStillWaiting, b.cfg.CancelKeyword)
	case errors.Is(err, errors.ErrNotFound):
		if id > 0 {
			return fmt.Sprintf(msgNotFound, id)
		}
		return msgNoResult
	case errors.Is(err, errors.ErrMalformedReference):
		return msgNoMessageQuoted
	case errors.Is(err, errors.ErrIntegrityFailure):
		// The cleanup notice tells the user
		return ""
	}
	if qErr, ok := errors.As(err); ok && qErr.Code == errors.ErrInvalidRequest {
		return qErr.Message
	}
	log.Error().Err(err).Msg("command failed")
	return msgFailed
}
