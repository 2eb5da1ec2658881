package bot

import (
	"context"
	"fmt"

	"github.com/hpungsan/quotebook/internal/notify"
	"github.com/hpungsan/quotebook/internal/quote"
)

// Reply texts.
const (
	msgWaitPic          = "Send the image to capture. Send %q to abort."
	msgStillWaiting     = "You already have a capture waiting for an image. Send an image, or %q to abort."
	msgPicInProcess     = "Your previous image is still being processed."
	msgCancelled        = "Capture cancelled."
	msgNoResult         = "No result."
	msgNotFound         = "Quote %d not found."
	msgNoTagToAdd       = "No tags given to add."
	msgNoTagToRemove    = "No tags given to remove."
	msgNoMessageQuoted  = "No quote message quoted."
	msgRemoveHint       = "Quote the message to remove, or pass -i <id> (e.g. quote_remove -i 123)."
	msgRemoveSucceed    = "Quote %d removed."
	msgTagAddSucceed    = "Added %d tag(s)."
	msgTagRemoveSucceed = "Removed %d tag(s)."
	msgRest             = "More results: page %d of %d. Use -p to see other pages."
	msgUsage            = "Invalid command: %v"
	msgFailed           = "Something went wrong, please try again later."
)

// NoticeText returns the chat text for an asynchronous notice.
func NoticeText(n notify.Notice) string {
	switch n.Kind {
	case notify.KindCaptured:
		return fmt.Sprintf("Quote %d added.", n.QuoteID)
	case notify.KindDownloadFailed:
		text := fmt.Sprintf("The file of quote %d is broken and will be removed.", n.QuoteID)
		if len(n.Tags) > 0 {
			text += "\n" + quote.Summary{ID: n.QuoteID, Tags: n.Tags}.Line()
		}
		return text
	case notify.KindRemoved:
		return fmt.Sprintf("Quote %d removed.", n.QuoteID)
	case notify.KindTooLarge:
		return fmt.Sprintf("The image for quote %d is too large and was discarded.", n.QuoteID)
	}
	return ""
}

// TextNotifier fills in Notice.Text before handing notices on.
type TextNotifier struct {
	Next notify.Notifier
}

// Notify implements notify.Notifier.
func (t TextNotifier) Notify(ctx context.Context, n notify.Notice) {
	if n.Text == "" {
		n.Text = NoticeText(n)
	}
	t.Next.Notify(ctx, n)
}
