package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hpungsan/quotebook/internal/bot"
	"github.com/hpungsan/quotebook/internal/chat"
	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/ops"
	"github.com/hpungsan/quotebook/internal/quote"
)

// Handlers contains HTTP route handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	bot      *bot.Bot
	selector *ops.Selector
}

// NewHandlers creates the route handlers.
func NewHandlers(database *sql.DB, cfg *config.Config, b *bot.Bot, selector *ops.Selector) *Handlers {
	return &Handlers{db: database, cfg: cfg, bot: b, selector: selector}
}

// HandleEvent handles POST /events: one chat message in, its replies out.
func (h *Handlers) HandleEvent(c *gin.Context) {
	var msg chat.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		writeError(c, errors.NewInvalidRequest("invalid message: "+err.Error()))
		return
	}
	if msg.UserID == "" {
		writeError(c, errors.NewInvalidRequest("user_id is required"))
		return
	}

	replies := h.bot.Handle(c.Request.Context(), &msg)
	if replies == nil {
		replies = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// HandleList handles GET /quotes: a listing by default, a random pick with
// pick=true.
func (h *Handlers) HandleList(c *gin.Context) {
	input := ops.SelectInput{
		Scope:    c.Query("scope"),
		Global:   parseBool(c, "global"),
		WithTags: parseBool(c, "tags"),
		List:     !parseBool(c, "pick"),
		Page:     parseInt(c, "page", 1),
		Full:     parseBool(c, "full"),
		Filters:  c.QueryArray("tag"),
	}

	out, err := h.selector.Select(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// HandleGet handles GET /quotes/:id.
func (h *Handlers) HandleGet(c *gin.Context) {
	out, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out)
}

// HandleFile handles GET /quotes/:id/file, serving the stored attachment.
func (h *Handlers) HandleFile(c *gin.Context) {
	out, ok := h.lookup(c)
	if !ok {
		return
	}
	if !out.Quote.IsLocalFile() {
		writeError(c, errors.NewNotFound("file of quote "+c.Param("id")))
		return
	}
	c.File(quote.FilePath(h.cfg.DataDir, out.Quote.ID))
}

// HandleView handles GET /quotes/:id/view, an HTML page for one quote.
func (h *Handlers) HandleView(c *gin.Context) {
	out, ok := h.lookup(c)
	if !ok {
		return
	}

	page, err := renderView(out.Quote)
	if err != nil {
		writeError(c, errors.NewInternal(err))
		return
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// lookup resolves the :id parameter, writing the error response on failure.
func (h *Handlers) lookup(c *gin.Context) (*ops.SelectOutput, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, errors.NewInvalidRequest("id must be a positive integer"))
		return nil, false
	}

	out, err := h.selector.Select(c.Request.Context(), ops.SelectInput{
		ID:       &id,
		WithTags: parseBool(c, "tags"),
	})
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return out, true
}

// writeError writes a QuoteError as JSON with its status.
func writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.StatusOf(err), errorBody(err))
}

// errorBody builds the error payload. Details of internal errors are never
// exposed.
func errorBody(err error) gin.H {
	qErr, ok := errors.As(err)
	if !ok {
		return gin.H{"error": gin.H{
			"code":    errors.ErrInternal,
			"message": "an internal error occurred",
			"status":  http.StatusInternalServerError,
		}}
	}

	body := gin.H{
		"code":    qErr.Code,
		"message": qErr.Message,
		"status":  qErr.Status,
	}
	if qErr.Code != errors.ErrInternal && qErr.Details != nil {
		body["details"] = qErr.Details
	}
	return gin.H{"error": body}
}

func parseBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

func parseInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
