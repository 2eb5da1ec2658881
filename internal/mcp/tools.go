package mcp

import "github.com/mark3labs/mcp-go/mcp"

var selectToolDef = mcp.NewTool("quote_select",
	mcp.WithDescription("Draw a random quote from a scope. Recently drawn quotes are less likely to repeat."),
	mcp.WithString("scope", mcp.Description("Community id, or user id for a private chat. Required unless global is set.")),
	mcp.WithString("user", mcp.Description("User asking, used for cleanup notices")),
	mcp.WithBoolean("global", mcp.Description("Draw from every scope")),
	mcp.WithBoolean("with_tags", mcp.Description("Include tags in the rendered quote")),
	mcp.WithArray("filters",
		mcp.Description("Regular expressions matched against the serialized tags; all must match"),
		mcp.WithStringItems(),
	),
)

var getToolDef = mcp.NewTool("quote_get",
	mcp.WithDescription("Fetch one quote by id"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Quote id")),
	mcp.WithBoolean("with_tags", mcp.Description("Include tags in the rendered quote")),
)

var listToolDef = mcp.NewTool("quote_list",
	mcp.WithDescription("List quote ids and tags, one page at a time"),
	mcp.WithString("scope", mcp.Description("Community id, or user id for a private chat. Required unless global is set.")),
	mcp.WithBoolean("global", mcp.Description("List every scope")),
	mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
	mcp.WithBoolean("full", mcp.Description("List from the page start to the end")),
	mcp.WithArray("filters",
		mcp.Description("Regular expressions matched against the serialized tags; all must match"),
		mcp.WithStringItems(),
	),
)

var removeToolDef = mcp.NewTool("quote_remove",
	mcp.WithDescription("Permanently delete a quote and its stored file"),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Quote id")),
)

var tagAddToolDef = mcp.NewTool("quote_tag_add",
	mcp.WithDescription("Add tags to a quote. Tags already present are skipped."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Quote id")),
	mcp.WithArray("tags", mcp.Required(), mcp.Description("Tags to add"), mcp.WithStringItems()),
)

var tagRemoveToolDef = mcp.NewTool("quote_tag_remove",
	mcp.WithDescription("Remove tags from a quote. The scope tag is kept."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Quote id")),
	mcp.WithArray("tags", mcp.Required(), mcp.Description("Tags to remove"), mcp.WithStringItems()),
)
