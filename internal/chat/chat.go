// Package chat defines the inbound event types consumed by the capture
// pipeline and the command dispatcher.
package chat

import "strings"

// ElementKind distinguishes the parts of a chat message.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindImage ElementKind = "image"
)

// Element is one part of a message body.
type Element struct {
	Kind ElementKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	Src  string      `json:"src,omitempty"`
}

// Quote is the message a user replied to.
type Quote struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// Message is an inbound chat message.
type Message struct {
	ID       string    `json:"id"`
	GuildID  string    `json:"guild_id,omitempty"`
	UserID   string    `json:"user_id"`
	Elements []Element `json:"elements"`
	Quote    *Quote    `json:"quote,omitempty"`
}

// Scope returns the community id, or the user id in a private chat.
func (m *Message) Scope() string {
	if m.GuildID != "" {
		return m.GuildID
	}
	return m.UserID
}

// FirstImage returns the first image element. Later images are ignored.
func (m *Message) FirstImage() (Element, bool) {
	for _, e := range m.Elements {
		if e.Kind == KindImage && e.Src != "" {
			return e, true
		}
	}
	return Element{}, false
}

// Text joins the text elements of the message.
func (m *Message) Text() string {
	var b strings.Builder
	for _, e := range m.Elements {
		if e.Kind == KindText {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// TextMessage builds a single-element text message.
func TextMessage(id, guild, user, text string) *Message {
	return &Message{
		ID:       id,
		GuildID:  guild,
		UserID:   user,
		Elements: []Element{{Kind: KindText, Text: text}},
	}
}

// ImageMessage builds a single-element image message.
func ImageMessage(id, guild, user, src string) *Message {
	return &Message{
		ID:       id,
		GuildID:  guild,
		UserID:   user,
		Elements: []Element{{Kind: KindImage, Src: src}},
	}
}
