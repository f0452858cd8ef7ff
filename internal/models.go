package internal

import (
	"encoding/json"
	"fmt"
)

// Turn represents one normalized message extracted from conversation markup
type Turn struct {
	ID             string `json:"id" yaml:"id"`
	Role           string `json:"role" yaml:"role"` // "user" or "assistant"
	Text           string `json:"text" yaml:"text"`
	SourceFragment string `json:"sourceFragment,omitempty" yaml:"source_fragment,omitempty"`
}

// Settings holds per-conversation display preferences
type Settings struct {
	FontSize    int `json:"fontSize,omitempty"`
	PanelHeight int `json:"panelHeight,omitempty"`
}

// Comment is a structured annotation attached to one turn
type Comment struct {
	Heading string `json:"heading" yaml:"heading"`
	Turn    string `json:"turn" yaml:"turn"`
}

// IsEmpty reports whether both fields are blank
func (c Comment) IsEmpty() bool {
	return c.Heading == "" && c.Turn == ""
}

// UnmarshalJSON accepts either the structured form or the legacy bare
// string form, which maps to a comment with an empty heading. Legacy
// entries are not rewritten in storage until the user next saves them.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		c.Heading = ""
		c.Turn = legacy
		return nil
	}

	type comment Comment
	var full comment
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("failed to parse comment: %w", err)
	}
	*c = Comment(full)
	return nil
}

// Notes holds the free-form note for a conversation
type Notes struct {
	Text        string `json:"text" yaml:"text"`
	LastUpdated string `json:"lastUpdated" yaml:"last_updated"` // ISO-8601
}

// IsEmpty reports whether the note carries no text
func (n Notes) IsEmpty() bool {
	return n.Text == ""
}

// Outline maps turn index to custom summary text
type Outline map[int]string

// Comments maps turn index to a structured comment
type Comments map[int]Comment

// Indents maps turn index to a non-negative indent level
type Indents map[int]int

// ShareData is the payload of a published snapshot. Only non-empty
// fields are included; an absent field never clears anything on hydrate.
type ShareData struct {
	ChatHTML string             `json:"chatHtml,omitempty"`
	Turns    []CanonicalMessage `json:"turns,omitempty"`
	Outline  Outline            `json:"outline,omitempty"`
	Comments Comments           `json:"comments,omitempty"`
	Indents  Indents            `json:"indents,omitempty"`
	Notes    *Notes             `json:"notes,omitempty"`
}

// ShareDocument is the stored form of a published snapshot
type ShareDocument struct {
	ConversationID string    `json:"conversationId"`
	Timestamp      string    `json:"timestamp"`
	Data           ShareData `json:"data"`
}

// AnnotatedConversation bundles a conversation's extracted turns with
// its annotation facets, for export and display.
type AnnotatedConversation struct {
	ID       string   `json:"id" yaml:"id"`
	Turns    []Turn   `json:"turns" yaml:"turns"`
	Outline  Outline  `json:"outline,omitempty" yaml:"outline,omitempty"`
	Comments Comments `json:"comments,omitempty" yaml:"comments,omitempty"`
	Indents  Indents  `json:"indents,omitempty" yaml:"indents,omitempty"`
	Notes    *Notes   `json:"notes,omitempty" yaml:"notes,omitempty"`
}
