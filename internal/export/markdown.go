package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/threadmark/threadmark/internal"
)

// MarkdownExporter exports annotated conversations in Markdown format
type MarkdownExporter struct{}

// Export writes the conversation as Markdown. Outline overrides become
// per-turn headings, comments follow their turn, and indent levels
// render as blockquote nesting.
func (e *MarkdownExporter) Export(conv *internal.AnnotatedConversation, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Conversation %s\n\n", conv.ID)
	_, _ = fmt.Fprintf(w, "**Turns:** %d\n\n", len(conv.Turns))

	if conv.Notes != nil && conv.Notes.Text != "" {
		_, _ = fmt.Fprintf(w, "## Notes\n\n%s\n\n", conv.Notes.Text)
		if conv.Notes.LastUpdated != "" {
			_, _ = fmt.Fprintf(w, "_Last updated: %s_\n\n", conv.Notes.LastUpdated)
		}
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, turn := range conv.Turns {
		if summary, ok := conv.Outline[i]; ok {
			_, _ = fmt.Fprintf(w, "### %s\n\n", summary)
		}

		content := escapeMarkdown(turn.Text)
		if level := conv.Indents[i]; level > 0 {
			content = indentQuote(content, level)
		}

		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", turn.Role, content)

		if comment, ok := conv.Comments[i]; ok {
			if comment.Heading != "" {
				_, _ = fmt.Fprintf(w, "> **%s**\n", escapeMarkdown(comment.Heading))
			}
			if comment.Turn != "" {
				_, _ = fmt.Fprintf(w, "> %s\n", escapeMarkdown(comment.Turn))
			}
			_, _ = fmt.Fprintf(w, "\n")
		}

		if i < len(conv.Turns)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// indentQuote prefixes every line with level blockquote markers
func indentQuote(text string, level int) string {
	prefix := strings.Repeat("> ", level)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// escapeMarkdown escapes markdown emphasis outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
