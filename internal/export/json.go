package export

import (
	"encoding/json"
	"io"

	"github.com/threadmark/threadmark/internal"
)

// JSONExporter exports annotated conversations in JSON format (pretty-printed)
type JSONExporter struct{}

// Export writes the conversation as indented JSON
func (e *JSONExporter) Export(conv *internal.AnnotatedConversation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(conv)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
