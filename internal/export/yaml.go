package export

import (
	"io"

	"github.com/threadmark/threadmark/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports annotated conversations in YAML format
type YAMLExporter struct{}

// Export writes the conversation as YAML
func (e *YAMLExporter) Export(conv *internal.AnnotatedConversation, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(conv)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
