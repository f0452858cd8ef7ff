package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/threadmark/threadmark/internal"
)

func TestJSONExporter_Roundtrip(t *testing.T) {
	conv := testConversation()

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(conv, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var decoded internal.AnnotatedConversation
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported JSON unparsable: %v", err)
	}

	if decoded.ID != conv.ID {
		t.Errorf("id = %s, want %s", decoded.ID, conv.ID)
	}
	if len(decoded.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(decoded.Turns))
	}
	if decoded.Outline[0] != "greeting" {
		t.Errorf("outline = %v", decoded.Outline)
	}
	if decoded.Comments[1].Heading != "tone" {
		t.Errorf("comments = %v", decoded.Comments)
	}
	if decoded.Notes == nil || decoded.Notes.Text != "remember this" {
		t.Errorf("notes = %+v", decoded.Notes)
	}
}
