package internal

// Renderer turns an extracted turn list plus its annotation maps into
// visual panels. Rendering lives outside this subsystem; the sync and
// annotation core only hands it data.
type Renderer interface {
	Render(id string, turns []Turn, outline Outline, comments Comments, indents Indents) error
}

// MarkupFormatter converts one turn's raw markup fragment into a
// display-safe fragment (code blocks, lists, emphasis). Implementations
// live with the renderer, never in the core.
type MarkupFormatter interface {
	Format(sourceFragment string) (string, error)
}
