package internal

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// Facet names one slice of per-conversation annotation data
type Facet string

const (
	FacetSettings  Facet = "settings"
	FacetOutline   Facet = "outline"
	FacetComments  Facet = "comments"
	FacetIndents   Facet = "indents"
	FacetNotes     Facet = "notes"
	FacetRawSource Facet = "rawSource"
)

// AnnotationStore maps (conversation identity, facet) pairs onto the
// local annotation database. Loads never fail: a missing or corrupt
// value yields the facet's empty default, and corruption is logged, not
// surfaced. Saves overwrite wholesale; read-modify-write merging is the
// caller's job.
type AnnotationStore struct {
	db *sql.DB
}

// NewAnnotationStore creates an AnnotationStore over an open database
func NewAnnotationStore(db *sql.DB) *AnnotationStore {
	return &AnnotationStore{db: db}
}

func facetKey(id string, facet Facet) string {
	return string(facet) + ":" + id
}

// loadJSON reads one facet into dest. The bool reports whether a stored
// value existed; a non-nil error means the value existed but could not
// be read or parsed, so the caller substitutes the facet's default.
func (s *AnnotationStore) loadJSON(id string, facet Facet, dest interface{}) (bool, error) {
	raw, found, err := getValue(s.db, facetKey(id, facet))
	if err != nil {
		return false, &StorageError{Facet: string(facet), ID: id, Op: "read", Err: err}
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, &StorageError{Facet: string(facet), ID: id, Op: "parse", Err: err}
	}
	return true, nil
}

func (s *AnnotationStore) saveJSON(id string, facet Facet, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &StorageError{Facet: string(facet), ID: id, Op: "write", Err: err}
	}
	if err := setValue(s.db, facetKey(id, facet), string(data)); err != nil {
		return &StorageError{Facet: string(facet), ID: id, Op: "write", Err: err}
	}
	return nil
}

// LoadSettings returns the stored settings for id. The first load that
// finds nothing persists an empty settings object, marking the identity
// as seen; "seen with defaults" and "never opened" stay distinguishable.
func (s *AnnotationStore) LoadSettings(id string) Settings {
	var settings Settings
	found, err := s.loadJSON(id, FacetSettings, &settings)
	if err != nil {
		LogWarn("settings for %s unreadable, using defaults: %v", id, err)
		return Settings{}
	}
	if !found {
		if err := s.SaveSettings(id, Settings{}); err != nil {
			LogWarn("failed to persist first-touch settings for %s: %v", id, err)
		}
	}
	return settings
}

// SaveSettings overwrites the settings facet
func (s *AnnotationStore) SaveSettings(id string, settings Settings) error {
	return s.saveJSON(id, FacetSettings, settings)
}

// LoadOutline returns the outline facet, empty when absent or corrupt
func (s *AnnotationStore) LoadOutline(id string) Outline {
	var outline Outline
	if _, err := s.loadJSON(id, FacetOutline, &outline); err != nil {
		LogWarn("outline for %s unreadable, using empty: %v", id, err)
		return Outline{}
	}
	if outline == nil {
		outline = Outline{}
	}
	return outline
}

// SaveOutline overwrites the outline facet
func (s *AnnotationStore) SaveOutline(id string, outline Outline) error {
	return s.saveJSON(id, FacetOutline, outline)
}

// LoadComments returns the comments facet, empty when absent or corrupt.
// Legacy bare-string entries parse as comments with an empty heading.
func (s *AnnotationStore) LoadComments(id string) Comments {
	var comments Comments
	if _, err := s.loadJSON(id, FacetComments, &comments); err != nil {
		LogWarn("comments for %s unreadable, using empty: %v", id, err)
		return Comments{}
	}
	if comments == nil {
		comments = Comments{}
	}
	return comments
}

// SaveComments overwrites the comments facet
func (s *AnnotationStore) SaveComments(id string, comments Comments) error {
	return s.saveJSON(id, FacetComments, comments)
}

// LoadIndents returns the indents facet, empty when absent or corrupt
func (s *AnnotationStore) LoadIndents(id string) Indents {
	var indents Indents
	if _, err := s.loadJSON(id, FacetIndents, &indents); err != nil {
		LogWarn("indents for %s unreadable, using empty: %v", id, err)
		return Indents{}
	}
	if indents == nil {
		indents = Indents{}
	}
	return indents
}

// SaveIndents overwrites the indents facet
func (s *AnnotationStore) SaveIndents(id string, indents Indents) error {
	return s.saveJSON(id, FacetIndents, indents)
}

// LoadNotes returns the notes facet, blank when absent or corrupt
func (s *AnnotationStore) LoadNotes(id string) Notes {
	var notes Notes
	if _, err := s.loadJSON(id, FacetNotes, &notes); err != nil {
		LogWarn("notes for %s unreadable, using empty: %v", id, err)
		return Notes{}
	}
	return notes
}

// SaveNotes overwrites the notes facet
func (s *AnnotationStore) SaveNotes(id string, notes Notes) error {
	return s.saveJSON(id, FacetNotes, notes)
}

// SetNotes sets or deletes the notes facet. An empty note deletes the
// entry rather than storing a blank record.
func (s *AnnotationStore) SetNotes(id string, notes Notes) error {
	if notes.IsEmpty() {
		if err := deleteValue(s.db, facetKey(id, FacetNotes)); err != nil {
			return &StorageError{Facet: string(FacetNotes), ID: id, Op: "delete", Err: err}
		}
		return nil
	}
	return s.saveJSON(id, FacetNotes, notes)
}

// LoadRawSource returns the cached original markup and whether it exists
func (s *AnnotationStore) LoadRawSource(id string) (string, bool) {
	raw, found, err := getValue(s.db, facetKey(id, FacetRawSource))
	if err != nil {
		LogWarn("rawSource for %s unreadable: %v", id, err)
		return "", false
	}
	return raw, found
}

// SaveRawSource caches the original markup for id
func (s *AnnotationStore) SaveRawSource(id, markup string) error {
	if err := setValue(s.db, facetKey(id, FacetRawSource), markup); err != nil {
		return &StorageError{Facet: string(FacetRawSource), ID: id, Op: "write", Err: err}
	}
	return nil
}

// SetOutlineEntry sets or deletes one outline entry. Empty text deletes,
// so "no entry" and "cleared entry" are indistinguishable to readers.
func (s *AnnotationStore) SetOutlineEntry(id string, index int, text string) error {
	outline := s.LoadOutline(id)
	if text == "" {
		delete(outline, index)
	} else {
		outline[index] = text
	}
	return s.SaveOutline(id, outline)
}

// SetCommentEntry sets or deletes one comment entry. An all-empty
// comment deletes.
func (s *AnnotationStore) SetCommentEntry(id string, index int, comment Comment) error {
	comments := s.LoadComments(id)
	if comment.IsEmpty() {
		delete(comments, index)
	} else {
		comments[index] = comment
	}
	return s.SaveComments(id, comments)
}

// SetIndentEntry sets or deletes one indent entry. Level zero deletes.
func (s *AnnotationStore) SetIndentEntry(id string, index, level int) error {
	indents := s.LoadIndents(id)
	if level <= 0 {
		delete(indents, index)
	} else {
		indents[index] = level
	}
	return s.SaveIndents(id, indents)
}

// ResetAll deletes the outline, comments, and indents facets for id.
// Settings, notes, and rawSource are never touched. The three deletions
// are sequential, not atomic; a failure mid-sequence leaves a partial
// reset the user can correct by re-triggering.
func (s *AnnotationStore) ResetAll(id string) error {
	for _, facet := range []Facet{FacetOutline, FacetComments, FacetIndents} {
		if err := deleteValue(s.db, facetKey(id, facet)); err != nil {
			return &StorageError{Facet: string(facet), ID: id, Op: "delete", Err: err}
		}
	}
	return nil
}

// LoadAnnotated assembles the full annotated conversation for id from
// the cached markup and every annotation facet. The bool is false when
// no markup is cached for id.
func (s *AnnotationStore) LoadAnnotated(id string) (*AnnotatedConversation, bool) {
	raw, ok := s.LoadRawSource(id)
	if !ok {
		return nil, false
	}

	conv := &AnnotatedConversation{
		ID:    id,
		Turns: ExtractTurns(raw),
	}
	if outline := s.LoadOutline(id); len(outline) > 0 {
		conv.Outline = outline
	}
	if comments := s.LoadComments(id); len(comments) > 0 {
		conv.Comments = comments
	}
	if indents := s.LoadIndents(id); len(indents) > 0 {
		conv.Indents = indents
	}
	if notes := s.LoadNotes(id); !notes.IsEmpty() {
		conv.Notes = &notes
	}
	return conv, true
}

// ListIdentities returns every conversation identity the store has seen,
// based on the settings facet written on first touch.
func (s *AnnotationStore) ListIdentities() ([]string, error) {
	keys, err := listKeys(s.db, string(FacetSettings)+":%")
	if err != nil {
		return nil, &StorageError{Facet: string(FacetSettings), Op: "read", Err: err}
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, string(FacetSettings)+":"))
	}
	return ids, nil
}
