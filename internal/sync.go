package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// BlobClient is the remote blob store contract: one opaque JSON document
// per conversation identity.
type BlobClient interface {
	Put(ctx context.Context, id string, data ShareData) (isNew bool, err error)
	Get(ctx context.Context, id string) (*ShareDocument, error)
}

// PutResponse is the share endpoint's reply to a successful publish
type PutResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversationId"`
	ShareURL       string `json:"shareUrl"`
	Timestamp      string `json:"timestamp"`
	IsNew          bool   `json:"isNew"`
}

// HTTPBlobClient talks to a blob store server over HTTP
type HTTPBlobClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBlobClient creates a client for the blob store at baseURL
func NewHTTPBlobClient(baseURL string) *HTTPBlobClient {
	return &HTTPBlobClient{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// Put publishes the data payload under id and reports whether the
// identity was previously unknown to the store.
func (c *HTTPBlobClient) Put(ctx context.Context, id string, data ShareData) (bool, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to encode share payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/share?id=%s", c.baseURL, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("share request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("share request returned %d", resp.StatusCode)
	}

	var put PutResponse
	if err := json.NewDecoder(resp.Body).Decode(&put); err != nil {
		return false, fmt.Errorf("failed to decode share response: %w", err)
	}
	return put.IsNew, nil
}

// Get fetches the stored document for id. A missing document yields
// ErrRemoteNotFound.
func (c *HTTPBlobClient) Get(ctx context.Context, id string) (*ShareDocument, error) {
	endpoint := fmt.Sprintf("%s/shared/%s.json", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRemoteNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch request returned %d", resp.StatusCode)
	}

	var doc ShareDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode shared document: %w", err)
	}
	return &doc, nil
}

// Source names where a resolution's conversation content came from
type Source string

const (
	SourceLocal  Source = "local"  // rawSource served from the annotation store
	SourceRemote Source = "remote" // rawSource hydrated from the blob store
	SourceNone   Source = "none"   // remote document existed but carried no markup
)

// Params carries the two mutually exclusive address-bar tokens
type Params struct {
	Shared string
	Open   string
}

// Resolution is the outcome of resolving the address-bar state. Mode
// carries the rewritten token: a successful shared resolution rewrites
// itself to open with the same id, without reloading.
type Resolution struct {
	ID        string
	Source    Source
	RawSource string
	Turns     []Turn
	Mode      string // rewritten query token, e.g. "open=<id>"
}

// PublishResult reports the outcome of a publish
type PublishResult struct {
	IsNew bool
}

// SyncController orchestrates publish and resolve between the local
// annotation store and the remote blob store. All state is threaded
// through parameters and results; there is no current-conversation
// global.
type SyncController struct {
	store  *AnnotationStore
	client BlobClient
}

// NewSyncController wires a controller over a store and a blob client
func NewSyncController(store *AnnotationStore, client BlobClient) *SyncController {
	return &SyncController{store: store, client: client}
}

// Resolve processes the address-bar state. When both tokens are present,
// shared takes precedence and open is never evaluated.
func (c *SyncController) Resolve(ctx context.Context, p Params) (*Resolution, error) {
	if p.Shared != "" {
		return c.resolveShared(ctx, p.Shared)
	}
	if p.Open != "" {
		return c.resolveOpen(ctx, p.Open)
	}
	return nil, fmt.Errorf("no conversation token to resolve")
}

// resolveShared fetches the remote document, writes every present field
// into the local store (absent fields are left untouched, never
// cleared), and rewrites the mode token from shared to open.
func (c *SyncController) resolveShared(ctx context.Context, id string) (*Resolution, error) {
	if !ValidIdentity(id) {
		return nil, &IdentityError{Token: id}
	}

	doc, err := c.client.Get(ctx, id)
	if err != nil {
		return nil, &SyncError{Op: "fetch", ID: id, Err: err}
	}

	if err := c.hydrate(id, doc.Data); err != nil {
		return nil, err
	}

	res := &Resolution{ID: id, Mode: "open=" + id}
	raw, ok := c.store.LoadRawSource(id)
	if !ok {
		// The remote copy had annotations but no markup. Soft success.
		res.Source = SourceNone
		return res, nil
	}

	res.Source = SourceRemote
	res.RawSource = raw
	res.Turns = ExtractTurns(raw)
	return res, nil
}

// resolveOpen loads from the local cache when the markup is present and
// falls back to exactly one shared resolution when it is not, on the
// assumption that the local cache was cleared but the remote copy still
// exists.
func (c *SyncController) resolveOpen(ctx context.Context, id string) (*Resolution, error) {
	if !ValidIdentity(id) {
		return nil, &IdentityError{Token: id}
	}

	raw, ok := c.store.LoadRawSource(id)
	if !ok {
		return c.resolveShared(ctx, id)
	}

	return &Resolution{
		ID:        id,
		Source:    SourceLocal,
		RawSource: raw,
		Turns:     ExtractTurns(raw),
		Mode:      "open=" + id,
	}, nil
}

// hydrate writes every present field of a fetched document into the
// local store and marks the identity as seen, so it shows up in listings
// like a locally imported conversation.
func (c *SyncController) hydrate(id string, data ShareData) error {
	c.store.LoadSettings(id)
	if data.ChatHTML != "" {
		if err := c.store.SaveRawSource(id, data.ChatHTML); err != nil {
			return err
		}
	}
	if data.Outline != nil {
		if err := c.store.SaveOutline(id, data.Outline); err != nil {
			return err
		}
	}
	if data.Comments != nil {
		if err := c.store.SaveComments(id, data.Comments); err != nil {
			return err
		}
	}
	if data.Indents != nil {
		if err := c.store.SaveIndents(id, data.Indents); err != nil {
			return err
		}
	}
	if data.Notes != nil {
		if err := c.store.SaveNotes(id, *data.Notes); err != nil {
			return err
		}
	}
	return nil
}

// Publish assembles a document from every non-empty local facet and puts
// it to the blob store. The remote document is replaced wholesale from
// current local truth; last writer wins. Publish never mutates the local
// store, so a failed publish leaves no partial state.
func (c *SyncController) Publish(ctx context.Context, id string) (*PublishResult, error) {
	if !ValidIdentity(id) {
		return nil, &IdentityError{Token: id}
	}

	data := ShareData{}
	if raw, ok := c.store.LoadRawSource(id); ok {
		data.ChatHTML = raw
		data.Turns = CoerceMessages(ExtractTurns(raw))
	}
	if outline := c.store.LoadOutline(id); len(outline) > 0 {
		data.Outline = outline
	}
	if comments := c.store.LoadComments(id); len(comments) > 0 {
		data.Comments = comments
	}
	if indents := c.store.LoadIndents(id); len(indents) > 0 {
		data.Indents = indents
	}
	if notes := c.store.LoadNotes(id); !notes.IsEmpty() {
		data.Notes = &notes
	}

	isNew, err := c.client.Put(ctx, id, data)
	if err != nil {
		return nil, &SyncError{Op: "publish", ID: id, Err: err}
	}
	return &PublishResult{IsNew: isNew}, nil
}
