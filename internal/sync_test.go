package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/threadmark/threadmark/testutil"
)

type fakeBlobClient struct {
	docs     map[string]*ShareDocument
	getCalls int
	putCalls int
	lastPut  ShareData
	putErr   error
}

func newFakeBlobClient() *fakeBlobClient {
	return &fakeBlobClient{docs: make(map[string]*ShareDocument)}
}

func (f *fakeBlobClient) Put(ctx context.Context, id string, data ShareData) (bool, error) {
	f.putCalls++
	f.lastPut = data
	if f.putErr != nil {
		return false, f.putErr
	}
	_, existed := f.docs[id]
	f.docs[id] = &ShareDocument{ConversationID: id, Timestamp: "2026-01-01T00:00:00Z", Data: data}
	return !existed, nil
}

func (f *fakeBlobClient) Get(ctx context.Context, id string) (*ShareDocument, error) {
	f.getCalls++
	doc, ok := f.docs[id]
	if !ok {
		return nil, ErrRemoteNotFound
	}
	return doc, nil
}

const otherID = "e2d03400e8203a9bd58a6b7732991ae55ca1c96c4862bc1c9bedcd9b4a10d411"

func TestResolve_SharedPrecedence(t *testing.T) {
	store := newTestStore(t)
	client := newFakeBlobClient()
	client.docs[testID] = &ShareDocument{
		ConversationID: testID,
		Data:           ShareData{ChatHTML: testutil.TwoTurnMarkup},
	}

	// The open token points at a conversation the local cache could
	// serve; it must never be evaluated when shared is present.
	if err := store.SaveRawSource(otherID, testutil.RichMarkup); err != nil {
		t.Fatal(err)
	}

	res, err := NewSyncController(store, client).Resolve(context.Background(), Params{
		Shared: testID,
		Open:   otherID,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.ID != testID {
		t.Errorf("resolved id = %s, want the shared token", res.ID)
	}
	if res.Source != SourceRemote {
		t.Errorf("source = %s, want remote", res.Source)
	}
	if client.getCalls != 1 {
		t.Errorf("remote fetches = %d, want exactly 1", client.getCalls)
	}
}

func TestResolve_SharedHydratesAndRewrites(t *testing.T) {
	store := newTestStore(t)
	client := newFakeBlobClient()
	client.docs[testID] = &ShareDocument{
		ConversationID: testID,
		Data: ShareData{
			ChatHTML: testutil.TwoTurnMarkup,
			Outline:  Outline{0: "greeting"},
			Notes:    &Notes{Text: "remote note", LastUpdated: "2026-01-01T00:00:00Z"},
		},
	}

	res, err := NewSyncController(store, client).Resolve(context.Background(), Params{Shared: testID})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.Mode != "open="+testID {
		t.Errorf("mode token = %q, want rewritten to open", res.Mode)
	}
	if len(res.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(res.Turns))
	}

	if raw, ok := store.LoadRawSource(testID); !ok || raw != testutil.TwoTurnMarkup {
		t.Error("rawSource not hydrated into the local store")
	}
	if got := store.LoadOutline(testID); got[0] != "greeting" {
		t.Errorf("outline not hydrated: %v", got)
	}
	if got := store.LoadNotes(testID); got.Text != "remote note" {
		t.Errorf("notes not hydrated: %+v", got)
	}
}

func TestResolve_SharedMarksIdentitySeen(t *testing.T) {
	store := newTestStore(t)
	client := newFakeBlobClient()
	client.docs[testID] = &ShareDocument{
		ConversationID: testID,
		Data:           ShareData{ChatHTML: testutil.TwoTurnMarkup},
	}

	if _, err := NewSyncController(store, client).Resolve(context.Background(), Params{Shared: testID}); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	// A hydrated conversation lists like an imported one.
	ids, err := store.ListIdentities()
	if err != nil {
		t.Fatalf("ListIdentities() error: %v", err)
	}
	if len(ids) != 1 || ids[0] != testID {
		t.Errorf("ListIdentities() = %v, want the hydrated identity", ids)
	}
}

func TestResolve_SharedAbsentFieldsLeftUntouched(t *testing.T) {
	store := newTestStore(t)
	if err := store.SetOutlineEntry(testID, 0, "local summary"); err != nil {
		t.Fatal(err)
	}

	client := newFakeBlobClient()
	client.docs[testID] = &ShareDocument{
		ConversationID: testID,
		Data:           ShareData{Notes: &Notes{Text: "only notes"}},
	}

	res, err := NewSyncController(store, client).Resolve(context.Background(), Params{Shared: testID})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	// The document carried no markup: soft success, nothing to render.
	if res.Source != SourceNone {
		t.Errorf("source = %s, want none", res.Source)
	}
	if got := store.LoadOutline(testID); got[0] != "local summary" {
		t.Errorf("absent remote outline cleared local outline: %v", got)
	}
	if got := store.LoadNotes(testID); got.Text != "only notes" {
		t.Errorf("present remote notes not written: %+v", got)
	}
}

func TestResolve_SharedNotFound(t *testing.T) {
	store := newTestStore(t)
	client := newFakeBlobClient()

	_, err := NewSyncController(store, client).Resolve(context.Background(), Params{Shared: testID})
	if !errors.Is(err, ErrRemoteNotFound) {
		t.Errorf("Resolve() error = %v, want ErrRemoteNotFound", err)
	}
}

func TestResolve_OpenLocal(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveRawSource(testID, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}
	client := newFakeBlobClient()

	res, err := NewSyncController(store, client).Resolve(context.Background(), Params{Open: testID})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.Source != SourceLocal {
		t.Errorf("source = %s, want local", res.Source)
	}
	if len(res.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(res.Turns))
	}
	if client.getCalls != 0 {
		t.Errorf("open with local cache made %d remote fetches, want 0", client.getCalls)
	}
}

func TestResolve_OpenFallsBackToShared(t *testing.T) {
	store := newTestStore(t)
	client := newFakeBlobClient()
	client.docs[testID] = &ShareDocument{
		ConversationID: testID,
		Data:           ShareData{ChatHTML: testutil.TwoTurnMarkup},
	}

	res, err := NewSyncController(store, client).Resolve(context.Background(), Params{Open: testID})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if client.getCalls != 1 {
		t.Errorf("fallback made %d remote fetches, want exactly 1", client.getCalls)
	}
	if res.Source != SourceRemote {
		t.Errorf("source = %s, want remote", res.Source)
	}
	if raw, ok := store.LoadRawSource(testID); !ok || raw != testutil.TwoTurnMarkup {
		t.Error("fallback did not hydrate the local cache")
	}
}

func TestResolve_MalformedIdentity(t *testing.T) {
	store := newTestStore(t)
	client := newFakeBlobClient()
	controller := NewSyncController(store, client)

	for _, params := range []Params{{Shared: "nope"}, {Open: "../etc"}} {
		var identityErr *IdentityError
		_, err := controller.Resolve(context.Background(), params)
		if !errors.As(err, &identityErr) {
			t.Errorf("Resolve(%+v) error = %v, want IdentityError", params, err)
		}
	}
	if client.getCalls != 0 {
		t.Errorf("malformed identity reached the network: %d fetches", client.getCalls)
	}
}

func TestResolve_NoTokens(t *testing.T) {
	controller := NewSyncController(newTestStore(t), newFakeBlobClient())
	if _, err := controller.Resolve(context.Background(), Params{}); err == nil {
		t.Error("Resolve() with no tokens should fail")
	}
}

func TestPublish_AssemblesNonEmptyFacets(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveRawSource(testID, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}
	if err := store.SetOutlineEntry(testID, 1, "reply"); err != nil {
		t.Fatal(err)
	}

	client := newFakeBlobClient()
	result, err := NewSyncController(store, client).Publish(context.Background(), testID)
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if !result.IsNew {
		t.Error("first publish should report isNew")
	}

	data := client.lastPut
	if data.ChatHTML != testutil.TwoTurnMarkup {
		t.Error("publish payload missing the cached markup")
	}
	if len(data.Turns) != 2 {
		t.Errorf("publish payload turns = %d, want 2", len(data.Turns))
	}
	if data.Outline[1] != "reply" {
		t.Errorf("publish payload outline = %v", data.Outline)
	}
	if data.Comments != nil || data.Indents != nil || data.Notes != nil {
		t.Errorf("empty facets leaked into the payload: %+v", data)
	}
}

func TestPublish_SecondPublishUpdates(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveRawSource(testID, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}

	client := newFakeBlobClient()
	controller := NewSyncController(store, client)

	if _, err := controller.Publish(context.Background(), testID); err != nil {
		t.Fatal(err)
	}
	result, err := controller.Publish(context.Background(), testID)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsNew {
		t.Error("second publish should not report isNew")
	}
}

// A second device that never loaded the first device's facets replaces
// the remote document wholesale. Last writer wins; this is accepted
// behavior, not a merge.
func TestPublish_LastWriterWins(t *testing.T) {
	client := newFakeBlobClient()

	deviceA := newTestStore(t)
	if err := deviceA.SaveRawSource(testID, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}
	if err := deviceA.SetOutlineEntry(testID, 0, "from device A"); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSyncController(deviceA, client).Publish(context.Background(), testID); err != nil {
		t.Fatal(err)
	}

	deviceB := newTestStore(t)
	if err := deviceB.SaveRawSource(testID, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSyncController(deviceB, client).Publish(context.Background(), testID); err != nil {
		t.Fatal(err)
	}

	if client.docs[testID].Data.Outline != nil {
		t.Errorf("device A's outline survived device B's publish: %v", client.docs[testID].Data.Outline)
	}
}

func TestPublish_RemoteFailureLeavesStoreUntouched(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveRawSource(testID, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}

	client := newFakeBlobClient()
	client.putErr = fmt.Errorf("disk full")

	_, err := NewSyncController(store, client).Publish(context.Background(), testID)
	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Publish() error = %v, want SyncError", err)
	}

	if raw, ok := store.LoadRawSource(testID); !ok || raw != testutil.TwoTurnMarkup {
		t.Error("failed publish mutated the local store")
	}
}

// End to end: import on one store, publish through a real blob server,
// hydrate on a clean store via the shared token.
func TestSync_EndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	server := httptest.NewServer(NewBlobServer(dataDir, "http://example.test", 0).Handler())
	defer server.Close()

	turns := ExtractTurns(testutil.TwoTurnMarkup)
	if len(turns) != 2 {
		t.Fatalf("extraction yielded %d turns, want 2", len(turns))
	}
	id := HashConversation(turns, "")
	if id != testID {
		t.Fatalf("identity = %s, want the fixed digest %s", id, testID)
	}

	deviceA := newTestStore(t)
	if err := deviceA.SaveRawSource(id, testutil.TwoTurnMarkup); err != nil {
		t.Fatal(err)
	}
	if err := deviceA.SetCommentEntry(id, 1, Comment{Heading: "tone", Turn: "friendly"}); err != nil {
		t.Fatal(err)
	}

	client := NewHTTPBlobClient(server.URL)
	result, err := NewSyncController(deviceA, client).Publish(context.Background(), id)
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if !result.IsNew {
		t.Error("first publish should report isNew")
	}

	deviceB := newTestStore(t)
	res, err := NewSyncController(deviceB, client).Resolve(context.Background(), Params{Shared: id})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if res.Source != SourceRemote || len(res.Turns) != 2 {
		t.Errorf("resolution = %+v, want 2 remote turns", res)
	}
	if raw, ok := deviceB.LoadRawSource(id); !ok || raw != testutil.TwoTurnMarkup {
		t.Error("hydrated rawSource does not equal the original markup")
	}
	if got := deviceB.LoadComments(id); got[1].Heading != "tone" || got[1].Turn != "friendly" {
		t.Errorf("hydrated comments = %v", got)
	}
}
