package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// BlobServer is the file-backed remote blob store: one JSON document per
// conversation identity, stored as <id>.json under the data directory.
type BlobServer struct {
	router  *chi.Mux
	dataDir string
	baseURL string
	port    int
}

// NewBlobServer creates a server storing documents under dataDir
func NewBlobServer(dataDir, baseURL string, port int) *BlobServer {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &BlobServer{
		router:  router,
		dataDir: dataDir,
		baseURL: baseURL,
		port:    port,
	}

	router.Put("/share", s.handleShare)
	router.Post("/share", s.handleShare)
	router.Get("/shared/{id}.json", s.handleShared)

	return s
}

// Handler exposes the router for tests and embedding
func (s *BlobServer) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port until the process exits
func (s *BlobServer) Start() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	addr := fmt.Sprintf(":%d", s.port)
	LogInfo("blob server listening on %s, storing in %s", addr, s.dataDir)
	return http.ListenAndServe(addr, s.router)
}

func (s *BlobServer) documentPath(id string) string {
	return filepath.Join(s.dataDir, id+".json")
}

func (s *BlobServer) handleShare(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if !ValidIdentity(id) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "malformed conversation id",
		})
		return
	}

	var data ShareData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "unparsable body",
		})
		return
	}

	doc := ShareDocument{
		ConversationID: id,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Data:           data,
	}

	path := s.documentPath(id)
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	if err := s.writeDocument(path, doc); err != nil {
		LogError("failed to store document %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "failed to store document",
		})
		return
	}

	writeJSON(w, http.StatusOK, PutResponse{
		Success:        true,
		ConversationID: id,
		ShareURL:       fmt.Sprintf("%s/shared/%s.json", s.baseURL, id),
		Timestamp:      doc.Timestamp,
		IsNew:          isNew,
	})
}

// writeDocument writes atomically: a uniquely named temp file in the
// same directory, then rename, so readers never see a torn document.
func (s *BlobServer) writeDocument(path string, doc ShareDocument) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	tmp := filepath.Join(s.dataDir, "tmp-"+uuid.NewString()+".json")
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("failed to write temp document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	return nil
}

func (s *BlobServer) handleShared(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !ValidIdentity(id) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "malformed conversation id",
		})
		return
	}

	payload, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"error": "not found",
			})
			return
		}
		LogError("failed to read document %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to read document",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LogError("failed to encode response: %v", err)
	}
}
