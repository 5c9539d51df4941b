package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/gorilla/mux"
)

// BatchInsertRequest represents the request body for batch insert operations
type BatchInsertRequest struct {
	Documents []map[string]interface{} `json:"documents"`
}

// BatchInsertResponse represents the response for batch insert operations
type BatchInsertResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	InsertedCount int      `json:"inserted_count"`
	Collection    string   `json:"collection"`
	IDs           []string `json:"ids"`
}

// HandleBatchInsert handles POST requests to insert multiple documents into collections
func (h *Handler) HandleBatchInsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleBatchInsert called for collection '%s'", collName)

	var req BatchInsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ERROR: Decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate request
	if len(req.Documents) == 0 {
		log.Printf("ERROR: No documents provided for batch insert")
		WriteJSONError(w, http.StatusBadRequest, "No documents provided")
		return
	}

	if len(req.Documents) > h.maxBatch {
		log.Printf("ERROR: Too many documents for batch insert: %d", len(req.Documents))
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d documents allowed per batch", h.maxBatch))
		return
	}

	docs := make([]domain.Document, len(req.Documents))
	for i, doc := range req.Documents {
		docs[i] = domain.Document(doc)
	}

	stored, err := h.storage.BatchInsert(collName, docs)
	if err != nil {
		writeStorageError(w, "Batch insert", collName, err)
		return
	}

	ids := make([]string, len(stored))
	for i, doc := range stored {
		ids[i], _ = doc.ID()
	}

	log.Printf("INFO: Batch inserted %d documents into collection '%s'", len(stored), collName)
	writeJSON(w, http.StatusCreated, BatchInsertResponse{
		Success:       true,
		Message:       fmt.Sprintf("Successfully inserted %d documents", len(stored)),
		InsertedCount: len(stored),
		Collection:    collName,
		IDs:           ids,
	})
}
