package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/gorilla/mux"
)

// contextStreamer is implemented by engines whose streams stop when the
// client goes away.
type contextStreamer interface {
	FindAllStreamContext(ctx context.Context, collName string, filter domain.Filter) (<-chan domain.Document, error)
}

// HandleFindAllWithStream handles GET requests to stream documents from collections
// NOTE: This endpoint does NOT apply pagination - it streams ALL matching documents.
// Use /collections/{coll}/find for paginated queries, or handle pagination at the client level.
func (h *Handler) HandleFindAllWithStream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleFindAllWithStream called for collection '%s'", collName)

	queryParams := r.URL.Query()
	for key := range queryParams {
		if paginationParams[key] {
			log.Printf("WARN: Pagination parameter '%s' ignored in streaming endpoint", key)
		}
	}
	filter, err := parseQueryFilter(queryParams)
	if err != nil {
		writeStorageError(w, "Stream", collName, err)
		return
	}

	// Stream all matching documents (no pagination)
	var docChan <-chan domain.Document
	if streamer, ok := h.storage.(contextStreamer); ok {
		docChan, err = streamer.FindAllStreamContext(r.Context(), collName, filter)
	} else {
		docChan, err = h.storage.FindAllStream(collName, filter)
	}
	if err != nil {
		writeStorageError(w, "Stream", collName, err)
		return
	}

	// Set headers for streaming
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	// Start JSON array
	w.Write([]byte("[\n"))

	first := true
	docCount := 0

	// Stream documents one by one
	for doc := range docChan {
		// Marshal document to JSON
		docJSON, err := json.Marshal(doc)
		if err != nil {
			log.Printf("ERROR: Failed to marshal document: %v", err)
			continue // Skip this document and continue streaming
		}

		if !first {
			w.Write([]byte(",\n"))
		}
		first = false

		// Write document to response
		if _, err := w.Write(docJSON); err != nil {
			log.Printf("ERROR: Failed to write to response: %v", err)
			return
		}

		// Flush the response to ensure streaming
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		docCount++
	}

	// End JSON array
	w.Write([]byte("\n]"))

	log.Printf("INFO: Streamed %d documents from collection '%s' (no pagination applied)", docCount, collName)
}
