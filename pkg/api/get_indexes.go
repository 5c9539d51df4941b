package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetIndexes handles GET requests to retrieve all indexes for a collection
func (h *Handler) HandleGetIndexes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleGetIndexes called for collection '%s'", collName)

	// Get all indexes for the collection
	indexes, err := h.indexer.GetIndexes(collName)
	if err != nil {
		writeStorageError(w, "Get indexes", collName, err)
		return
	}

	// Prepare response
	response := map[string]interface{}{
		"success":     true,
		"collection":  collName,
		"indexes":     indexes,
		"index_count": len(indexes),
	}
	writeJSON(w, http.StatusOK, response)
	log.Printf("INFO: Retrieved %d indexes for collection '%s'", len(indexes), collName)
}
