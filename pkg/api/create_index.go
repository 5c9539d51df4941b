package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// IndexResponse describes the outcome of an index operation
type IndexResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Collection string `json:"collection"`
	Field      string `json:"field"`
}

// HandleCreateIndex creates an index on a specific field in a collection
func (h *Handler) HandleCreateIndex(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	fieldName := vars["field"]

	log.Printf("INFO: handleCreateIndex called for collection '%s', field '%s'", collName, fieldName)

	if err := h.indexer.CreateIndex(collName, fieldName); err != nil {
		writeStorageError(w, "Create index", collName, err)
		return
	}

	writeJSON(w, http.StatusCreated, IndexResponse{
		Success:    true,
		Message:    "Index created successfully",
		Collection: collName,
		Field:      fieldName,
	})
}

// HandleDropIndex removes an index from a collection
func (h *Handler) HandleDropIndex(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	fieldName := vars["field"]

	log.Printf("INFO: handleDropIndex called for collection '%s', field '%s'", collName, fieldName)

	if err := h.indexer.DropIndex(collName, fieldName); err != nil {
		writeStorageError(w, "Drop index", collName, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
