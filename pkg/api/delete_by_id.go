package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeleteById handles DELETE requests to remove a specific document by ID.
// The removed document is returned.
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	log.Printf("INFO: handleDeleteById called for collection '%s', document '%s'", collName, docId)

	removed, err := h.storage.DeleteById(collName, docId)
	if err != nil {
		writeStorageError(w, "Delete", collName, err)
		return
	}

	log.Printf("INFO: Deleted document '%s' from collection '%s'", docId, collName)
	writeJSON(w, http.StatusOK, removed)
}
