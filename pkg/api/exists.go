package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleExists handles GET requests reporting whether a document exists
func (h *Handler) HandleExists(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	found, err := h.storage.Exists(collName, docId)
	if err != nil {
		writeStorageError(w, "Exists", collName, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     docId,
		"exists": found,
	})
}
