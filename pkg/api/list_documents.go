package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// DocumentListResponse lists the document identifiers of a collection
type DocumentListResponse struct {
	Collection string   `json:"collection"`
	IDs        []string `json:"ids"`
	Count      int      `json:"count"`
}

// HandleListDocuments handles GET requests listing the document IDs of a
// collection in insertion order
func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	collName := mux.Vars(r)["coll"]

	docIds, err := h.storage.ListIDs(collName)
	if err != nil {
		writeStorageError(w, "List documents", collName, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Collection: collName,
		IDs:        docIds,
		Count:      len(docIds),
	})
}
