package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetById handles GET requests to retrieve a specific document by ID
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	log.Printf("INFO: handleGetById called for collection '%s', document '%s'", collName, docId)

	doc, err := h.storage.GetById(collName, docId)
	if err != nil {
		writeStorageError(w, "Get", collName, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
