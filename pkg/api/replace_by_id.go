package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/gorilla/mux"
)

// HandleReplaceById handles PUT requests to completely replace a document by ID
func (h *Handler) HandleReplaceById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	log.Printf("INFO: handleReplaceById called for collection '%s', document '%s'", collName, docId)

	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		log.Printf("ERROR: Decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stored, err := h.storage.ReplaceById(collName, docId, domain.Document(doc))
	if err != nil {
		writeStorageError(w, "Replace", collName, err)
		return
	}

	log.Printf("INFO: Replaced document '%s' in collection '%s'", docId, collName)
	writeJSON(w, http.StatusOK, stored)
}
