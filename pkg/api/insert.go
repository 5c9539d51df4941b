package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/gorilla/mux"
)

// HandleInsert handles POST requests to insert documents into collections
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleInsert called for collection '%s'", collName)

	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		log.Printf("ERROR: Decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stored, err := h.storage.Insert(collName, domain.Document(doc))
	if err != nil {
		writeStorageError(w, "Insert", collName, err)
		return
	}

	log.Printf("INFO: Insert successful for collection '%s'", collName)
	writeJSON(w, http.StatusCreated, stored)
}
