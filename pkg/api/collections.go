package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// CollectionResponse describes the outcome of a collection operation
type CollectionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Collection string `json:"collection"`
}

// HandleListCollections handles GET requests listing every collection
func (h *Handler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	collections := h.storage.ListCollections()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"collections": collections,
		"count":       len(collections),
	})
}

// HandleCreateCollection handles PUT requests creating an empty collection
func (h *Handler) HandleCreateCollection(w http.ResponseWriter, r *http.Request) {
	collName := mux.Vars(r)["coll"]

	log.Printf("INFO: handleCreateCollection called for collection '%s'", collName)

	if err := h.storage.CreateCollection(collName); err != nil {
		writeStorageError(w, "Create collection", collName, err)
		return
	}

	writeJSON(w, http.StatusCreated, CollectionResponse{
		Success:    true,
		Message:    "Collection created successfully",
		Collection: collName,
	})
}

// HandleDropCollection handles DELETE requests removing a collection and its data
func (h *Handler) HandleDropCollection(w http.ResponseWriter, r *http.Request) {
	collName := mux.Vars(r)["coll"]

	log.Printf("INFO: handleDropCollection called for collection '%s'", collName)

	if err := h.storage.DropCollection(collName); err != nil {
		writeStorageError(w, "Drop collection", collName, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
