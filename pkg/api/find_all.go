package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleFindAll handles GET requests to find documents with equality filters
// taken from the query string, with pagination.
func (h *Handler) HandleFindAll(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleFindAll called for collection '%s'", collName)

	queryParams := r.URL.Query()
	filter, err := parseQueryFilter(queryParams)
	if err != nil {
		writeStorageError(w, "Find", collName, err)
		return
	}
	options, err := parsePagination(queryParams)
	if err != nil {
		writeStorageError(w, "Find", collName, err)
		return
	}

	result, err := h.storage.FindAll(collName, filter, options)
	if err != nil {
		writeStorageError(w, "Find", collName, err)
		return
	}

	log.Printf("INFO: Found %d of %d documents in collection '%s' with %s",
		len(result.Documents), result.Total, collName, filterDescription(filter))
	writeJSON(w, http.StatusOK, result)
}
