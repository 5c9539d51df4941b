package api

import (
	"io"
	"log"
	"net/http"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
	"github.com/gorilla/mux"
)

// HandleFindWithFilter handles POST requests carrying a JSON filter tree in
// the body. Pagination is read from the query string. An empty body
// matches every document.
func (h *Handler) HandleFindWithFilter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	log.Printf("INFO: handleFindWithFilter called for collection '%s'", collName)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("ERROR: Reading body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var filter domain.Filter
	if len(body) > 0 {
		parsed, err := query.ParseJSON(body)
		if err != nil {
			writeStorageError(w, "Query", collName, err)
			return
		}
		filter = parsed
	}

	options, err := parsePagination(r.URL.Query())
	if err != nil {
		writeStorageError(w, "Query", collName, err)
		return
	}

	result, err := h.storage.FindAll(collName, filter, options)
	if err != nil {
		writeStorageError(w, "Query", collName, err)
		return
	}

	log.Printf("INFO: Query matched %d documents in collection '%s'", result.Total, collName)
	writeJSON(w, http.StatusOK, result)
}
