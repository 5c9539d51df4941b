package api

import (
	"net/http"
)

// Version is reported by the info endpoint. Release builds set it with
// -ldflags "-X github.com/adfharrison1/hippodb/pkg/api.Version=...".
var Version = "0.1.0"

// Features lists the optional capabilities this server exposes.
var Features = []string{"filters", "indexes", "pagination", "streaming", "batch"}

// InfoResponse describes the running server
type InfoResponse struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Features []string `json:"features"`
}

// HandleInfo handles GET requests for server information
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Name:     "hippodb",
		Version:  Version,
		Features: Features,
	})
}
