package server

import (
	"encoding/json"
	"net/http"

	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/livestatus"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	cfg  *config.Config
	live *livestatus.Command
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{cfg: deps.Config, live: deps.Live}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
