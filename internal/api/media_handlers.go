package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ryhaapp/ryha-server/internal/http/response"
)

// handleMedia serves a generated image. File names are random, so the
// content never changes and can be cached for long.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.media == nil || !s.media.Exists(name) {
		response.NotFound(w, "image not found", s.logger)
		return
	}

	path, err := s.media.Path(name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Cache-Control", CacheOneWeek)
	http.ServeFile(w, r, path)
}
