package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/vbonduro/courtlog/internal/domain"
)

const (
	thumbnailMaxWidth  = 100
	thumbnailMaxHeight = 100
)

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	issue, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, s.logger, "get photo", err)
		return
	}
	if issue.PhotoKey == nil {
		writeError(w, http.StatusNotFound, "issue has no photo")
		return
	}

	reader, mimeType, err := s.photos.Retrieve(r.Context(), *issue.PhotoKey)
	if err != nil {
		// A dangling reference reads as "no photo", not a server fault
		s.logger.Warn("photo missing from store", "id", issue.ID, "key", *issue.PhotoKey, "error", err)
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			s.logger.Error("failed to close photo reader", "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("failed to stream photo", "id", issue.ID, "error", err)
	}
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	issue, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, s.logger, "get thumbnail", err)
		return
	}
	if issue.PhotoKey == nil {
		writeJSON(w, http.StatusOK, map[string]any{"thumbnail": nil})
		return
	}

	encoded, err := s.photos.Thumbnail(r.Context(), *issue.PhotoKey, thumbnailMaxWidth, thumbnailMaxHeight)
	if errors.Is(err, domain.ErrStorageRead) {
		// Missing or undecodable photo degrades to "no thumbnail"
		s.logger.Warn("thumbnail unavailable", "id", issue.ID, "key", *issue.PhotoKey, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"thumbnail": nil})
		return
	}
	if err != nil {
		writeServiceError(w, s.logger, "get thumbnail", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"thumbnail": encoded})
}
