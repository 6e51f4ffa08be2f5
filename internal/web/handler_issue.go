package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/vbonduro/courtlog/internal/domain"
	"github.com/vbonduro/courtlog/internal/service"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos,
// all detectable via net/http.DetectContentType magic-byte sniffing.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// issueResponse is the wire representation of a domain.Issue.
type issueResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Court     string  `json:"court"`
	Problem   string  `json:"problem"`
	PhotoPath *string `json:"photo_path"`
	Reporter  string  `json:"reporter"`
}

func toResponse(issue domain.Issue) issueResponse {
	return issueResponse{
		ID:        issue.ID,
		Date:      issue.ReportedAt.Format(domain.TimeLayout),
		Court:     issue.Court,
		Problem:   issue.Problem,
		PhotoPath: issue.PhotoKey,
		Reporter:  issue.Reporter,
	}
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.service.List(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, "list issues", err)
		return
	}

	out := make([]issueResponse, 0, len(issues))
	for _, issue := range issues {
		out = append(out, toResponse(issue))
	}
	writeJSON(w, http.StatusOK, out)
}

// issueForm holds the validated fields of a create/update request.
type issueForm struct {
	court    string
	problem  string
	reporter string
	photo    *service.PhotoUpload
}

// parseIssueForm reads the multipart form shared by create and update. The
// court enumeration is checked here: this is the input boundary the closed
// set is enforced at.
func (s *Server) parseIssueForm(r *http.Request) (*issueForm, error) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	form := &issueForm{
		court:    strings.TrimSpace(r.FormValue("court")),
		problem:  strings.TrimSpace(r.FormValue("problem")),
		reporter: strings.TrimSpace(r.FormValue("reporter")),
	}

	if form.court != "" && !domain.ValidCourt(form.court) {
		return nil, fmt.Errorf("unknown court %q", form.court)
	}

	file, header, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Error("failed to close upload", "error", cerr)
		}
	}()

	photo, err := readPhoto(file, header)
	if err != nil {
		return nil, err
	}
	form.photo = photo
	return form, nil
}

func readPhoto(file multipart.File, header *multipart.FileHeader) (*service.PhotoUpload, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if mime := http.DetectContentType(data); !allowedImageTypes[mime] {
		return nil, fmt.Errorf("unsupported image format %s", mime)
	}
	return &service.PhotoUpload{Filename: header.Filename, Data: data}, nil
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseIssueForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := s.service.Create(r.Context(), form.court, form.problem, form.reporter, form.photo)
	if err != nil {
		writeServiceError(w, s.logger, "create issue", err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(issue))
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseIssueForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := s.service.Update(r.Context(), r.PathValue("id"), form.court, form.problem, form.reporter, form.photo)
	if err != nil {
		writeServiceError(w, s.logger, "update issue", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(issue))
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, s.logger, "delete issue", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCourts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Courts)
}
