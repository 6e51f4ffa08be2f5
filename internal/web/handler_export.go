package web

import (
	"net/http"

	"github.com/vbonduro/courtlog/internal/domain"
	"github.com/vbonduro/courtlog/internal/export"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "issues.csv", "text/csv; charset=utf-8", export.CSV)
}

func (s *Server) handleExportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "issues.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.Spreadsheet)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "issues.pdf", "application/pdf", export.PDF)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, filename, contentType string, render func([]domain.Issue) ([]byte, error)) {
	issues, err := s.service.List(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, "export", err)
		return
	}

	data, err := render(issues)
	if err != nil {
		writeServiceError(w, s.logger, "export", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write export", "filename", filename, "error", err)
	}
}
