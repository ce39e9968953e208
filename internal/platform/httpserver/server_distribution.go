package httpserver

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	distributionerrors "agentdesk/contexts/list-distribution/distribution-service/domain/errors"
)

func (s *Server) handleUploadList(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeDomainError(w, distributionerrors.ErrFileTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			writeDomainError(w, distributionerrors.ErrFileRequired)
		default:
			writeError(w, http.StatusBadRequest, "invalid_multipart", "request must be multipart/form-data with a file field")
		}
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart", "uploaded file could not be read")
		return
	}
	size := header.Size
	if int64(len(data)) > size {
		size = int64(len(data))
	}

	resp, err := s.distribution.Handler.UploadListHandler(
		r.Context(),
		distributionPrincipal(r),
		header.Filename,
		size,
		data,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, ok := optionalInt(query.Get("page"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_pagination", "page must be an integer")
		return
	}
	limit, ok := optionalInt(query.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_pagination", "limit must be an integer")
		return
	}

	resp, err := s.distribution.Handler.ListBatchesHandler(r.Context(), distributionPrincipal(r), page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.distribution.Handler.GetBatchHandler(r.Context(), distributionPrincipal(r), r.PathValue("batch_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.distribution.Handler.ExportBatchHandler(r.Context(), distributionPrincipal(r), r.PathValue("batch_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resp.FileName}))
	w.Header().Set("X-Row-Count", strconv.Itoa(resp.RowCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Content)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.distribution.Handler.DashboardSummaryHandler(r.Context(), distributionPrincipal(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// optionalInt treats an absent parameter as zero so the use case applies its default.
func optionalInt(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
