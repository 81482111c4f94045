package http

import (
	"errors"
	"fmt"
	"net/http"

	"bankdash/internal/core"
	"bankdash/internal/log"
	"bankdash/internal/upload"

	"github.com/google/uuid"
)

// Error codes of the upload endpoint besides core.CodeInvalidFormat.
const (
	CodeMissingFile  = "MISSING_FILE"
	CodeTooLarge     = "FILE_TOO_LARGE"
	CodeUploadFailed = "UPLOAD_FAILED"
)

type uploadResponse struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// handleUpload accepts a statement in the multipart field "file". Only the
// file name is validated. An accepted upload reloads the dashboard; a failed
// reload does not fail the upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentUpload)

	limit := s.opts.UploadMaxBytes
	if r.ContentLength > limit+multipartOverhead {
		s.uploadRejected(w, r, http.StatusRequestEntityTooLarge, fileTooLarge(limit), CodeTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	// Parts above the memory threshold are spooled to temp files.
	if err := r.ParseMultipartForm(s.opts.MultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.uploadRejected(w, r, http.StatusRequestEntityTooLarge, fileTooLarge(limit), CodeTooLarge)
			return
		}
		logger.WarnContext(ctx, "Upload without multipart body", log.FieldError, err)
		s.uploadRejected(w, r, http.StatusBadRequest, "No file provided", CodeMissingFile)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.WarnContext(ctx, "Failed to remove multipart temp files", log.FieldError, err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "Upload without file", log.FieldError, err)
		s.uploadRejected(w, r, http.StatusBadRequest, "No file provided", CodeMissingFile)
		return
	}
	_ = file.Close()

	if header.Size > limit {
		s.uploadRejected(w, r, http.StatusRequestEntityTooLarge, fileTooLarge(limit), CodeTooLarge)
		return
	}

	receipt, err := s.uploads.Upload(ctx, upload.Statement{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		var invalid *core.InvalidFormatError
		if errors.As(err, &invalid) {
			s.uploadRejected(w, r, http.StatusBadRequest, invalid.Error(), invalid.Code())
			return
		}
		logRequestError(ctx, "Statement upload failed", err, log.ComponentUpload, log.OpUpload)
		s.uploadRejected(w, r, http.StatusInternalServerError, "Failed to upload file", CodeUploadFailed)
		return
	}
	s.metrics.uploadsAccepted.Add(1)

	version := s.loader.Store().Version()
	if snap, err := s.refresh(ctx); err == nil {
		version = snap.Version
	}

	if isHTMX(r) {
		SuccessResponse(receipt.Message).
			TriggerStatementUploaded(receipt.ID.String(), receipt.Filename).
			TriggerDashboardRefresh(version).
			TriggerSuccessNotification(receipt.Message).
			Write(w)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{ID: receipt.ID, Message: receipt.Message})
}

// multipartOverhead allows for the multipart envelope around the file.
const multipartOverhead = 64 << 10

func fileTooLarge(limit int64) string {
	if limit >= 1<<20 {
		return fmt.Sprintf("File is too large. The limit is %d MB.", limit>>20)
	}
	return fmt.Sprintf("File is too large. The limit is %d bytes.", limit)
}

func (s *Server) uploadRejected(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	s.metrics.uploadsRejected.Add(1)
	if isHTMX(r) {
		ErrorResponse(status, message).TriggerErrorNotification(message).Write(w)
		return
	}
	writeJSONError(w, status, message, code)
}
