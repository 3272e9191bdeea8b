package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"salon-offers/repository"
	"salon-offers/service"
)

const (
	uploadField          = "file"
	multipartMemoryLimit = 8 << 20

	msgNoFilePart    = "No file part"
	msgNoSelected    = "No selected file"
	msgInvalidFormat = "Invalid file format. Please upload a CSV file."
)

type OfferHandler struct {
	service        *service.OfferService
	aiEnabled      bool
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewOfferHandler(service *service.OfferService, aiEnabled bool, maxUploadBytes int64, logger *zap.Logger) *OfferHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferHandler{
		service:        service,
		aiEnabled:      aiEnabled,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Index serves the upload form.
func (h *OfferHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, pageData{AIEnabled: h.aiEnabled}, h.logger)
}

// GenerateOffers accepts a multipart CSV upload in field "file" and answers with
// one offer per row, as JSON or as the rendered page.
func (h *OfferHandler) GenerateOffers(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. The limit is %d bytes.", h.maxUploadBytes))
			return
		}
		h.logger.Debug("Upload is not a multipart form", zap.Error(err))
		writeError(w, r, http.StatusBadRequest, msgNoFilePart)
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		// Browsers send an empty file input as a plain value.
		if _, present := r.MultipartForm.Value[uploadField]; present {
			writeError(w, r, http.StatusBadRequest, msgNoSelected)
			return
		}
		writeError(w, r, http.StatusBadRequest, msgNoFilePart)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, r, http.StatusBadRequest, msgNoSelected)
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		h.logger.Info("Rejected upload", zap.String("filename", header.Filename))
		writeError(w, r, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	results, err := h.service.GenerateOffersFromCSV(r.Context(), file)
	if err != nil {
		msg := fmt.Sprintf("Error processing file: %v", err)
		h.logger.Warn("Rejected CSV", zap.String("filename", header.Filename), zap.Error(err))

		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrInvalidCSV) || errors.Is(err, repository.ErrMissingColumn) {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, msg)
		return
	}

	h.logger.Info("Generated offers",
		zap.String("filename", header.Filename),
		zap.Int("offers", len(results)))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, results, h.logger)
		return
	}
	renderPage(w, http.StatusOK, pageData{Results: results, AIEnabled: h.aiEnabled}, h.logger)
}
