// src/handlers/dataset_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/santyago-pixel/portfolio-analyzer/src/config"
	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
	"github.com/santyago-pixel/portfolio-analyzer/src/security/validation"
	"github.com/santyago-pixel/portfolio-analyzer/src/services"
	"github.com/santyago-pixel/portfolio-analyzer/src/utils"
)

type DatasetHandler struct {
	datasetService services.DatasetService
}

func NewDatasetHandler(service services.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: service}
}

// HandleUpload ingests one dataset from a multipart form with a "name" field
// and two CSV files, "transactions" and "prices".
func (h *DatasetHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse upload or file too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	name := validation.SanitizeText(strings.TrimSpace(r.FormValue("name")))
	if err := validation.ValidateStringNotEmpty(name, "Dataset name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(name, validation.MaxDatasetNameLength, "Dataset name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactionsFile, err := h.openValidatedFile(r, "transactions", userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer transactionsFile.Close()

	pricesFile, err := h.openValidatedFile(r, "prices", userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer pricesFile.Close()

	dataset, err := h.datasetService.CreateDataset(userID, name, transactionsFile, pricesFile)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Dataset creation failed", "error", err)
		switch {
		case errors.Is(err, services.ErrParsingFailed), errors.Is(err, services.ErrProcessingFailed), errors.Is(err, services.ErrEmptyDataset):
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			utils.SendJSONError(w, "Failed to store dataset", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dataset)
}

// openValidatedFile fetches one multipart file and runs the size,
// content-type and magic-byte checks on it.
func (h *DatasetHandler) openValidatedFile(r *http.Request, field string, userID int64) (multipart.File, error) {
	file, fileHeader, err := r.FormFile(field)
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "field", field, "error", err)
		return nil, fmt.Errorf("failed to retrieve '%s' file from request", field)
	}

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		file.Close()
		logger.L.Warn("Uploaded file too large", "userID", userID, "field", field, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		return nil, fmt.Errorf("'%s' file too large, max %d MB", field, config.Cfg.MaxUploadSizeBytes/(1024*1024))
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		file.Close()
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "field", field, "contentType", clientContentType, "error", err)
		return nil, err
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		file.Close()
		logger.L.Warn("Server-side file content validation failed", "userID", userID, "field", field, "filename", fileHeader.Filename, "error", err)
		return nil, err
	}
	logger.L.Debug("File content validated", "userID", userID, "field", field, "filename", fileHeader.Filename, "detectedType", detectedContentType)

	return file, nil
}

// HandleCreateSample materializes the built-in deterministic demo dataset
// for the authenticated user.
func (h *DatasetHandler) HandleCreateSample(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	// body is optional
	_ = json.NewDecoder(r.Body).Decode(&body)
	name := validation.SanitizeText(strings.TrimSpace(body.Name))

	dataset, err := h.datasetService.CreateSampleDataset(userID, name)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Sample dataset creation failed", "error", err)
		utils.SendJSONError(w, "Failed to create sample dataset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dataset)
}

func (h *DatasetHandler) HandleListDatasets(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	datasets, err := h.datasetService.ListDatasets(userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list datasets", "error", err)
		utils.SendJSONError(w, "Failed to list datasets", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(datasets)
}

func (h *DatasetHandler) HandleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	datasetID, err := datasetIDFromURL(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.datasetService.DeleteDataset(userID, datasetID); err != nil {
		if errors.Is(err, services.ErrDatasetNotFound) {
			utils.SendJSONError(w, "Dataset not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to delete dataset", "datasetID", datasetID, "error", err)
		utils.SendJSONError(w, "Failed to delete dataset", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func datasetIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dataset id '%s'", raw)
	}
	return id, nil
}
