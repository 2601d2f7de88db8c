package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// classesHandler lists the configured document types and sides.
func (s *Server) classesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, ClassesResponse{
		DocumentTypes: s.types,
		DocumentSides: s.sides,
	})
}

// classifyHandler accepts a multipart upload ("file") and returns the
// full analysis.
func (s *Server) classifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	start := time.Now()
	result, err := s.pipeline.ClassifyBytes(r.Context(), data, header.Filename)
	classifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		classifyRequestsTotal.WithLabelValues("error").Inc()
		s.writeError(w, fmt.Sprintf("Classification failed: %v", err), http.StatusUnprocessableEntity)
		return
	}
	classifyRequestsTotal.WithLabelValues("ok").Inc()
	documentsDetected.Observe(float64(result.IdentifiedDocuments()))

	s.writeJSON(w, http.StatusOK, ClassifyResponse{Success: true, Result: result})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ClassifyResponse{Success: false, Error: message})
}
