package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/docqa/internal/session"
)

// maxUploadMemory is the multipart memory limit; larger files spill to disk.
const maxUploadMemory = 32 << 20

// UI states reported to the browser.
const (
	stateReady       = "ready"
	stateNoDocuments = "no_documents"
	stateProcessErr  = "process_error"
	stateAskErr      = "ask_error"
)

// processResponse is the JSON response for the process endpoint.
type processResponse struct {
	SessionID string   `json:"session_id"`
	State     string   `json:"state"`
	Files     []string `json:"files,omitempty"`
	Documents int      `json:"documents,omitempty"`
	Segments  int      `json:"segments,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// statusResponse is the JSON response for the status endpoint.
type statusResponse struct {
	SessionID string   `json:"session_id"`
	State     string   `json:"state"`
	Files     []string `json:"files"`
	Segments  int      `json:"segments"`
	Model     string   `json:"model,omitempty"`
}

func (d *Dashboard) handleProcess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, processResponse{State: stateProcessErr, Error: "invalid upload: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, processResponse{
			SessionID: sessionID,
			State:     stateProcessErr,
			Error:     "no files uploaded",
		})
		return
	}

	batchDir := filepath.Join(d.uploadRoot, "docqa-"+uuid.NewString())
	paths, names, err := saveUploads(batchDir, headers)
	if err != nil {
		os.RemoveAll(batchDir)
		d.logger.Error("saving uploads", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, processResponse{
			SessionID: sessionID,
			State:     stateProcessErr,
			Error:     err.Error(),
		})
		return
	}

	c := d.clientFor(sessionID)
	summary, err := c.sess.Process(r.Context(), paths)
	if err != nil {
		os.RemoveAll(batchDir)
		d.logger.Warn("processing upload batch failed",
			zap.String("session_id", sessionID),
			zap.Strings("files", names),
			zap.Error(err),
		)
		var pe *session.ProcessError
		status := http.StatusInternalServerError
		if errors.As(err, &pe) && pe.Stage == "load" {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, processResponse{
			SessionID: sessionID,
			State:     stateProcessErr,
			Error:     err.Error(),
		})
		return
	}

	if prev := d.setBatch(c, batchDir); prev != "" {
		if err := os.RemoveAll(prev); err != nil {
			d.logger.Warn("removing previous batch", zap.String("dir", prev), zap.Error(err))
		}
	}

	d.logger.Info("processed upload batch",
		zap.String("session_id", sessionID),
		zap.Int("files", len(names)),
		zap.Int("segments", summary.Segments),
		zap.Duration("took", summary.Duration),
	)
	writeJSON(w, http.StatusOK, processResponse{
		SessionID: sessionID,
		State:     stateReady,
		Files:     names,
		Documents: summary.Documents,
		Segments:  summary.Segments,
	})
}

func (d *Dashboard) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	resp := statusResponse{SessionID: sessionID, State: stateNoDocuments, Files: []string{}}

	if c := d.lookup(sessionID); c != nil {
		if summary, ok := c.sess.Summary(); ok {
			resp.State = stateReady
			resp.Files = baseNames(summary.Files)
			resp.Segments = summary.Segments
			resp.Model = summary.Model
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// saveUploads copies each uploaded file into dir and returns the stored paths
// and the display names in upload order.
func saveUploads(dir string, headers []*multipart.FileHeader) (paths, names []string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating batch directory: %w", err)
	}

	seen := make(map[string]int)
	for _, fh := range headers {
		name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(fh.Filename, "\\", "/")))
		if name == "/" || name == "." {
			return nil, nil, fmt.Errorf("invalid file name %q", fh.Filename)
		}

		stored := name
		if n := seen[name]; n > 0 {
			stored = fmt.Sprintf("%d-%s", n, name)
		}
		seen[name]++

		path := filepath.Join(dir, stored)
		if err := copyUpload(fh, path); err != nil {
			return nil, nil, fmt.Errorf("storing %s: %w", name, err)
		}
		paths = append(paths, path)
		names = append(names, name)
	}
	return paths, names, nil
}

func copyUpload(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
