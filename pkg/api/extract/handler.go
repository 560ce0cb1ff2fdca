package extract

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"fcff_engine/pkg/core/agent"
	"fcff_engine/pkg/core/aiextract"
	"fcff_engine/pkg/core/pipeline"
)

var orchestrator *pipeline.Orchestrator

// InitHandler wires the shared orchestrator. When a manager is given, AI
// merge becomes available on text uploads.
func InitHandler(mgr *agent.Manager) {
	orchestrator = pipeline.NewOrchestrator()
	if mgr != nil {
		orchestrator.EnableAI(aiextract.NewExtractor(mgr))
	}
}

// ExtractRequest is the JSON upload body. Content is base64 for binary
// formats; Text may carry the document as plain text instead.
type ExtractRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"fileType"`
	Content  string `json:"content,omitempty"`
	Text     string `json:"text,omitempty"`
	UseAI    bool   `json:"useAI,omitempty"`
}

// HandleExtract accepts one document and returns the pipeline result:
// reconciled metrics per period, derived ratios, warnings.
func HandleExtract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 32<<20)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var data []byte
	switch {
	case req.Content != "":
		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			http.Error(w, "content is not valid base64", http.StatusBadRequest)
			return
		}
		data = decoded
	case req.Text != "":
		data = []byte(req.Text)
	default:
		http.Error(w, "content or text required", http.StatusBadRequest)
		return
	}

	fmt.Printf("[EXTRACT] %s (%s): %d bytes\n", req.Filename, req.FileType, len(data))
	result, err := orchestrator.Process(req.Filename, data, req.FileType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if req.UseAI && req.Text != "" {
		if err := orchestrator.MergeAI(r.Context(), req.Text, result); err != nil {
			fmt.Printf("[EXTRACT] AI merge skipped: %v\n", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("ai merge skipped: %v", err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
