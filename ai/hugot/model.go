package hugot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	knights "github.com/knights-analytics/hugot"
)

const (
	defaultModelName = "sentence-transformers/all-MiniLM-L6-v2"
	defaultModelDir  = "./models"
)

// prepareModel downloads the model if it is not on disk yet and returns
// the local model path.
func prepareModel(modelName, modelDir string) (string, error) {
	if modelName == "" {
		modelName = defaultModelName
	}
	if modelDir == "" {
		modelDir = defaultModelDir
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	}

	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}
	downloadOptions := knights.NewDownloadOptions()
	downloadOptions.OnnxFilePath = "onnx/model.onnx"
	downloadedPath, err := knights.DownloadModel(modelName, modelDir, downloadOptions)
	if err != nil {
		return "", fmt.Errorf("failed to download model %q: %w", modelName, err)
	}
	return downloadedPath, nil
}
