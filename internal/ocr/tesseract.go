package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runTesseract invokes tesseract in hOCR mode and returns the generated
// hOCR payload. tesseract appends the .hocr extension to outBase itself.
func runTesseract(ctx context.Context, binary, imagePath, outBase, language string) ([]byte, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}

	cmd := exec.CommandContext(ctx, binary, imagePath, outBase, "-l", language, "hocr")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(output)))
	}

	hocrPath := outBase + ".hocr"
	payload, err := os.ReadFile(hocrPath)
	if err != nil {
		return nil, fmt.Errorf("tesseract output: %w", err)
	}
	if err := os.Remove(hocrPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return payload, nil
	}
	return payload, nil
}
