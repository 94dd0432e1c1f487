package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// whisperResult is the JSON document the whisper CLI writes next to the
// audio file.
type whisperResult struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID         int           `json:"id"`
	Start      float64       `json:"start"`
	End        float64       `json:"end"`
	Text       string        `json:"text"`
	AvgLogProb *float64      `json:"avg_logprob"`
	Words      []whisperWord `json:"words"`
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperOptions struct {
	model          string
	language       string
	task           string
	wordTimestamps bool
}

// runWhisper transcribes audioPath into outDir and returns the parsed JSON
// result. An empty language leaves detection to the model.
func runWhisper(ctx context.Context, binary, audioPath, outDir string, opts whisperOptions) (whisperResult, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "whisper"
	}

	args := []string{
		audioPath,
		"--model", opts.model,
		"--output_dir", outDir,
		"--output_format", "json",
	}
	if opts.language != "" {
		args = append(args, "--language", opts.language)
	}
	if opts.wordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}
	if opts.task != "" {
		args = append(args, "--task", opts.task)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return whisperResult{}, fmt.Errorf("whisper: %w: %s", err, detail)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	resultPath := filepath.Join(outDir, base+".json")
	payload, err := os.ReadFile(resultPath)
	if err != nil {
		return whisperResult{}, fmt.Errorf("whisper output: %w", err)
	}
	defer os.Remove(resultPath)

	var result whisperResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return whisperResult{}, fmt.Errorf("whisper parse: %w", err)
	}
	return result, nil
}

// confidenceFromSegments converts whisper's per-segment average log
// probabilities into a single percent score: the mean of exp(avg_logprob)
// across segments that report the field, scaled to 0..100. Nil when no
// segment carries one.
func confidenceFromSegments(segments []whisperSegment) *float64 {
	sum := 0.0
	count := 0
	for _, segment := range segments {
		if segment.AvgLogProb == nil {
			continue
		}
		sum += math.Exp(*segment.AvgLogProb)
		count++
	}
	if count == 0 {
		return nil
	}
	confidence := sum / float64(count) * 100
	return &confidence
}
