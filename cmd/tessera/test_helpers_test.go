package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tessera/internal/config"
	"tessera/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// probeStub reports a two minute stereo video for any input.
const probeStub = `#!/bin/sh
cat <<'EOF'
{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 640, "height": 360},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2}
  ],
  "format": {"format_name": "mov,mp4", "duration": "120.0", "size": "400000", "bit_rate": "900000"}
}
EOF
`

// encodeStub creates whatever output file ffmpeg was asked for.
const encodeStub = `#!/bin/sh
for arg in "$@"; do out=$arg; done
printf 'x' > "$out"
`

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries("mediainfo", "exiftool", "tesseract", "whisper"),
		testsupport.WithStubScript("ffprobe", probeStub),
		testsupport.WithStubScript("ffmpeg", encodeStub),
	)
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
uploads_dir = %q
derivatives_dir = %q
transcripts_dir = %q
snippets_dir = %q
log_dir = %q
work_dir = %q
database_path = %q

[logging]
format = "json"
`,
		cfg.Paths.UploadsDir,
		cfg.Paths.DerivativesDir,
		cfg.Paths.TranscriptsDir,
		cfg.Paths.SnippetsDir,
		cfg.Paths.LogDir,
		cfg.Paths.WorkDir,
		cfg.Paths.DatabasePath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeUpload(t *testing.T, env *cliTestEnv, name string) string {
	t.Helper()
	return testsupport.WriteUpload(t, env.cfg.Paths.UploadsDir, name)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
