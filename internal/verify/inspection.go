package verify

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ossvet/chainverify/internal/artifact"
	"github.com/ossvet/chainverify/internal/layout"
	"github.com/ossvet/chainverify/internal/link"
	"github.com/ossvet/chainverify/internal/redact"
	"github.com/ossvet/chainverify/internal/verrors"
)

// Runner executes one inspection's command in baseDir and reports the
// artifact state before and after, its exit status, and its captured
// stdout/stderr (scrubbed of anything that looks like a credential before
// it is returned, since both end up in a signed-looking link byproduct and
// the audit log).
type Runner interface {
	Run(baseDir string, command []string) (before, after artifact.Set, exitCode int, stdout, stderr string, err error)
}

// ProcessRunner shells out with os/exec, snapshotting the working
// directory's file digests before and after the command exits.
type ProcessRunner struct{}

// maxCapturedOutput caps how much of an inspection's stdout/stderr is kept
// in the synthesized link, so a noisy command can't bloat link files.
const maxCapturedOutput = 64 * 1024

func (ProcessRunner) Run(baseDir string, command []string) (artifact.Set, artifact.Set, int, string, string, error) {
	if len(command) == 0 {
		return nil, nil, 0, "", "", fmt.Errorf("inspection has no run command")
	}

	before, err := snapshot(baseDir)
	if err != nil {
		return nil, nil, 0, "", "", fmt.Errorf("snapshot before inspection: %w", err)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = baseDir
	cmd.Stdout = io.MultiWriter(os.Stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)

	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return before, nil, 0, "", "", fmt.Errorf("run inspection command: %w", runErr)
		}
	}

	after, err := snapshot(baseDir)
	if err != nil {
		return before, nil, exitCode, "", "", fmt.Errorf("snapshot after inspection: %w", err)
	}

	stdout := redact.Redact(truncateOutput(stdoutBuf.String()))
	stderr := redact.Redact(truncateOutput(stderrBuf.String()))
	return before, after, exitCode, stdout, stderr, nil
}

func truncateOutput(s string) string {
	if len(s) <= maxCapturedOutput {
		return s
	}
	return s[:maxCapturedOutput] + "...(truncated)"
}

func snapshot(dir string) (artifact.Set, error) {
	out := artifact.Set{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		digest, err := sha256File(path)
		if err != nil {
			return err
		}
		out[rel] = artifact.Digest{"sha256": digest}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RunInspections executes every inspection the layout declares, folding
// each into a synthetic Link so the item-rule driver and summary builder
// can treat inspections exactly like steps. baseDir is the directory the
// command runs in; when persistDir is non-empty, the resulting links are
// also written to disk in the standard link filename form under an
// unsigned "local" pseudo-key, mirroring how a step's link would be filed.
func RunInspections(l *layout.Layout, runner Runner, baseDir, persistDir string) (link.Reduced, error) {
	out := make(link.Reduced, len(l.Inspect))

	for _, insp := range l.Inspect {
		before, after, exitCode, stdout, stderr, err := runner.Run(baseDir, insp.Run)
		if err != nil {
			return nil, verrors.Wrap(verrors.IO, insp.Name, err)
		}
		if exitCode != 0 {
			return nil, verrors.Newf(verrors.BadReturn, insp.Name,
				"inspection exited non-zero (code=%d); no subsequent rules evaluated", exitCode)
		}

		lk := &link.Link{
			Name:      insp.Name,
			Command:   insp.Run,
			Materials: before,
			Products:  after,
			Byproducts: map[string]any{
				"return-value": exitCode,
				"stdout":       stdout,
				"stderr":       stderr,
			},
			Kind: "link",
		}
		out[insp.Name] = lk

		if persistDir != "" {
			if err := persistLink(persistDir, lk); err != nil {
				return nil, verrors.Wrap(verrors.IO, insp.Name, err)
			}
		}
	}

	return out, nil
}

func persistLink(dir string, lk *link.Link) error {
	data, err := canonicalBytes(lk)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, link.Filename(lk.Name, "local0000"))
	return os.WriteFile(path, data, 0o644)
}
