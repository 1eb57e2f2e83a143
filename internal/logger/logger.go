// Package logger provides the structured, rotating audit trail a
// verification run emits: one JSON line per phase transition, rule
// outcome, or threshold/command mismatch.
package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// defaultMaxLogBytes is the file size at which the log is rotated (10 MB).
const defaultMaxLogBytes = 10 * 1024 * 1024

// Logger writes newline-delimited JSON audit events to a rotating file.
type Logger struct {
	path string
	file *os.File
	log  *logrus.Logger
	mu   sync.Mutex
}

// New opens (or creates) the audit log at path.
func New(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(file)

	return &Logger{path: path, file: file, log: log}, nil
}

// rotateIfNeeded rotates the log file once it reaches defaultMaxLogBytes,
// renaming the current file to <path>.1 (dropping any existing one) and
// reopening a fresh file. Must be called with l.mu held.
func (l *Logger) rotateIfNeeded() error {
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < defaultMaxLogBytes {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log before rotation: %w", err)
	}

	rotated := l.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open fresh log after rotation: %w", err)
	}
	l.file = f
	l.log.SetOutput(f)
	return nil
}

func (l *Logger) entry() *logrus.Entry {
	l.mu.Lock()
	if err := l.rotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "[chainverify] warning: log rotation failed: %v\n", err)
	}
	l.mu.Unlock()
	return logrus.NewEntry(l.log)
}

// PhaseStarted records an orchestrator phase beginning.
func (l *Logger) PhaseStarted(phase string) {
	l.entry().WithField("phase", phase).Info("verification phase started")
}

// StepVerified records a step whose rules and signatures all passed.
func (l *Logger) StepVerified(step string) {
	l.entry().WithField("step", step).Info("step verified")
}

// RuleFailed records an artifact rule that rejected a step or inspection.
func (l *Logger) RuleFailed(subject string, err error) {
	l.entry().WithField("subject", subject).WithError(err).Warn("rule verification failed")
}

// ThresholdMismatch records a step whose functionaries didn't reach
// agreement on the required threshold.
func (l *Logger) ThresholdMismatch(step string, agree, required, total int) {
	l.entry().WithFields(logrus.Fields{
		"step":     step,
		"agree":    agree,
		"required": required,
		"total":    total,
	}).Warn("functionary threshold not met")
}

// CommandMismatch records a step whose executed command differs from its
// declared expected_command.
func (l *Logger) CommandMismatch(step string, expected, actual []string) {
	l.entry().WithFields(logrus.Fields{
		"step":     step,
		"expected": expected,
		"actual":   actual,
	}).Warn("executed command does not match expected_command")
}

// SublayoutEntered records recursion into a nested layout.
func (l *Logger) SublayoutEntered(step string, depth int) {
	l.entry().WithFields(logrus.Fields{"step": step, "depth": depth}).Info("recursing into sublayout")
}

// CommandEgress records the network hosts a step's or inspection's
// recorded command appears to reach out to, so a reviewer scanning the
// audit trail can spot unexpected exfiltration or dependency-fetch
// destinations without re-deriving them from the raw command line.
func (l *Logger) CommandEgress(subject string, domains []string) {
	if len(domains) == 0 {
		return
	}
	l.entry().WithFields(logrus.Fields{"subject": subject, "domains": domains}).Info("command references network hosts")
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
