// Package apple implements the collaborator contracts against the macOS
// Calendar, Notes, and Reminders apps through osascript (JavaScript for
// Automation). Scripts print JSON on stdout; automation failures surface as
// plain errors to the caller.
package apple

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/search"
)

// Runner executes one automation script and returns its stdout.
type Runner interface {
	Run(ctx context.Context, script string) (string, error)
}

type osascriptRunner struct{}

func (osascriptRunner) Run(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-l", "JavaScript", "-e", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				msg = strings.TrimSpace(string(exitErr.Stderr))
			}
		}
		if msg != "" {
			return "", fmt.Errorf("osascript: %s", msg)
		}
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// NewRunner returns the default osascript runner.
func NewRunner() Runner {
	return osascriptRunner{}
}

// jsString renders a Go string as a JavaScript string literal.
func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func runJSON(ctx context.Context, r Runner, script string, v interface{}) error {
	out, err := r.Run(ctx, script)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return fmt.Errorf("parse automation output: %w", err)
	}
	return nil
}

func containsFold(s, pat string) bool {
	if pat == "" {
		return true
	}
	m := search.New(language.Und, search.IgnoreCase)
	start, _ := m.IndexString(s, pat)
	return start >= 0
}

func matchFolder(pattern, folder string) bool {
	ok, err := doublestar.Match(pattern, folder)
	return err == nil && ok
}
