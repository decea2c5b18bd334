package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roostdev/roost/internal/failure"
)

// DefaultKeyword is the directive keyword used when an append item declares
// none. "source <file>" is what POSIX shells understand in an init file.
const DefaultKeyword = "source"

// Append ensures Target contains the directive line "<Keyword> <Source>".
// The destination file gains a line that sources the repository file in
// place, so edits to the source propagate without re-running the installer.
//
// Idempotency contract: the exact directive line already present (literal
// line match, not fuzzy) is a no-op; otherwise the line is appended, creating
// the file if absent.
type Append struct {
	Source  string
	Target  string
	Keyword string
}

func (a *Append) Kind() string { return "append" }

func (a *Append) Describe() string {
	return fmt.Sprintf("append %q -> %s", a.directive(), a.Target)
}

func (a *Append) directive() string {
	keyword := a.Keyword
	if keyword == "" {
		keyword = DefaultKeyword
	}
	return keyword + " " + a.Source
}

func (a *Append) Run(ctx context.Context) error {
	if !fileExists(a.Source) {
		return failure.Newf(failure.SourceMissing, "append source %s does not exist", a.Source)
	}
	if err := ensureDir(filepath.Dir(a.Target)); err != nil {
		return err
	}

	present, trailingNewline, err := a.contains()
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	f, err := os.OpenFile(a.Target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return failure.Wrapf(err, failure.IO, "open %s for append", a.Target)
	}
	defer f.Close()

	line := a.directive() + "\n"
	if !trailingNewline {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return failure.Wrapf(err, failure.IO, "append to %s", a.Target)
	}
	return nil
}

// contains reports whether the directive is already a line of the target, and
// whether the file currently ends in a newline (true for absent or empty
// files, so the appended line never glues onto a partial last line).
func (a *Append) contains() (present, trailingNewline bool, err error) {
	data, err := os.ReadFile(a.Target)
	if os.IsNotExist(err) {
		return false, true, nil
	}
	if err != nil {
		return false, false, failure.Wrapf(err, failure.IO, "read %s", a.Target)
	}
	content := string(data)
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimRight(line, "\r") == a.directive() {
			return true, true, nil
		}
	}
	trailingNewline = content == "" || strings.HasSuffix(content, "\n")
	return false, trailingNewline, nil
}

// IsApplied implements Idempotent: true when the directive line is present.
func (a *Append) IsApplied(ctx context.Context) (bool, error) {
	present, _, err := a.contains()
	return present, err
}
