package link

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	finishedRe   = regexp.MustCompile(`^(.+)\.([0-9a-fA-F]{8})\.link$`)
	unfinishedRe = regexp.MustCompile(`^(.+)\.([0-9a-fA-F]{8})\.link-unfinished$`)
)

// ShortKeyID truncates a full keyid to the 8 hex characters the filename
// convention uses.
func ShortKeyID(keyID string) string {
	if len(keyID) > 8 {
		keyID = keyID[:8]
	}
	return strings.ToLower(keyID)
}

// Filename builds the `{step_name}.{short_keyid}.link` filename for a
// finished link.
func Filename(step, keyID string) string {
	return fmt.Sprintf("%s.%s.link", step, ShortKeyID(keyID))
}

// UnfinishedFilename builds the `.link-unfinished` variant.
func UnfinishedFilename(step, keyID string) string {
	return fmt.Sprintf("%s.%s.link-unfinished", step, ShortKeyID(keyID))
}

// ParsedFilename is the result of recognizing a link filename.
type ParsedFilename struct {
	Step       string
	ShortKeyID string
	Unfinished bool
}

// ParseFilename recognizes the (step, functionary) pair encoded in a link
// filename. It returns ok=false for anything that doesn't match either
// grammar, so callers scanning a directory can skip stray files instead of
// erroring.
func ParseFilename(name string) (ParsedFilename, bool) {
	base := filepath.Base(name)

	if m := finishedRe.FindStringSubmatch(base); m != nil {
		return ParsedFilename{Step: m[1], ShortKeyID: strings.ToLower(m[2])}, true
	}
	if m := unfinishedRe.FindStringSubmatch(base); m != nil {
		return ParsedFilename{Step: m[1], ShortKeyID: strings.ToLower(m[2]), Unfinished: true}, true
	}
	return ParsedFilename{}, false
}
