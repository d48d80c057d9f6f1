package uploads

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename reduces name to a safe base name: path components are
// dropped, runs of unsafe characters become "-", and the result is
// lowercased. An empty result becomes "file".
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, ".-")
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	if name == "" {
		return "file"
	}
	return strings.ToLower(name)
}

// NewPath builds <prefix>/YYYY/MM/<uuid8>-<sanitized filename>.
func NewPath(prefix, filename string) string {
	return newPathAt(time.Now().UTC(), prefix, filename)
}

func newPathAt(now time.Time, prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename))
	dir := fmt.Sprintf("%04d/%02d", now.Year(), now.Month())
	if prefix != "" {
		dir = prefix + "/" + dir
	}
	return dir + "/" + name
}
