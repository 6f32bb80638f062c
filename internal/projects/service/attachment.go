package service

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// AttachmentPath builds "{id}-{random}{.ext}". The extension comes from the
// uploaded filename and is dropped when the name has none.
func AttachmentPath(projectID, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if ext == "." {
		ext = ""
	}
	return projectID + "-" + uuid.NewString() + ext
}
