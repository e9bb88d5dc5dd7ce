package upload

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// mimeExtensions maps each allowed MIME type to the file extensions it may
// carry. The first entry is the canonical extension used when the original
// filename carries none, or one that does not match the declared type.
var mimeExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

// KeyGen derives storage keys of the form {ownerID}/{uuid}{.ext}. The UUID
// carries 122 random bits, so keys stay distinct under concurrent uploads
// from the same owner without any wall-clock component.
type KeyGen struct{}

func (KeyGen) Generate(ownerID, originalFilename, mimeType string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))

	allowed := mimeExtensions[strings.ToLower(mimeType)]
	if len(allowed) > 0 && !slices.Contains(allowed, ext) {
		ext = allowed[0]
	}

	return ownerID + "/" + uuid.NewString() + ext
}
