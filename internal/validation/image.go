package validation

import (
	"strconv"

	"github.com/gabriel-vasile/mimetype"
)

var imageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/svg+xml",
	"image/webp",
}

// DetectImage sniffs data and returns its MIME type when it is one of the
// accepted image formats.
func DetectImage(data []byte) (string, bool) {
	mt := mimetype.Detect(data)
	for _, t := range imageTypes {
		if mt.Is(t) {
			return t, true
		}
	}
	return mt.String(), false
}

// Image records an error under key when data is not an accepted image or is
// larger than maxKB kilobytes.
func Image(key string, data []byte, maxKB int, errs Errors) {
	if _, ok := DetectImage(data); !ok {
		errs.Fail(key, "image", "")
		return
	}
	if maxKB > 0 && len(data) > maxKB*1024 {
		errs.Fail(key, "max_kb", strconv.Itoa(maxKB))
	}
}
