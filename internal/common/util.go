package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size. Project access keys
// are minted with this.
func MakeRandHexString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// GuessFileType maps a declared media type to the coarse classification
// stored on a review: image/* -> image, video/* -> video,
// application/pdf -> pdf, anything else -> file.
func GuessFileType(mediaType string) string {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mediaType, "video/"):
		return FileTypeVideo
	case mediaType == "application/pdf":
		return FileTypePDF
	default:
		return FileTypeOther
	}
}

// Clamp01 clamps v into [0, 1]. Comment positions are clamped before
// persistence so a click racing a layout shift cannot store an
// out-of-range fraction.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
