// Package media identifies media files and simulates their playback clock.
// Nothing here decodes media; duration comes from the caller.
package media

import (
	"fmt"
	"os"
	"strconv"
)

// Fingerprint identifies path by a hash of its decimal file size. It is
// cheap and deliberately weak: it detects a replaced file, not a tampered one.
// The hash wraps on overflow.
func Fingerprint(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("fingerprinting %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("fingerprinting %s: is a directory", path)
	}
	return HashSize(info.Size()), nil
}

// HashSize is the string hash behind Fingerprint: h = h*31 + c over the
// digits of size.
func HashSize(size int64) int64 {
	var h int64
	for _, c := range strconv.FormatInt(size, 10) {
		h = h*31 + int64(c)
	}
	return h
}
