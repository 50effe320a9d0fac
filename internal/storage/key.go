package storage

import (
	"net/url"
	"path"
	"strings"

	"github.com/mgpai22/reelsubs/internal/subtitle"
)

// prefix shared by the local directory layout and the bucket layout
const ArtifactPrefix = "subs/"

// media extensions removed when deriving the artifact stem
var mediaExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
}

// ArtifactKey derives the storage key of the subtitle artifact for a media
// reference: "track.mp3", "/tmp/track.mp3" and
// "https://cdn/x/track.mp3?sig=1" all map to "subs/track.json".
// Only vtt artifacts keep their own extension; every other format is stored as
// json. Returns "" when the reference has no usable name.
func ArtifactKey(mediaName string, format subtitle.Format) string {
	stem := MediaStem(mediaName)
	if stem == "" {
		return ""
	}

	ext := ".json"
	if format == subtitle.FormatVTT {
		ext = ".vtt"
	}
	return ArtifactPrefix + stem + ext
}

// base name of a media reference without query or known media extension
func MediaStem(mediaName string) string {
	name := strings.TrimSpace(mediaName)
	if name == "" {
		return ""
	}

	if IsURL(name) {
		if u, err := url.Parse(name); err == nil {
			name = u.Path
		}
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}

	ext := path.Ext(name)
	if mediaExtensions[strings.ToLower(ext)] {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// reports whether a media reference is a remote URL rather than a path
func IsURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "s3://")
}
