package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// BucketMarker is the path segment that marks the root of the asset storage
// layout. Everything after it follows the convention:
// .../<BucketMarker>/<product_key>/<category_key>/<filename>
const BucketMarker = "watch-assets"

// NormalizeURL reduces a URL to scheme+host+path for deduplication:
// query and fragment are stripped, and a trailing slash is removed.
// The input is returned unchanged (trimmed) when it does not parse.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	normalized := parsed.String()
	normalized = strings.TrimSuffix(normalized, "/")
	return normalized
}

// ExtractProductSegment extracts the product key embedded in an asset URL
// under the storage path convention.
// Returns ("", false) when the URL carries no recognizable convention
// (e.g., an externally hosted image).
func ExtractProductSegment(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment != BucketMarker {
			continue
		}
		// The product key is the segment immediately after the marker
		if i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], true
		}
		return "", false
	}

	return "", false
}

// invalidFilenameChars matches everything that is not safe in a blob filename
var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename makes a filename safe for the blob path convention:
// lowercased, spaces and special characters collapsed to single dashes.
func SanitizeFilename(filename string) string {
	name := strings.ToLower(strings.TrimSpace(filename))
	name = invalidFilenameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "asset"
	}
	return name
}

// BlobPath builds the storage path for an uploaded asset:
// <product_key>/<category_key>/<timestamp>-<sequence>-<sanitized_filename>
func BlobPath(productKey, categoryKey string, timestamp int64, sequence int, filename string) string {
	return fmt.Sprintf("%s/%s/%d-%d-%s", productKey, categoryKey, timestamp, sequence, SanitizeFilename(filename))
}
