package blob

import (
	"fmt"
	"path"
	"strings"

	"vidscribe/internal/services"
)

const (
	// SchemeGCS identifies objects stored in Google Cloud Storage.
	SchemeGCS = "gs"
	// SchemeFile identifies objects stored by the filesystem backend.
	SchemeFile = "file"
	// SchemeS3 is accepted on input for compatibility with upload flows that
	// record S3-style locations. The key and bucket are used as-is against the
	// configured backend.
	SchemeS3 = "s3"
)

// Location addresses one object.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

// String renders the location as scheme://bucket/key, or bucket/key when the
// scheme is unknown.
func (l Location) String() string {
	if l.Scheme == "" {
		return l.Bucket + "/" + l.Key
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}

// Base returns the final path element of the key.
func (l Location) Base() string {
	return path.Base(l.Key)
}

// ParseLocation parses scheme://bucket/key or a bare key, which is resolved
// against defaultBucket. HTTP URLs are rejected: sources must live in the
// object store.
func ParseLocation(raw, defaultBucket string) (Location, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Location{}, services.Wrap(services.ErrValidation, "blob", "parse location", "location is empty", nil)
	}
	scheme, rest, hasScheme := strings.Cut(value, "://")
	if !hasScheme {
		key := strings.TrimLeft(value, "/")
		if strings.TrimSpace(defaultBucket) == "" {
			return Location{}, services.Wrap(services.ErrValidation, "blob", "parse location",
				fmt.Sprintf("bare key %q requires a default bucket", value), nil)
		}
		if key == "" {
			return Location{}, services.Wrap(services.ErrValidation, "blob", "parse location", "key is empty", nil)
		}
		return Location{Bucket: defaultBucket, Key: key}, nil
	}

	scheme = strings.ToLower(scheme)
	switch scheme {
	case SchemeGCS, SchemeFile, SchemeS3:
	case "http", "https":
		return Location{}, services.Wrap(services.ErrValidation, "blob", "parse location",
			fmt.Sprintf("http sources are not supported: %q", value), nil)
	default:
		return Location{}, services.Wrap(services.ErrValidation, "blob", "parse location",
			fmt.Sprintf("unsupported scheme %q", scheme), nil)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" || key == "" {
		return Location{}, services.Wrap(services.ErrValidation, "blob", "parse location",
			fmt.Sprintf("location %q needs both bucket and key", value), nil)
	}
	return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// TranscriptKey returns the owner-scoped object key of a transcript artifact.
// ext is "srt" or "txt".
func TranscriptKey(ownerID, projectID, videoID, language, ext string) string {
	return fmt.Sprintf("%s/%s/transcripts/%s_%s.%s", ownerID, projectID, videoID, language, ext)
}

// SiblingKey swaps the extension of key, keeping its directory and stem.
func SiblingKey(key, ext string) string {
	stem := strings.TrimSuffix(key, path.Ext(key))
	return stem + "." + strings.TrimPrefix(ext, ".")
}
