package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the freshness used when the response carries no caching headers
	DefaultTTL = 1 * time.Minute
)

// NewEntry builds an entry from a 200 response's headers and body.
func NewEntry(header http.Header, body []byte, now time.Time) *Entry {
	return &Entry{
		Data:         body,
		ETag:         header.Get("ETag"),
		LastModified: header.Get("Last-Modified"),
		Expires:      FreshUntil(header, now),
		CachedAt:     now,
	}
}

// Cacheable reports whether the response may be stored at all.
func Cacheable(header http.Header) bool {
	_, noStore := cacheControl(header)["no-store"]
	return !noStore
}

// FreshUntil derives the freshness deadline of a response.
// Cache-Control max-age wins over Expires; no-cache makes the response
// immediately stale. Without either header DefaultTTL applies.
func FreshUntil(header http.Header, now time.Time) time.Time {
	directives := cacheControl(header)
	if _, ok := directives["no-cache"]; ok {
		return now
	}
	if v, ok := directives["max-age"]; ok {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return now.Add(time.Duration(secs) * time.Second)
		}
	}

	if expiresStr := header.Get("Expires"); expiresStr != "" {
		expires, err := http.ParseTime(expiresStr)
		if err != nil || expires.Before(now) {
			// Unparseable or past Expires means already stale
			return now
		}
		return expires
	}

	return now.Add(DefaultTTL)
}

func cacheControl(header http.Header) map[string]string {
	out := make(map[string]string)
	for _, line := range header.Values("Cache-Control") {
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, value, _ := strings.Cut(part, "=")
			out[strings.ToLower(strings.TrimSpace(name))] = strings.Trim(strings.TrimSpace(value), `"`)
		}
	}
	return out
}

// CanRevalidate determines if a stale entry carries a validator for a
// conditional request.
func CanRevalidate(entry *Entry) bool {
	if entry == nil {
		return false
	}
	return entry.ETag != "" || entry.LastModified != ""
}

// AddConditionalHeaders adds If-None-Match (ETag) or If-Modified-Since headers
// to the request if the entry supports conditional requests.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}

	// Prefer ETag over Last-Modified
	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if entry.LastModified != "" {
		req.Header.Set("If-Modified-Since", entry.LastModified)
	}
}
