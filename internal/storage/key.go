package storage

import "strings"

// ObjectKeyFromURL derives the remote object key from a previously
// returned delivery URL: take the last two /-delimited path segments,
// join them with /, and strip everything from the first dot. Delivery
// URLs append the format extension while stored keys omit it, so the
// derivation round-trips exactly. The algorithm is a pinned contract;
// do not adjust it to new URL shapes without versioning stored records.
func ObjectKeyFromURL(rawURL string) string {
	segments := strings.Split(rawURL, "/")
	if len(segments) < 2 {
		return ""
	}
	key := strings.Join(segments[len(segments)-2:], "/")
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[:i]
	}
	return key
}
