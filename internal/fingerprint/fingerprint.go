// Package fingerprint computes cheap, collision-tolerant cache keys for
// content blobs. Fingerprints are never trusted for correctness; callers
// must re-verify the full (atom, options) tuple on every cache hit.
package fingerprint

import "strconv"

// sampleWindow is the number of bytes sampled from each of the prefix,
// middle, and suffix regions of a blob larger than smallInputThreshold.
const sampleWindow = 64

// smallInputThreshold is the blob length below which the entire blob is
// hashed directly instead of being sampled.
const smallInputThreshold = 100

// base36 alphabet used to encode the hash, matching the legacy source's
// compact fingerprint representation.
const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Of returns a stable, compact fingerprint for content. Two equal blobs
// always produce equal fingerprints; two different blobs usually (but not
// guaranteed to) produce different ones.
func Of(content string) string {
	data := content
	if len(content) > smallInputThreshold {
		data = sample(content)
	}

	h := fnv1aSeed
	for i := 0; i < len(data); i++ {
		h ^= uint32(data[i])
		h *= fnv1aPrime
	}
	// Fold the byte length in so that same-sampled-window blobs of
	// different overall size don't collide.
	h ^= uint32(len(content))
	h *= fnv1aPrime

	return encodeBase36(h) + "." + strconv.Itoa(len(content))
}

const (
	fnv1aSeed  uint32 = 2166136261
	fnv1aPrime uint32 = 16777619
)

// sample extracts the prefix, middle, and suffix windows of content so
// that the fingerprint is cheap to compute even for huge blobs.
func sample(content string) string {
	n := len(content)
	w := sampleWindow
	if w > n/3 {
		w = n / 3
	}
	if w < 1 {
		w = 1
	}

	prefix := content[:w]
	mid := n / 2
	midStart := mid - w/2
	if midStart < 0 {
		midStart = 0
	}
	midEnd := midStart + w
	if midEnd > n {
		midEnd = n
	}
	middle := content[midStart:midEnd]
	suffix := content[n-w:]

	return prefix + middle + suffix
}

func encodeBase36(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = base36[v%36]
		v /= 36
	}
	return string(buf[i:])
}
