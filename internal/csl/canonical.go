package csl

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for render fingerprints. The version suffix enables
// future algorithm migration without colliding with old fingerprints.
const (
	DomainRender = "bibkit/render/v1"
	DomainEvent  = "bibkit/event/v1"
)

// Canonical returns the NFC-normalized form of a string. Collision
// detection compares canonical text so that composed and decomposed
// inputs that look identical are treated as identical.
func Canonical(s string) string {
	return norm.NFC.String(s)
}

// Fingerprint computes the collision fingerprint for rendered runs.
// Only the visible text participates: two renders that differ solely in
// run tagging still look identical to a reader, so they must collide.
//
// Format: SHA256(domain + 0x00 + NFC(text)). The null separator prevents
// domain/data boundary ambiguity.
func Fingerprint(rs Runs) string {
	h := sha256.New()
	h.Write([]byte(DomainRender))
	h.Write([]byte{0x00})
	h.Write([]byte(Canonical(rs.String())))
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes a content-addressed id for a citation event, stable
// across restarts and replays given the same inputs.
func EventID(ev CitationEvent) string {
	h := sha256.New()
	h.Write([]byte(DomainEvent))
	h.Write([]byte{0x00})
	for _, it := range ev.Items {
		h.Write([]byte(Canonical(it.EntryID)))
		h.Write([]byte{0x1f})
		h.Write([]byte(Canonical(it.Locator)))
		h.Write([]byte{0x1f})
		h.Write([]byte(Canonical(it.LocatorLabel)))
		h.Write([]byte{0x1e})
	}
	var seqBuf [8]byte
	for i := 0; i < 8; i++ {
		seqBuf[i] = byte(ev.Seq >> (8 * (7 - i)))
	}
	h.Write(seqBuf[:])
	return hex.EncodeToString(h.Sum(nil))
}
