// Package acoustid identifies untagged music by acoustic fingerprint. It shells
// out to Chromaprint's fpcalc and queries the AcoustID lookup API.
package acoustid
