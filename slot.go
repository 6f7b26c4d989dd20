package xapiand

import (
	"crypto/md5"
	"encoding/binary"
	"regexp"
	"strings"
)

// Only the start of a name is checked, so "created-at" and "geo.lat" are
// valid names. Existing indices hold values under such names.
var valueNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// NormalizeValueName trims and lower-cases name. ok is false when the result
// does not begin with an identifier.
func NormalizeValueName(name string) (normalized string, ok bool) {
	normalized = strings.ToLower(strings.TrimSpace(name))
	return normalized, valueNameRE.MatchString(normalized)
}

// Slot returns the value slot for name: the low 32 bits of the MD5 digest of
// the normalized name. Names equal up to case and surrounding whitespace
// share a slot. Unrelated names may collide.
func Slot(name string) uint32 {
	n, _ := NormalizeValueName(name)
	sum := md5.Sum([]byte(n))
	return binary.BigEndian.Uint32(sum[len(sum)-4:])
}
