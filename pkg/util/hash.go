package util

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// ProductKey creates an MD5 hash from a catalog position and product name, used as
// the Firestore document ID so reseeding the same catalog overwrites in place.
func ProductKey(position int, name string) string {
	builder := strings.Builder{}
	builder.WriteString(strconv.Itoa(position))
	builder.WriteString("|")
	builder.WriteString(strings.TrimSpace(strings.ToLower(name)))
	return hashString(builder.String())
}

func hashString(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
