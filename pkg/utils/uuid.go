package utils

import "github.com/google/uuid"

// IsUUID checks if the string is a valid UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// PairKey builds the normalized key for a two-party private room.
// The smaller user id always comes first so {A,B} and {B,A} collide
// on the same unique index.
func PairKey(a, b string) string {
	if a < b {
		return a + "_" + b
	}
	return b + "_" + a
}
