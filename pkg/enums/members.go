package enums

import (
	"fmt"
	"slices"
)

// parseMember returns value as T when it is one of known, matching exactly.
func parseMember[T ~string](kind, value string, known []T) (T, error) {
	if slices.Contains(known, T(value)) {
		return T(value), nil
	}
	return "", fmt.Errorf("invalid %s %q", kind, value)
}
