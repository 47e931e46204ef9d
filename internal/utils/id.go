package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewExternalID builds an external identifier like USER_3FA85F64 or
// RT_A1B2C3D4: a prefix plus the first 8 hex chars of a v4 UUID, uppercased.
func NewExternalID(prefix string) string {
	hexPart := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return prefix + "_" + strings.ToUpper(hexPart)
}
