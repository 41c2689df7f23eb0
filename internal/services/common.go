package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReference builds a human-readable, unique payment reference such as
// PRO-20250301120000-1a2b3c4d.
func GenerateReference(prefix string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s%s-%s", prefix, time.Now().Format("20060102150405"), suffix)
}
