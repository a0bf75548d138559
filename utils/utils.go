package utils

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
)

func GenUuidFromStrings(parts ...string) string {
	if len(parts) == 0 {
		parts = append(parts, uuid.Nil.String())
	}

	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)

	return uuid.NewV3(uuid.NamespaceOID, strings.Join(sorted, "")).String()
}

// ActionRequestId is stable for one user acting on one order, so retries of
// the same action log under the same id.
func ActionRequestId(action string, orderId, userId uint64) string {
	return GenUuidFromStrings(
		"action:"+action,
		"order:"+strconv.FormatUint(orderId, 10),
		"user:"+strconv.FormatUint(userId, 10),
	)
}
