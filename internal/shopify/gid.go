package shopify

import (
	"fmt"
	"strconv"
	"strings"
)

// NumericID extracts the trailing numeric ID from a Shopify GID
// (e.g. "gid://shopify/Product/123" -> "123"). A bare numeric string is
// returned as-is so webhook senders that send plain ids still work.
func NumericID(gid string) string {
	parts := strings.Split(gid, "/")
	return parts[len(parts)-1]
}

// NumericIDInt64 extracts the numeric ID as int64.
func NumericIDInt64(gid string) (int64, error) {
	id, err := strconv.ParseInt(NumericID(gid), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ID from GID %q: %w", gid, err)
	}
	return id, nil
}
