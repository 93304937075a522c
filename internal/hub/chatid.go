package hub

import "strings"

// ChatIDFor derives the canonical conversation id for a user pair. The
// derivation is order-independent: (a, b) and (b, a) yield the same id.
// User ids must not contain '_'.
func ChatIDFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// SplitChatID recovers the member pair from a canonical chat id.
func SplitChatID(chatID string) (a, b string, ok bool) {
	parts := strings.Split(chatID, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
