package chat

import "strings"

// Storage key layout, shared with the original mobile client:
//
//	chat-<idLow>-<idHigh>          message array
//	lastRead-chat-<idLow>-<idHigh> last-read marker (ms timestamp string)
//	deletedChats-<userId>          canonical keys hidden from that user
//	blockedUsers-<userId>          account ids blocked by that user
//	reports                        global report array
const (
	chatKeyPrefix   = "chat-"
	lastReadPrefix  = "lastRead-"
	deletedPrefix   = "deletedChats-"
	blockedPrefix   = "blockedUsers-"
	reportsKey      = "reports"
	canonicalJoiner = "-"
)

// CanonicalKey derives the order-independent conversation key for two
// account ids: lexicographic sort, joined with "-". There is no separate
// conversation-id concept; this key is the sole addressing scheme.
func CanonicalKey(idA, idB string) string {
	if idB < idA {
		idA, idB = idB, idA
	}
	return idA + canonicalJoiner + idB
}

// StorageKey returns the store key holding the message array for a
// canonical conversation key.
func StorageKey(canonical string) string {
	return chatKeyPrefix + canonical
}

// lastReadKey returns the store key holding the shared last-read marker for
// a canonical conversation key.
func lastReadKey(canonical string) string {
	return lastReadPrefix + chatKeyPrefix + canonical
}

// CanonicalFromStorage strips the chat- prefix from a storage key. The
// second result is false when key is not a conversation key.
func CanonicalFromStorage(key string) (string, bool) {
	if !strings.HasPrefix(key, chatKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, chatKeyPrefix), true
}

// OtherParticipant extracts the pair member that is not viewerID from a
// canonical key. Account ids contain hyphens (UUIDs), so the key is never
// split naively; the viewer id is matched against exact "<id>-" / "-<id>"
// boundaries instead.
func OtherParticipant(canonical, viewerID string) (string, bool) {
	if viewerID == "" {
		return "", false
	}
	if strings.HasPrefix(canonical, viewerID+canonicalJoiner) {
		return canonical[len(viewerID)+1:], true
	}
	if strings.HasSuffix(canonical, canonicalJoiner+viewerID) {
		return canonical[:len(canonical)-len(viewerID)-1], true
	}
	return "", false
}

// Includes reports whether id is one of the two participants of a canonical
// key.
func Includes(canonical, id string) bool {
	_, ok := OtherParticipant(canonical, id)
	return ok
}
