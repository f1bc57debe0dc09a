package chat

import (
	"context"
	"sort"

	"langpal/internal/model"
)

// PartnerResolver maps an account id to a display identity. Implemented by
// the partner roster (seeded partners, then registered accounts).
type PartnerResolver interface {
	Resolve(id string) (model.Partner, bool)
}

// unknownPartner is the placeholder identity used when neither the roster
// nor the directory can resolve the other participant.
func unknownPartner(id string) model.Partner {
	return model.Partner{
		ID:     id,
		Name:   "Unknown",
		Status: model.StatusRecentlyActive,
	}
}

// ChatList recomputes the viewer's chat-list projection from scratch: one
// row per conversation that includes the viewer, has at least one message,
// is not hidden by the viewer and whose partner is not blocked. Rows are
// sorted by last message timestamp, newest first.
func (s *Service) ChatList(ctx context.Context, viewerID string) ([]model.ChatListEntry, error) {
	keys, err := s.store.Keys(ctx, chatKeyPrefix)
	if err != nil {
		return nil, err
	}

	deleted, err := s.DeletedChats(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.BlockedUsers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	hidden := make(map[string]bool, len(deleted))
	for _, k := range deleted {
		hidden[k] = true
	}
	blockedSet := make(map[string]bool, len(blocked))
	for _, id := range blocked {
		blockedSet[id] = true
	}

	var list []model.ChatListEntry
	for _, key := range keys {
		canonical, ok := CanonicalFromStorage(key)
		if !ok {
			continue
		}
		// lastRead-chat-* keys do not reach here: enumeration is by the
		// chat- prefix, and lastRead keys start with lastRead-.
		otherID, ok := OtherParticipant(canonical, viewerID)
		if !ok {
			continue
		}
		if hidden[canonical] || blockedSet[otherID] {
			continue
		}

		msgs, err := s.Messages(ctx, canonical)
		if err != nil {
			return nil, err
		}
		// Only surface conversations that actually have history.
		if len(msgs) == 0 {
			continue
		}

		partner, ok := s.resolver.Resolve(otherID)
		if !ok {
			partner = unknownPartner(otherID)
		}

		lastRead, err := s.LastRead(ctx, canonical)
		if err != nil {
			return nil, err
		}
		unread := 0
		for _, m := range msgs {
			if m.SenderID != viewerID && m.Timestamp > lastRead {
				unread++
			}
		}

		last := msgs[len(msgs)-1]
		list = append(list, model.ChatListEntry{
			Key:         canonical,
			Partner:     partner,
			LastMessage: &last,
			UnreadCount: unread,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastMessage.Timestamp > list[j].LastMessage.Timestamp
	})
	return list, nil
}
