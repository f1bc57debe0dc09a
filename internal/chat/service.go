package chat

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"langpal/internal/model"
	"langpal/internal/store"
)

// ErrBlocked is returned by SendMessage when the receiver has blocked the
// sender. Nothing is persisted in that case.
var ErrBlocked = errors.New("chat: sender is blocked by the receiver")

// Service is the conversation store: message history, read state, per-user
// block/delete markers and moderation reports, all as read-modify-write
// cycles against the key-value store. Writes are not transactional; two
// rapid appends can race and last write wins. That is the documented
// contract, not an oversight.
type Service struct {
	store    store.KVStore
	resolver PartnerResolver
}

// Constructor used in DI/wire.
func NewService(kv store.KVStore, resolver PartnerResolver) *Service {
	return &Service{store: kv, resolver: resolver}
}

// Messages returns the full ordered history of a conversation. An absent
// key yields an empty history, not an error.
func (s *Service) Messages(ctx context.Context, canonical string) ([]model.Message, error) {
	var msgs []model.Message
	if _, err := store.LoadJSON(ctx, s.store, StorageKey(canonical), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Append reads the current message array, appends msg and writes the whole
// array back.
func (s *Service) Append(ctx context.Context, canonical string, msg model.Message) error {
	msgs, err := s.Messages(ctx, canonical)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)
	return store.SaveJSON(ctx, s.store, StorageKey(canonical), msgs)
}

// SendMessage validates and persists a new message from sender to
// receiverID. The send is rejected with ErrBlocked when the sender appears
// in the receiver's blocked set; a failed read of that set is logged and the
// send proceeds. After a successful append the conversation is removed from
// the receiver's deleted list, best effort, so it resurfaces on their side.
func (s *Service) SendMessage(ctx context.Context, sender *model.Account, receiverID, text, language string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message text cannot be empty")
	}
	if sender == nil || sender.ID == "" {
		return nil, errors.New("sender is required")
	}
	if receiverID == "" {
		return nil, errors.New("receiver ID cannot be empty")
	}

	blocked, err := s.IsBlockedBy(ctx, receiverID, sender.ID)
	if err != nil {
		log.Printf("chat: failed to check block status: %v", err)
	} else if blocked {
		return nil, ErrBlocked
	}

	canonical := CanonicalKey(sender.ID, receiverID)
	msg := model.Message{
		ID:         uuid.NewString(),
		Text:       text,
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		SenderName: sender.DisplayName(),
		Timestamp:  time.Now().UnixMilli(),
		Language:   language,
		Read:       false,
		ChatID:     canonical,
	}

	if err := s.Append(ctx, canonical, msg); err != nil {
		return nil, err
	}

	// Restore the conversation on the receiver's side if they had deleted
	// it. Best effort: the message is already persisted either way.
	if err := s.SetDeleted(ctx, receiverID, canonical, false); err != nil {
		log.Printf("chat: failed to restore conversation for %s: %v", receiverID, err)
	}

	return &msg, nil
}

// LastRead returns the shared last-read marker for a conversation, or 0
// when none was recorded.
func (s *Service) LastRead(ctx context.Context, canonical string) (int64, error) {
	raw, err := s.store.Get(ctx, lastReadKey(canonical))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse last-read marker for %s", canonical)
	}
	return ts, nil
}

// MarkRead advances the last-read marker to max(existing, cutoff) and flips
// read=true on every message whose sender is not the viewer. The message
// array is rewritten only when a flag actually changed, so the operation is
// idempotent.
func (s *Service) MarkRead(ctx context.Context, canonical, viewerID string, cutoff int64) error {
	existing, err := s.LastRead(ctx, canonical)
	if err != nil {
		return err
	}
	if cutoff > existing {
		if err := s.store.Set(ctx, lastReadKey(canonical), strconv.FormatInt(cutoff, 10)); err != nil {
			return err
		}
	}

	msgs, err := s.Messages(ctx, canonical)
	if err != nil {
		return err
	}
	changed := false
	for i := range msgs {
		if msgs[i].SenderID != viewerID && !msgs[i].Read {
			msgs[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return store.SaveJSON(ctx, s.store, StorageKey(canonical), msgs)
}

// BlockedUsers returns the ids the viewer has blocked.
func (s *Service) BlockedUsers(ctx context.Context, viewerID string) ([]string, error) {
	return s.loadSet(ctx, blockedPrefix+viewerID)
}

// SetBlocked adds or removes targetID in the viewer's blocked set.
func (s *Service) SetBlocked(ctx context.Context, viewerID, targetID string, blocked bool) error {
	return s.updateSet(ctx, blockedPrefix+viewerID, targetID, blocked)
}

// IsBlockedBy reports whether senderID appears in targetID's blocked set.
// Checked before every send.
func (s *Service) IsBlockedBy(ctx context.Context, targetID, senderID string) (bool, error) {
	set, err := s.BlockedUsers(ctx, targetID)
	if err != nil {
		return false, err
	}
	for _, id := range set {
		if id == senderID {
			return true, nil
		}
	}
	return false, nil
}

// DeletedChats returns the canonical keys the viewer has hidden.
func (s *Service) DeletedChats(ctx context.Context, viewerID string) ([]string, error) {
	return s.loadSet(ctx, deletedPrefix+viewerID)
}

// SetDeleted adds or removes a canonical key in the viewer's deleted set.
// Hiding is strictly per viewer; the other participant is unaffected.
func (s *Service) SetDeleted(ctx context.Context, viewerID, canonical string, deleted bool) error {
	return s.updateSet(ctx, deletedPrefix+viewerID, canonical, deleted)
}

// SubmitReport appends a moderation record to the global report list. The
// reason must come from the fixed set offered by the report sheet.
func (s *Service) SubmitReport(ctx context.Context, reporterID, partnerID string, reason model.ReportReason, description string) (*model.Report, error) {
	if !reason.Valid() {
		return nil, errors.Errorf("chat: unknown report reason %q", reason)
	}
	reports, err := s.Reports(ctx)
	if err != nil {
		return nil, err
	}
	report := model.Report{
		ID:          uuid.NewString(),
		ReporterID:  reporterID,
		PartnerID:   partnerID,
		Reason:      reason,
		Description: description,
		Timestamp:   time.Now().UnixMilli(),
	}
	reports = append(reports, report)
	if err := store.SaveJSON(ctx, s.store, reportsKey, reports); err != nil {
		return nil, err
	}
	return &report, nil
}

// Reports returns the global append-only report list.
func (s *Service) Reports(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if _, err := store.LoadJSON(ctx, s.store, reportsKey, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Service) loadSet(ctx context.Context, key string) ([]string, error) {
	var set []string
	if _, err := store.LoadJSON(ctx, s.store, key, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *Service) updateSet(ctx context.Context, key, member string, present bool) error {
	set, err := s.loadSet(ctx, key)
	if err != nil {
		return err
	}
	idx := -1
	for i, v := range set {
		if v == member {
			idx = i
			break
		}
	}
	if present {
		if idx >= 0 {
			return nil
		}
		set = append(set, member)
	} else {
		if idx < 0 {
			return nil
		}
		set = append(set[:idx], set[idx+1:]...)
	}
	return store.SaveJSON(ctx, s.store, key, set)
}
