package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langpal/internal/model"
	"langpal/internal/store"
	"langpal/internal/store/mocks"
)

// staticResolver resolves only the partners it was given.
type staticResolver map[string]model.Partner

func (r staticResolver) Resolve(id string) (model.Partner, bool) {
	p, ok := r[id]
	return p, ok
}

func newTestService(partners ...model.Partner) (*Service, *store.MemoryStore) {
	kv := store.NewMemoryStore()
	resolver := staticResolver{}
	for _, p := range partners {
		resolver[p.ID] = p
	}
	return NewService(kv, resolver), kv
}

func account(id, username string) *model.Account {
	return &model.Account{ID: id, Username: username, Password: "secret"}
}

func TestService_AppendRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	canonical := CanonicalKey("kenji", "maria")

	var sent []model.Message
	for i := 0; i < 5; i++ {
		msg := model.Message{
			ID:        fmt.Sprintf("m%d", i),
			Text:      fmt.Sprintf("message %d", i),
			SenderID:  "maria",
			Timestamp: int64(1000 + i),
		}
		sent = append(sent, msg)
		require.NoError(t, svc.Append(ctx, canonical, msg))
	}

	got, err := svc.Messages(ctx, canonical)
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestService_SendMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	maria := account("maria", "maria")
	maria.FirstName = "María"

	msg, err := svc.SendMessage(ctx, maria, "kenji", "  Hola  ", "Spanish")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Hola", msg.Text)
	assert.Equal(t, "maria", msg.SenderID)
	assert.Equal(t, "kenji", msg.ReceiverID)
	assert.Equal(t, "María", msg.SenderName)
	assert.Equal(t, "Spanish", msg.Language)
	assert.Equal(t, "kenji-maria", msg.ChatID)
	assert.False(t, msg.Read)
	assert.InDelta(t, time.Now().UnixMilli(), msg.Timestamp, float64(time.Second.Milliseconds()))

	stored, err := svc.Messages(ctx, "kenji-maria")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, *msg, stored[0])
}

func TestService_SendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.SendMessage(ctx, account("maria", "maria"), "kenji", "   ", "es")
	assert.Error(t, err)

	_, err = svc.SendMessage(ctx, nil, "kenji", "hola", "es")
	assert.Error(t, err)

	_, err = svc.SendMessage(ctx, account("maria", "maria"), "", "hola", "es")
	assert.Error(t, err)
}

func TestService_SendMessage_BlockedReceiverRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	// kenji blocks maria; her next send must not persist anything
	require.NoError(t, svc.SetBlocked(ctx, "kenji", "maria", true))

	_, err := svc.SendMessage(ctx, account("maria", "maria"), "kenji", "Hola", "es")
	assert.ErrorIs(t, err, ErrBlocked)

	msgs, err := svc.Messages(ctx, CanonicalKey("maria", "kenji"))
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// unblocking lets the send through again
	require.NoError(t, svc.SetBlocked(ctx, "kenji", "maria", false))
	_, err = svc.SendMessage(ctx, account("maria", "maria"), "kenji", "Hola", "es")
	require.NoError(t, err)
}

func TestService_SendMessage_RestoresReceiverDeletedChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	canonical := CanonicalKey("maria", "kenji")

	require.NoError(t, svc.SetDeleted(ctx, "kenji", canonical, true))
	deleted, err := svc.DeletedChats(ctx, "kenji")
	require.NoError(t, err)
	assert.Contains(t, deleted, canonical)

	_, err = svc.SendMessage(ctx, account("maria", "maria"), "kenji", "Hola", "es")
	require.NoError(t, err)

	deleted, err = svc.DeletedChats(ctx, "kenji")
	require.NoError(t, err)
	assert.NotContains(t, deleted, canonical)
}

func TestService_SendMessage_BlockCheckFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	kv := mocks.NewMockKVStore(ctrl)
	svc := NewService(kv, staticResolver{})

	// the blocked-set read fails; the send proceeds anyway
	kv.EXPECT().Get(gomock.Any(), "blockedUsers-kenji").Return("", errors.New("disk failure"))
	kv.EXPECT().Get(gomock.Any(), "chat-kenji-maria").Return("", store.ErrNotFound)
	kv.EXPECT().Set(gomock.Any(), "chat-kenji-maria", gomock.Any()).Return(nil)
	kv.EXPECT().Get(gomock.Any(), "deletedChats-kenji").Return("", store.ErrNotFound)

	_, err := svc.SendMessage(ctx, account("maria", "maria"), "kenji", "Hola", "es")
	require.NoError(t, err)
}

func TestService_MarkRead(t *testing.T) {
	ctx := context.Background()
	svc, kv := newTestService()
	canonical := CanonicalKey("maria", "kenji")

	// maria signs up, kenji signs up, maria sends "Hola" to kenji
	_, err := svc.SendMessage(ctx, account("maria", "maria"), "kenji", "Hola", "es")
	require.NoError(t, err)

	msgs, err := svc.Messages(ctx, canonical)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.False(t, msgs[0].Read)

	// kenji opens the conversation
	cutoff := time.Now().UnixMilli()
	require.NoError(t, svc.MarkRead(ctx, canonical, "kenji", cutoff))

	msgs, err = svc.Messages(ctx, canonical)
	require.NoError(t, err)
	assert.True(t, msgs[0].Read)

	lastRead, err := svc.LastRead(ctx, canonical)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, lastRead, msgs[0].Timestamp)

	// idempotent: a second call with the same cutoff leaves stored state
	// byte-identical
	chatRaw, err := kv.Get(ctx, StorageKey(canonical))
	require.NoError(t, err)
	markerRaw, err := kv.Get(ctx, lastReadKey(canonical))
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, canonical, "kenji", cutoff))

	chatRaw2, err := kv.Get(ctx, StorageKey(canonical))
	require.NoError(t, err)
	markerRaw2, err := kv.Get(ctx, lastReadKey(canonical))
	require.NoError(t, err)
	assert.Equal(t, chatRaw, chatRaw2)
	assert.Equal(t, markerRaw, markerRaw2)
}

func TestService_MarkRead_NeverFlagsViewerOwnMessages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	canonical := CanonicalKey("maria", "kenji")

	_, err := svc.SendMessage(ctx, account("maria", "maria"), "kenji", "Hola", "es")
	require.NoError(t, err)

	// maria marking her own conversation read must not flag her message
	require.NoError(t, svc.MarkRead(ctx, canonical, "maria", time.Now().UnixMilli()))

	msgs, err := svc.Messages(ctx, canonical)
	require.NoError(t, err)
	assert.False(t, msgs[0].Read)
}

func TestService_MarkRead_MarkerNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	canonical := CanonicalKey("maria", "kenji")

	require.NoError(t, svc.MarkRead(ctx, canonical, "kenji", 5000))
	require.NoError(t, svc.MarkRead(ctx, canonical, "kenji", 3000))

	lastRead, err := svc.LastRead(ctx, canonical)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), lastRead)
}

func TestService_Reports(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.SubmitReport(ctx, "maria", "kenji", "Not a reason", "")
	assert.Error(t, err)

	report, err := svc.SubmitReport(ctx, "maria", "kenji", model.ReasonSpam, "keeps sending links")
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)

	_, err = svc.SubmitReport(ctx, "kenji", "maria", model.ReasonOther, "")
	require.NoError(t, err)

	reports, err := svc.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "maria", reports[0].ReporterID)
	assert.Equal(t, model.ReasonSpam, reports[0].Reason)
	assert.Equal(t, "kenji", reports[1].ReporterID)
}

func TestService_BlockedUsersSet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.SetBlocked(ctx, "maria", "kenji", true))
	// adding twice keeps the set a set
	require.NoError(t, svc.SetBlocked(ctx, "maria", "kenji", true))
	require.NoError(t, svc.SetBlocked(ctx, "maria", "luca", true))

	blocked, err := svc.BlockedUsers(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, []string{"kenji", "luca"}, blocked)

	isBlocked, err := svc.IsBlockedBy(ctx, "maria", "kenji")
	require.NoError(t, err)
	assert.True(t, isBlocked)

	isBlocked, err = svc.IsBlockedBy(ctx, "kenji", "maria")
	require.NoError(t, err)
	assert.False(t, isBlocked)

	require.NoError(t, svc.SetBlocked(ctx, "maria", "kenji", false))
	blocked, err = svc.BlockedUsers(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, []string{"luca"}, blocked)
}
