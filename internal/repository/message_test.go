package repository

import (
	"context"
	"testing"
	"time"

	"crewz/internal/models"
	"crewz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_SingleConversationPerPair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	x := testutil.CreateUser(t, db)
	y := testutil.CreateUser(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	senders := []struct{ from, to string }{{x.ID, y.ID}, {y.ID, x.ID}, {x.ID, y.ID}, {y.ID, x.ID}}

	var convID string
	for i, s := range senders {
		msg := &models.Message{SenderID: s.from, ReceiverID: s.to, Content: "msg", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		conv, created, err := repo.Send(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, i == 0, created)
		if convID == "" {
			convID = conv.ID
		}
		assert.Equal(t, convID, conv.ID)
		assert.Equal(t, convID, msg.ConversationID)
	}

	var n int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	conv, err := repo.GetConversation(ctx, y.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadFor(x.ID))
	assert.Equal(t, 2, conv.UnreadFor(y.ID))
}

func TestMessageRepository_UnreadAccounting(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	x := testutil.CreateUser(t, db)
	y := testutil.CreateUser(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, _, err := repo.Send(ctx, &models.Message{SenderID: x.ID, ReceiverID: y.ID, Content: "ping", CreatedAt: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	conv, err := repo.GetConversation(ctx, x.ID, y.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, conv.UnreadFor(y.ID))
	assert.Equal(t, 0, conv.UnreadFor(x.ID))

	// The sender reading the thread does not clear the receiver's side.
	_, err = repo.History(ctx, x.ID, y.ID, time.Now().UTC())
	require.NoError(t, err)
	conv, err = repo.GetConversation(ctx, x.ID, y.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, conv.UnreadFor(y.ID))

	history, err := repo.History(ctx, y.ID, x.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, m := range history {
		assert.True(t, m.IsRead)
		assert.NotNil(t, m.ReadAt)
	}
	assert.True(t, history[0].CreatedAt.Before(history[2].CreatedAt))

	conv, err = repo.GetConversation(ctx, x.ID, y.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadFor(y.ID))
}

func TestMessageRepository_HistoryWithoutConversation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)

	got, err := repo.History(context.Background(), "a", "b", time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMessageRepository_ListConversationsNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	me := testutil.CreateUser(t, db)
	first := testutil.CreateUser(t, db)
	second := testutil.CreateUser(t, db)
	stranger := testutil.CreateUser(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	_, _, err := repo.Send(ctx, &models.Message{SenderID: me.ID, ReceiverID: first.ID, Content: "a", CreatedAt: base})
	require.NoError(t, err)
	_, _, err = repo.Send(ctx, &models.Message{SenderID: second.ID, ReceiverID: me.ID, Content: "b", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, _, err = repo.Send(ctx, &models.Message{SenderID: first.ID, ReceiverID: stranger.ID, Content: "c", CreatedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)
	_, _, err = repo.Send(ctx, &models.Message{SenderID: first.ID, ReceiverID: me.ID, Content: "latest", CreatedAt: base.Add(3 * time.Minute)})
	require.NoError(t, err)

	convs, err := repo.ListConversations(ctx, me.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, first.ID, convs[0].Other(me.ID))
	assert.Equal(t, "latest", convs[0].LastMessage)
	assert.Equal(t, second.ID, convs[1].Other(me.ID))
}

func TestMessageRepository_ListConversationsReturnsEveryThread(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	me := testutil.CreateUser(t, db)
	threads := DefaultPageSize + 5
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < threads; i++ {
		peer := testutil.CreateUser(t, db)
		_, _, err := repo.Send(ctx, &models.Message{SenderID: peer.ID, ReceiverID: me.ID, Content: "yo", CreatedAt: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	all, err := repo.ListConversations(ctx, me.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, threads)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].UpdatedAt.After(all[i-1].UpdatedAt))
	}

	page, err := repo.ListConversations(ctx, me.ID, 10, 20)
	require.NoError(t, err)
	require.Len(t, page, threads-20)
	assert.Equal(t, all[20].ID, page[0].ID)
}

func TestPage(t *testing.T) {
	tests := []struct {
		limit, offset       int
		wantLimit, wantOffs int
	}{
		{0, 0, DefaultPageSize, 0},
		{-1, -9, DefaultPageSize, 0},
		{MaxPageSize + 1, 3, MaxPageSize, 3},
		{5, 10, 5, 10},
	}
	for _, tt := range tests {
		limit, offset := Page(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOffs, offset)
	}

	limit, offset := PageOrAll(0, -2)
	assert.Zero(t, limit)
	assert.Zero(t, offset)
	limit, _ = PageOrAll(MaxPageSize*2, 0)
	assert.Equal(t, MaxPageSize, limit)
}

func TestPreviewOf(t *testing.T) {
	assert.Equal(t, "[image]", previewOf(&models.Message{Type: models.MessageTypeImage, Content: "data:image/png;base64,AAAA"}))

	long := make([]rune, previewLimit+20)
	for i := range long {
		long[i] = 'é'
	}
	assert.Len(t, []rune(previewOf(&models.Message{Content: string(long)})), previewLimit)
}
