package repository

import (
	"context"
	"testing"
	"time"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfflineChatRepo() *ChatRepository {
	return &ChatRepository{cfg: testConfig(), log: testLogger()}
}

func TestMergeParticipantsUnion(t *testing.T) {
	got := mergeParticipants([]string{"alice", "bob"}, "carol", "bob")
	assert.Equal(t, []string{"alice", "bob", "carol"}, got)
}

func TestMergeParticipantsOrderIndependent(t *testing.T) {
	// Two users joining concurrently must yield the same member set no
	// matter which write lands first.
	base := []string{"creator"}

	ab := mergeParticipants(mergeParticipants(base, "alice"), "bob")
	ba := mergeParticipants(mergeParticipants(base, "bob"), "alice")

	assert.ElementsMatch(t, ab, ba)
	assert.Len(t, ab, 3)
}

func TestMergeParticipantsNeverShrinks(t *testing.T) {
	existing := []string{"alice", "bob", "carol"}
	got := mergeParticipants(existing, "alice")
	assert.Len(t, got, len(existing), "re-adding a member must not change cardinality")
	assert.Equal(t, existing, got)
}

func TestMergeParticipantsSkipsEmpty(t *testing.T) {
	got := mergeParticipants([]string{"", "alice"}, "", "bob")
	assert.Equal(t, []string{"alice", "bob"}, got)
}

func TestCreateRoomSeedsFullMemberSet(t *testing.T) {
	members := mergeParticipants([]string{"creator"}, "alice", "bob", "creator")
	require.Len(t, members, 3, "creator listed twice must still count once")
	assert.Equal(t, "creator", members[0])
}

func TestHasParticipant(t *testing.T) {
	room := &models.ChatRoom{Participants: []string{"alice", "bob"}}

	assert.True(t, room.HasParticipant("alice"))
	assert.False(t, room.HasParticipant("mallory"))
	assert.False(t, room.HasParticipant(""))
}

func TestMembershipFilterFixture(t *testing.T) {
	rooms := []models.ChatRoom{
		{ID: "r1", Participants: []string{"alice", "bob"}},
		{ID: "r2", Participants: []string{"bob", "carol"}},
		{ID: "r3", Participants: []string{"alice", "carol", "dave"}},
		{ID: "r4", Participants: []string{"dave"}},
		{ID: "r5", Participants: []string{"alice", "bob", "carol", "dave"}},
	}

	want := map[string][]string{
		"alice":   {"r1", "r3", "r5"},
		"bob":     {"r1", "r2", "r5"},
		"carol":   {"r2", "r3", "r5"},
		"dave":    {"r3", "r4", "r5"},
		"mallory": {},
	}

	for user, wantIDs := range want {
		got := make([]string, 0, len(rooms))
		for i := range rooms {
			if rooms[i].HasParticipant(user) {
				got = append(got, rooms[i].ID)
			}
		}
		assert.Equal(t, wantIDs, got, "membership filter for %s", user)
	}
}

func TestRequireParticipant(t *testing.T) {
	room := &models.ChatRoom{Participants: []string{"alice", "bob"}}

	assert.NoError(t, requireParticipant("op", room, "alice"))

	err := requireParticipant("op", room, "mallory")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

func TestJoinUpdatesSkipExistingMember(t *testing.T) {
	room := &models.ChatRoom{
		Participants: []string{"alice", "bob"},
		UnreadCount:  map[string]int64{"alice": 0, "bob": 4},
	}

	// A retried join by a current member must not touch their counter.
	assert.Nil(t, joinUpdates(room, "bob"))

	updates := joinUpdates(room, "carol")
	require.Len(t, updates, 3)
	assert.Equal(t, "participants", updates[0].Path)
	assert.Equal(t, firestore.FieldPath{"unreadCount", "carol"}, updates[1].FieldPath)
	assert.Equal(t, int64(0), updates[1].Value)
}

func msgAt(id, roomID string, serverTS, clientTS time.Time) models.Message {
	return models.Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  "sender",
		Content:   "hello",
		Timestamp: serverTS,
		CreatedAt: clientTS,
	}
}

func TestMergeMessagesDedupesAcrossShapes(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	sub := []models.Message{
		msgAt("m1", "room-1", t1, t1),
		msgAt("m2", "room-1", t2, t2),
	}
	legacy := []models.Message{
		msgAt("m1", "room-1", t1, t1), // same document in both shapes
		msgAt("m0", "room-1", t1.Add(-time.Minute), t1.Add(-time.Minute)),
	}

	got := mergeMessages(50, sub, legacy)
	require.Len(t, got, 3)
	assert.Equal(t, "m0", got[0].ID)
	assert.Equal(t, "m1", got[1].ID)
	assert.Equal(t, "m2", got[2].ID)
}

func TestMergeMessagesPrefersServerTimestamp(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Skewed client clock says m1 came later, server time says earlier.
	m1 := msgAt("m1", "room-1", base, base.Add(time.Hour))
	m2 := msgAt("m2", "room-1", base.Add(time.Minute), base.Add(time.Minute))

	got := mergeMessages(50, []models.Message{m2, m1})
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID, "ordering must follow the server timestamp")
}

func TestMergeMessagesFallsBackToClientTime(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Legacy documents may carry only createdAt.
	m1 := msgAt("m1", "room-1", time.Time{}, base)
	m2 := msgAt("m2", "room-1", time.Time{}, base.Add(time.Minute))

	got := mergeMessages(50, []models.Message{m2, m1})
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
}

func TestMergeMessagesKeepsNewestWithinLimit(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var batch []models.Message
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		batch = append(batch, msgAt(string(rune('a'+i)), "room-1", ts, ts))
	}

	got := mergeMessages(2, batch)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "e", got[1].ID)
}

func TestCreateRoomValidation(t *testing.T) {
	repo := newOfflineChatRepo()
	ctx := context.Background()

	_, err := repo.CreateRoom(ctx, "", []string{"alice"}, models.RoomTypeDirect, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	_, err = repo.CreateRoom(ctx, "creator", []string{"alice"}, "broadcast", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSendMessageValidation(t *testing.T) {
	repo := newOfflineChatRepo()
	ctx := context.Background()

	_, err := repo.SendMessage(ctx, "room-1", "", SendMessageParams{Content: "hi"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	_, err = repo.SendMessage(ctx, "room-1", "alice", SendMessageParams{Content: "   "})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = repo.SendMessage(ctx, "room-1", "alice", SendMessageParams{Content: "hi", MessageType: "carrier-pigeon"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestListRoomsRequiresUser(t *testing.T) {
	repo := newOfflineChatRepo()

	_, err := repo.ListRoomsForUser(context.Background(), "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	_, err = repo.JoinRoom(context.Background(), "room-1", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	_, err = repo.LeaveRoom(context.Background(), "room-1", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

// Read paths carry the caller identity so membership can be enforced even
// though the service holds privileged backend credentials.
func TestRoomReadsRequireCaller(t *testing.T) {
	repo := newOfflineChatRepo()

	_, err := repo.GetRoom(context.Background(), "room-1", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))

	_, err = repo.GetMessages(context.Background(), "room-1", "", 10)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}
