package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lockerroom-talk/internal/apperrors"
	"lockerroom-talk/internal/config"
	"lockerroom-talk/internal/models"
	"lockerroom-talk/internal/timeutil"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

type ChatRepository struct {
	client *firestore.Client
	cfg    *config.Config
	log    *logrus.Logger
}

func NewChatRepository(client *firestore.Client, cfg *config.Config, log *logrus.Logger) *ChatRepository {
	return &ChatRepository{client: client, cfg: cfg, log: log}
}

func (r *ChatRepository) rooms() *firestore.CollectionRef {
	return r.client.Collection(chatRoomsCollection)
}

func (r *ChatRepository) roomMessages(roomID string) *firestore.CollectionRef {
	return r.rooms().Doc(roomID).Collection(roomMessagesCollection)
}

// CreateRoom writes the full initial participant array in a single document
// create. Building the set with sequential unions would leave a window where
// the room exists with fewer members than intended.
func (r *ChatRepository) CreateRoom(ctx context.Context, creatorID string, participants []string, roomType, name string) (*models.ChatRoom, error) {
	const op = "chat.create_room"
	if creatorID == "" {
		return nil, apperrors.Permission(op, "missing creator")
	}
	if roomType != models.RoomTypeDirect && roomType != models.RoomTypePublic {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown room type %q", roomType))
	}

	members := mergeParticipants([]string{creatorID}, participants...)
	unread := make(map[string]int64, len(members))
	for _, m := range members {
		unread[m] = 0
	}

	ref := r.rooms().NewDoc()
	data := map[string]any{
		"participants":    members,
		"createdBy":       creatorID,
		"type":            roomType,
		"name":            name,
		"lastMessage":     "",
		"lastMessageTime": firestore.ServerTimestamp,
		"unreadCount":     unread,
		"isActive":        true,
		"createdAt":       firestore.ServerTimestamp,
		"updatedAt":       firestore.ServerTimestamp,
	}
	if _, err := ref.Create(ctx, data); err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}

	r.log.WithFields(logrus.Fields{"op": op, "room_id": ref.ID, "members": len(members)}).Info("chat room created")
	return r.getRoom(ctx, ref.ID)
}

// GetRoom returns the room to one of its participants. The service reads
// with privileged credentials, so backend rules no longer gate these reads;
// membership is enforced here.
func (r *ChatRepository) GetRoom(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	const op = "chat.get_room"
	if userID == "" {
		return nil, apperrors.Permission(op, "missing user")
	}
	room, err := r.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(op, room, userID); err != nil {
		return nil, err
	}
	return room, nil
}

func (r *ChatRepository) getRoom(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	const op = "chat.get_room"
	var room *models.ChatRoom
	err := withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		snap, err := r.rooms().Doc(roomID).Get(ctx)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		rm, err := decodeRoom(snap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		room = rm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// JoinRoom adds the user inside a transaction and returns a fresh read of
// the room. A re-join by an existing member is a no-op: seeding the unread
// counter only for new members keeps a client retry from wiping a live
// count. Callers must take member counts from the returned room, never from
// a pre-write snapshot.
func (r *ChatRepository) JoinRoom(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	const op = "chat.join_room"
	if userID == "" {
		return nil, apperrors.Permission(op, "missing user")
	}
	roomRef := r.rooms().Doc(roomID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(roomRef)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		room, err := decodeRoom(snap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		updates := joinUpdates(room, userID)
		if updates == nil {
			return nil
		}
		return tx.Update(roomRef, updates)
	})
	if err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}
	return r.getRoom(ctx, roomID)
}

// LeaveRoom removes only the leaving member with a targeted set removal and
// returns a fresh read of the room. The room itself is never deleted here,
// even when it becomes empty; room deletion is a separate explicit
// operation.
func (r *ChatRepository) LeaveRoom(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	const op = "chat.leave_room"
	if userID == "" {
		return nil, apperrors.Permission(op, "missing user")
	}
	_, err := r.rooms().Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "participants", Value: firestore.ArrayRemove(userID)},
		{FieldPath: firestore.FieldPath{"unreadCount", userID}, Value: firestore.Delete},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}
	return r.getRoom(ctx, roomID)
}

type SendMessageParams struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	MediaURL    string `json:"media_url,omitempty"`
}

// SendMessage writes the message and the room's denormalized lastMessage
// fields in one transaction, so a failure leaves neither half applied. Every
// other participant's unread counter is incremented with an additive
// field-level update, never a whole-document overwrite.
func (r *ChatRepository) SendMessage(ctx context.Context, roomID, senderID string, p SendMessageParams) (*models.Message, error) {
	const op = "chat.send_message"
	if senderID == "" {
		return nil, apperrors.Permission(op, "missing sender")
	}
	if strings.TrimSpace(p.Content) == "" && p.MediaURL == "" {
		return nil, apperrors.Validation(op, "message content is empty")
	}
	if p.MessageType == "" {
		p.MessageType = models.MessageTypeText
	}
	if p.MessageType != models.MessageTypeText && p.MessageType != models.MessageTypeMedia {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown message type %q", p.MessageType))
	}

	roomRef := r.rooms().Doc(roomID)
	msgRef := r.roomMessages(roomID).NewDoc()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(roomRef)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		room, err := decodeRoom(snap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		if err := requireParticipant(op, room, senderID); err != nil {
			return err
		}

		msg := map[string]any{
			"roomId":      roomID,
			"senderId":    senderID,
			"content":     p.Content,
			"messageType": p.MessageType,
			"mediaUrl":    p.MediaURL,
			"timestamp":   firestore.ServerTimestamp,
			"createdAt":   firestore.ServerTimestamp,
			"isRead":      false,
			"isDelivered": false,
		}
		if err := tx.Create(msgRef, msg); err != nil {
			return apperrors.FromFirestore(op, err)
		}

		preview := p.Content
		if p.MessageType == models.MessageTypeMedia && preview == "" {
			preview = "[media]"
		}
		updates := []firestore.Update{
			{Path: "lastMessage", Value: preview},
			{Path: "lastMessageTime", Value: firestore.ServerTimestamp},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		}
		for _, participant := range room.Participants {
			if participant == senderID {
				continue
			}
			updates = append(updates, firestore.Update{
				FieldPath: firestore.FieldPath{"unreadCount", participant},
				Value:     firestore.Increment(1),
			})
		}
		return tx.Update(roomRef, updates)
	})
	if err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}

	// Read back for the materialized server timestamps.
	snap, err := msgRef.Get(ctx)
	if err != nil {
		return nil, apperrors.FromFirestore(op, err)
	}
	sent, err := decodeMessage(snap)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, op, err)
	}
	r.log.WithFields(logrus.Fields{"op": op, "room_id": roomID, "message_id": sent.ID}).Info("message sent")
	return sent, nil
}

// MarkRead flips isRead on a message its intended reader received and resets
// that reader's unread counter for the room. It never touches another
// participant's counter.
func (r *ChatRepository) MarkRead(ctx context.Context, roomID, userID, messageID string) error {
	const op = "chat.mark_read"
	if userID == "" {
		return apperrors.Permission(op, "missing user")
	}
	roomRef := r.rooms().Doc(roomID)
	msgRef := r.roomMessages(roomID).Doc(messageID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		roomSnap, err := tx.Get(roomRef)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		room, err := decodeRoom(roomSnap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		if err := requireParticipant(op, room, userID); err != nil {
			return err
		}

		msgSnap, err := tx.Get(msgRef)
		if err != nil {
			return apperrors.FromFirestore(op, err)
		}
		msg, err := decodeMessage(msgSnap)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, op, err)
		}
		if msg.SenderID == userID {
			return apperrors.Permission(op, "sender cannot mark own message as read")
		}

		if err := tx.Update(msgRef, []firestore.Update{
			{Path: "isRead", Value: true},
			{Path: "isDelivered", Value: true},
		}); err != nil {
			return apperrors.FromFirestore(op, err)
		}
		return tx.Update(roomRef, []firestore.Update{
			{FieldPath: firestore.FieldPath{"unreadCount", userID}, Value: int64(0)},
		})
	})
	if err != nil {
		return apperrors.FromFirestore(op, err)
	}
	return nil
}

// ListRoomsForUser relies on the backend's array-contains predicate over
// participants. The ordering requires a composite index; its absence is a
// configuration error and surfaces as a distinct kind from a permissions
// failure.
func (r *ChatRepository) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	const op = "chat.list_rooms"
	if userID == "" {
		return nil, apperrors.Permission(op, "missing user")
	}
	q := r.rooms().
		Where("participants", "array-contains", userID).
		OrderBy("lastMessageTime", firestore.Desc)

	var out []models.ChatRoom
	err := withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		iter := q.Documents(ctx)
		defer iter.Stop()

		rooms := make([]models.ChatRoom, 0, 16)
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return apperrors.FromFirestore(op, err)
			}
			room, err := decodeRoom(snap)
			if err != nil {
				r.log.WithFields(logrus.Fields{"op": op, "room_id": snap.Ref.ID}).Warn("skipping undecodable room")
				continue
			}
			rooms = append(rooms, *room)
		}
		out = rooms
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetMessages reads both storage shapes: the preferred per-room
// subcollection and the legacy top-level collection filtered by roomId. The
// two result sets are merged, deduplicated by ID and ordered by canonical
// instant until the legacy shape is fully retired. Only participants may
// read a room's history.
func (r *ChatRepository) GetMessages(ctx context.Context, roomID, userID string, limit int) ([]models.Message, error) {
	const op = "chat.get_messages"
	if userID == "" {
		return nil, apperrors.Permission(op, "missing user")
	}
	room, err := r.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipant(op, room, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = r.cfg.DefaultPageSize
	}
	if limit > r.cfg.MaxPageSize {
		limit = r.cfg.MaxPageSize
	}

	var merged []models.Message
	err = withRetry(ctx, r.cfg.ReadRetryAttempts, func() error {
		sub, err := r.collectMessages(ctx, op,
			r.roomMessages(roomID).OrderBy("createdAt", firestore.Desc).Limit(limit))
		if err != nil {
			return err
		}
		legacy, err := r.collectMessages(ctx, op,
			r.client.Collection(legacyMessagesCollection).
				Where("roomId", "==", roomID).
				OrderBy("createdAt", firestore.Desc).
				Limit(limit))
		if err != nil {
			return err
		}
		merged = mergeMessages(limit, sub, legacy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *ChatRepository) collectMessages(ctx context.Context, op string, q firestore.Query) ([]models.Message, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Message
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperrors.FromFirestore(op, err)
		}
		msg, err := decodeMessage(snap)
		if err != nil {
			r.log.WithFields(logrus.Fields{"op": op, "message_id": snap.Ref.ID}).Warn("skipping undecodable message")
			continue
		}
		out = append(out, *msg)
	}
	return out, nil
}

func requireParticipant(op string, room *models.ChatRoom, userID string) error {
	if !room.HasParticipant(userID) {
		return apperrors.Permission(op, "caller is not a room participant")
	}
	return nil
}

// joinUpdates returns the writes that add userID to the room, or nil when
// the user is already a member. The unread counter is seeded only for new
// members so a re-join cannot wipe a live count.
func joinUpdates(room *models.ChatRoom, userID string) []firestore.Update {
	if room.HasParticipant(userID) {
		return nil
	}
	return []firestore.Update{
		{Path: "participants", Value: firestore.ArrayUnion(userID)},
		{FieldPath: firestore.FieldPath{"unreadCount", userID}, Value: int64(0)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
}

// mergeParticipants unions id sets preserving first-seen order; it is the
// local analogue of the backend's ArrayUnion primitive.
func mergeParticipants(existing []string, add ...string) []string {
	seen := make(map[string]struct{}, len(existing)+len(add))
	out := make([]string, 0, len(existing)+len(add))
	for _, id := range existing {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range add {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// mergeMessages combines both storage shapes: dedupe by ID, order by the
// canonical instant (server time preferred over client clocks) and keep the
// newest `limit` entries in ascending display order.
func mergeMessages(limit int, batches ...[]models.Message) []models.Message {
	byID := make(map[string]models.Message)
	for _, batch := range batches {
		for _, msg := range batch {
			if _, ok := byID[msg.ID]; !ok {
				byID[msg.ID] = msg
			}
		}
	}
	out := make([]models.Message, 0, len(byID))
	for _, msg := range byID {
		out = append(out, msg)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := timeutil.Coalesce(out[i].Timestamp, out[i].CreatedAt)
		tj, _ := timeutil.Coalesce(out[j].Timestamp, out[j].CreatedAt)
		if ti.Equal(tj) {
			return out[i].ID < out[j].ID
		}
		return ti.Before(tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func decodeRoom(snap *firestore.DocumentSnapshot) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := snap.DataTo(&room); err != nil {
		return nil, fmt.Errorf("failed to decode chat room %s: %w", snap.Ref.ID, err)
	}
	room.ID = snap.Ref.ID
	if room.UnreadCount == nil {
		room.UnreadCount = map[string]int64{}
	}
	return &room, nil
}

func decodeMessage(snap *firestore.DocumentSnapshot) (*models.Message, error) {
	var msg models.Message
	if err := snap.DataTo(&msg); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", snap.Ref.ID, err)
	}
	msg.ID = snap.Ref.ID
	if msg.RoomID == "" {
		if parent := snap.Ref.Parent; parent != nil && parent.Parent != nil {
			msg.RoomID = parent.Parent.ID
		}
	}
	return &msg, nil
}
