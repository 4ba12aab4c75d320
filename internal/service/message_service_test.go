package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
)

type stubMessageRepo struct {
	messages []models.Message
}

func (r *stubMessageRepo) Create(_ context.Context, message *models.Message) error {
	message.ID = uint(len(r.messages) + 1)
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *stubMessageRepo) ListConversation(_ context.Context, userA, userB string, _ int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if (m.SenderUsername == userA && m.RecipientUsername == userB) ||
			(m.SenderUsername == userB && m.RecipientUsername == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) MarkConversationRead(_ context.Context, recipient, sender string) error {
	for i, m := range r.messages {
		if m.RecipientUsername == recipient && m.SenderUsername == sender {
			r.messages[i].IsRead = true
		}
	}
	return nil
}

func (r *stubMessageRepo) UnreadCount(_ context.Context, recipient string) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.RecipientUsername == recipient && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func newTestMessageService(repo *stubMessageRepo) MessageService {
	return NewMessageService(repo, nil, "", nil, validator.New(), zerolog.Nop())
}

func TestSendStripsMarkup(t *testing.T) {
	repo := &stubMessageRepo{}
	svc := newTestMessageService(repo)

	sent, err := svc.Send(context.Background(), "tpo_admin", "tpo", dto.SendMessageRequest{
		Recipient: "priya",
		Content:   "Hello <b>Priya</b>, round details attached.",
	})
	require.NoError(t, err)
	require.Equal(t, "Hello Priya, round details attached.", sent.Content)
	require.Equal(t, "Hello Priya, round details attached.", repo.messages[0].Content)
	require.Equal(t, "tpo", repo.messages[0].SenderRole)
}

func TestSendRejectsMarkupOnlyContent(t *testing.T) {
	svc := newTestMessageService(&stubMessageRepo{})

	_, err := svc.Send(context.Background(), "mallory", "student", dto.SendMessageRequest{
		Recipient: "priya",
		Content:   "<script>alert(1)</script>",
	})
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendValidatesRecipient(t *testing.T) {
	svc := newTestMessageService(&stubMessageRepo{})

	_, err := svc.Send(context.Background(), "priya", "student", dto.SendMessageRequest{
		Recipient: "x",
		Content:   "hi",
	})
	require.Error(t, err)
}

func TestConversationAndUnread(t *testing.T) {
	repo := &stubMessageRepo{}
	svc := newTestMessageService(repo)

	_, err := svc.Send(context.Background(), "priya", "student", dto.SendMessageRequest{Recipient: "tpo_admin", Content: "Is the Acme round confirmed?"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "tpo_admin", "tpo", dto.SendMessageRequest{Recipient: "priya", Content: "Yes, Friday 10am."})
	require.NoError(t, err)

	conversation, err := svc.Conversation(context.Background(), "priya", "tpo_admin", 0)
	require.NoError(t, err)
	require.Len(t, conversation, 2)

	unread, err := svc.UnreadCount(context.Background(), "priya")
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	require.NoError(t, svc.MarkRead(context.Background(), "priya", "tpo_admin"))
	unread, err = svc.UnreadCount(context.Background(), "priya")
	require.NoError(t, err)
	require.EqualValues(t, 0, unread)
}
