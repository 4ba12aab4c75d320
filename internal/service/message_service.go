package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/prepnexus/prepnexus-api/internal/dto"
	"github.com/prepnexus/prepnexus-api/internal/models"
	"github.com/prepnexus/prepnexus-api/internal/observability"
	"github.com/prepnexus/prepnexus-api/internal/repository"
)

const messageSendBufferSize = 32

// ErrEmptyMessage means the content was blank after sanitization.
var ErrEmptyMessage = errors.New("message content empty after sanitization")

// MessageConnectionOptions wraps metadata extracted during the HTTP upgrade.
type MessageConnectionOptions struct {
	Username      string
	Role          string
	CorrelationID string
	Context       context.Context
}

// MessageService handles student-TPO direct messaging: persistence, REST
// reads, and realtime push over websockets with cross-node fanout.
type MessageService interface {
	Send(ctx context.Context, sender, senderRole string, req dto.SendMessageRequest) (dto.MessageResponse, error)
	Conversation(ctx context.Context, username, other string, limit int) ([]dto.MessageResponse, error)
	MarkRead(ctx context.Context, username, other string) error
	UnreadCount(ctx context.Context, username string) (int64, error)
	ServeConnection(conn *websocket.Conn, opts MessageConnectionOptions)
	Start(ctx context.Context)
}

type messageService struct {
	repo        repository.MessageRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *messageHub
	nodeID      string
}

// messageHub indexes active websocket clients by username.
type messageHub struct {
	mu      sync.RWMutex
	clients map[string]map[*messageClient]struct{}
	log     zerolog.Logger
}

type messageClient struct {
	conn    *websocket.Conn
	send    chan dto.MessageResponse
	options MessageConnectionOptions
	service *messageService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

// messageEvent is the fanout payload; Source carries the node ID so a node
// ignores its own events coming back around.
type messageEvent struct {
	Source  string              `json:"source"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

// NewMessageService creates the messaging service instance.
func NewMessageService(repo repository.MessageRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) MessageService {
	sanitizer := bluemonday.StrictPolicy()

	hub := &messageHub{
		clients: make(map[string]map[*messageClient]struct{}),
		log:     logger.With().Str("component", "message_hub").Logger(),
	}

	tracer := otel.Tracer("github.com/prepnexus/prepnexus-api/internal/service/message")

	streamChannel := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":messages"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".messages"
	}

	return &messageService{
		repo:        repo,
		redis:       redisClient,
		redisStream: streamChannel,
		nats:        natsConn,
		natsSubject: natsSubject,
		validator:   validate,
		logger:      logger.With().Str("component", "message_service").Logger(),
		tracer:      tracer,
		sanitizer:   sanitizer,
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *messageService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *messageService) Send(ctx context.Context, sender, senderRole string, req dto.SendMessageRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if clean == "" {
		return dto.MessageResponse{}, ErrEmptyMessage
	}

	spanCtx, span := s.tracer.Start(ctx, "message.send", trace.WithAttributes(
		attribute.String("message.sender", sender),
		attribute.String("message.recipient", req.Recipient),
	))
	defer span.End()

	model := models.Message{
		SenderUsername:    sender,
		SenderRole:        senderRole,
		RecipientUsername: req.Recipient,
		Content:           clean,
	}
	if err := s.repo.Create(spanCtx, &model); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, fmt.Errorf("store message: %w", err)
	}

	response := dto.NewMessageResponse(model)
	s.deliverLocal(response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish message event")
	}

	observability.MessagesSent().WithLabelValues(senderRole).Inc()
	return response, nil
}

func (s *messageService) Conversation(ctx context.Context, username, other string, limit int) ([]dto.MessageResponse, error) {
	messages, err := s.repo.ListConversation(ctx, username, other, limit)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return dto.NewMessageResponses(messages), nil
}

func (s *messageService) MarkRead(ctx context.Context, username, other string) error {
	return s.repo.MarkConversationRead(ctx, username, other)
}

func (s *messageService) UnreadCount(ctx context.Context, username string) (int64, error) {
	return s.repo.UnreadCount(ctx, username)
}

func (s *messageService) ServeConnection(conn *websocket.Conn, opts MessageConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &messageClient{
		conn:    conn,
		send:    make(chan dto.MessageResponse, messageSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.MessageConnections().Inc()

	go client.writer()
	client.reader()
}

// deliverLocal pushes to the recipient's sockets and echoes to the sender's.
func (s *messageService) deliverLocal(message dto.MessageResponse) {
	s.hub.push(message.Recipient, message)
	if message.Sender != message.Recipient {
		s.hub.push(message.Sender, message)
	}
}

func (s *messageService) publish(ctx context.Context, message dto.MessageResponse) error {
	event := messageEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *messageService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("message redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *messageService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "prepnexus-messages", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats message subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain nats message subscription")
		}
	}()
}

func (s *messageService) handleEvent(data []byte) {
	var event messageEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid message event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.deliverLocal(event.Message)
}

func (h *messageHub) register(client *messageClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	username := client.options.Username
	if _, exists := h.clients[username]; !exists {
		h.clients[username] = make(map[*messageClient]struct{})
	}
	h.clients[username][client] = struct{}{}
	h.log.Debug().Str("username", username).Msg("message client connected")
}

func (h *messageHub) unregister(client *messageClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	username := client.options.Username
	if clients, ok := h.clients[username]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, username)
		}
	}
	h.log.Debug().Str("username", username).Msg("message client disconnected")
}

func (h *messageHub) push(username string, message dto.MessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[username] {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Str("username", username).Msg("dropping message for slow client")
		}
	}
}

func (c *messageClient) reader() {
	defer c.close()

	connCtx := c.baseCtx
	for {
		var payload dto.SendMessageRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("message read loop ended")
			return
		}

		if _, err := c.service.Send(connCtx, c.options.Username, c.options.Role, payload); err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process inbound message")
		}
	}
}

func (c *messageClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("message write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("message ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *messageClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
