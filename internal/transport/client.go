// Package transport maintains the push channel to the backend: a
// websocket connection that is redialed forever on a fixed delay.
// Consumers never see the socket, only Connected/Disconnected/Message
// events on the broker — reconnection policy lives entirely here.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rcastell/wheelhouse/internal/log"
	"github.com/rcastell/wheelhouse/internal/pubsub"
	"github.com/rcastell/wheelhouse/internal/tracing"
)

const (
	defaultRetryDelay = 2 * time.Second
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 10 * time.Second
)

// NoticeProjectsChanged invalidates the cached project directory.
const NoticeProjectsChanged = "projects_changed"

// EventKind discriminates push-channel events.
type EventKind int

const (
	Connected EventKind = iota
	Disconnected
	Message
)

func (k EventKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Message:
		return "message"
	default:
		return "unknown"
	}
}

// Notice is one backend push message. The payload is carried opaquely;
// the shell only dispatches on the type.
type Notice struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Event is one push-channel occurrence. Notice is zero unless Kind is
// Message.
type Event struct {
	Kind   EventKind
	Notice Notice
}

// Client owns the websocket lifecycle.
type Client struct {
	url        string
	sessionID  string
	broker     *pubsub.Broker[Event]
	retryDelay time.Duration
	tracer     trace.Tracer
}

// NewClient creates a client for the push channel at url. Each client
// carries a fresh session id for the life of the process. A nil tracer
// disables spans.
func NewClient(url string, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("transport")
	}
	return &Client{
		url:        url,
		sessionID:  uuid.NewString(),
		broker:     pubsub.NewBroker[Event](),
		retryDelay: defaultRetryDelay,
		tracer:     tracer,
	}
}

// Broker exposes the event stream for subscription.
func (c *Client) Broker() *pubsub.Broker[Event] {
	return c.broker
}

// SessionID returns the per-process session identifier.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Start runs the connect loop until ctx is cancelled. Callers run it in
// a goroutine; connection state reaches them through the broker, never a
// return value.
func (c *Client) Start(ctx context.Context) {
	log.Info(log.CatTransport, "Push channel starting", "url", c.url, "session", c.sessionID)
	for {
		if ctx.Err() != nil {
			log.Info(log.CatTransport, "Push channel stopped")
			return
		}
		if err := c.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info(log.CatTransport, "Push channel stopped")
				return
			}
			log.Warn(log.CatTransport, "Push channel session ended, reconnecting", "error", err.Error())
			select {
			case <-ctx.Done():
				log.Info(log.CatTransport, "Push channel stopped")
				return
			case <-time.After(c.retryDelay):
			}
		}
	}
}

// runSession dials once and pumps messages until the connection dies. The
// span covers the whole attempt, so outages show up as short error spans
// and healthy sessions as long ones.
func (c *Client) runSession(ctx context.Context) (err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanTransportSession,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrSessionID, c.sessionID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	header := http.Header{}
	header.Set("X-Client-Session", c.sessionID)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var writeMu sync.Mutex
	if err := c.sendHello(conn, &writeMu); err != nil {
		return err
	}

	c.broker.Publish(pubsub.CreatedEvent, Event{Kind: Connected})
	defer c.broker.Publish(pubsub.DeletedEvent, Event{Kind: Disconnected})
	log.Info(log.CatTransport, "Push channel connected", "session", c.sessionID)

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go heartbeatLoop(heartbeatCtx, conn, &writeMu)

	// Closing the connection is the only way to unblock ReadMessage when
	// the shell shuts down mid-session.
	go func() {
		<-heartbeatCtx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read push message: %w", err)
		}

		var notice Notice
		if err := json.Unmarshal(data, &notice); err != nil {
			log.ErrorErr(log.CatTransport, "Failed to decode push message", err)
			continue
		}
		span.AddEvent(tracing.EventNoticeReceived,
			trace.WithAttributes(attribute.String(tracing.AttrNoticeType, notice.Type)),
		)
		c.broker.Publish(pubsub.UpdatedEvent, Event{Kind: Message, Notice: notice})
	}
}

// sendHello registers the session with the backend.
func (c *Client) sendHello(conn *websocket.Conn, writeMu *sync.Mutex) error {
	payload := map[string]any{
		"type":       "hello",
		"session_id": c.sessionID,
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}
	return nil
}

// heartbeatLoop pings until the session context is cancelled or a write
// fails. A failed ping lets the read loop discover the dead connection.
func heartbeatLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			writeMu.Unlock()
			if err != nil {
				log.ErrorErr(log.CatTransport, "Heartbeat failed", err)
				return
			}
		}
	}
}
