package live

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/dashboard"
	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/middleware"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// MessageType identifies a frame sent to dashboard clients.
type MessageType string

const (
	MessageSnapshot         MessageType = "snapshot"
	MessageAccessRestricted MessageType = "access_restricted"
	MessageError            MessageType = "error"
)

// Message is one frame on the live feed. Each snapshot carries the full
// filtered list, never a delta.
type Message struct {
	Type    MessageType        `json:"type"`
	Reports []*reports.Report  `json:"reports,omitempty"`
	Summary *dashboard.Summary `json:"summary,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Source opens live report subscriptions.
type Source interface {
	Subscribe(ctx context.Context) (*reports.Subscription, error)
}

// Handler streams report snapshots to teacher dashboards over WebSocket.
type Handler struct {
	upgrader websocket.Upgrader
	source   Source
	verifier identity.Verifier
	logger   *zap.Logger
}

func NewHandler(source Source, verifier identity.Verifier, allowedOrigin string, logger *zap.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		source:   source,
		verifier: verifier,
		logger:   logger,
	}
}

// Stream godoc
// @Summary Live dashboard feed
// @Description WebSocket stream of full report snapshots. Browsers pass the session token as ?token=.
// @Tags dashboard
// @Param token query string false "Session token"
// @Param search query string false "Substring of title or description"
// @Param category query string false "Category label or key, or All"
// @Param status query string false "Status label or key, or All"
// @Param classGroup query string false "Class group, or All"
// @Success 101
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /live [get]
func (h *Handler) Stream(c *gin.Context) {
	token, ok := middleware.WebSocketToken(c)
	if !ok {
		response.Unauthorized(c, "Authorization required", "AUTH_REQUIRED")
		return
	}
	principal, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
		return
	}
	if identity.ResolveRole(principal) != identity.RoleTeacher {
		response.AuthorizationError(c, "Teacher access required")
		return
	}

	filter, err := dashboard.ParseFilter(c.Query("search"), c.Query("category"), c.Query("status"), c.Query("classGroup"))
	if err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.source.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Failed to open live subscription", zap.Error(err))
		h.write(conn, Message{Type: MessageError, Error: "subscription unavailable"})
		return
	}
	defer sub.Close()

	h.logger.Info("Live dashboard connected", zap.String("uid", principal.UID))
	defer h.logger.Info("Live dashboard disconnected", zap.String("uid", principal.UID))

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, sub, filter)
}

// readPump drains client frames so pongs and close frames are processed.
func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, sub *reports.Subscription, filter dashboard.Filter) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if ev.Err != nil {
				if errors.Is(ev.Err, reports.ErrPermissionDenied) {
					h.write(conn, Message{Type: MessageAccessRestricted, Error: "access restricted"})
					return
				}
				h.logger.Warn("Live subscription error", zap.Error(ev.Err))
				if !h.write(conn, Message{Type: MessageError, Error: "snapshot unavailable"}) {
					return
				}
				continue
			}
			summary := dashboard.Summarize(ev.Reports, filter)
			if !h.write(conn, Message{Type: MessageSnapshot, Reports: filter.Apply(ev.Reports), Summary: &summary}) {
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, msg Message) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("Live write failed", zap.Error(err))
		return false
	}
	return true
}
