package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soloura-backend/internal/middleware"
	"github.com/AnshRaj112/soloura-backend/internal/services"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = 60 * time.Second
)

var authUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS for WebSocket is handled at the HTTP layer already.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AuthStream handles GET /ws/auth, the auth-state subscription. The first message is
// the caller's current identity; every later transition follows until either side
// closes. A sign-out arrives with a null user.
func (h *AuthHandler) AuthStream(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		// Browser WebSocket clients cannot set headers.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, "missing id token", http.StatusUnauthorized)
		return
	}
	id, err := h.identity.Tokens().Verify(token)
	if err != nil {
		http.Error(w, "invalid id token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := h.identity.Bus().Subscribe(ctx, id.UserID)
	if err != nil {
		h.logger.Error("auth subscription failed", zap.String("user_id", id.UserID), zap.Error(err))
		http.Error(w, "auth events unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := authUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Reader: only control frames are expected. Any error ends the stream.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(ev services.AuthEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(ev)
	}

	if err := write(services.AuthEvent{Type: services.EventInitial, User: id, At: time.Now().UTC()}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := write(ev); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
