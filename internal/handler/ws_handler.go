/*
Package handler provides the HTTP handlers and routing for the chat server.

This file upgrades authenticated requests to WebSocket connections and
hands them to the realtime gateway. The bearer token is verified before
the upgrade; a bad or missing token refuses the connection outright and
no events are ever processed for it.
*/
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/theajstars/voyatek-assessment/internal/app/chat"
	"github.com/theajstars/voyatek-assessment/internal/pkg/auth/jwt"
	"github.com/theajstars/voyatek-assessment/internal/pkg/errs"
	"github.com/theajstars/voyatek-assessment/internal/pkg/limiter"
	"github.com/theajstars/voyatek-assessment/internal/pkg/logx"
	"github.com/theajstars/voyatek-assessment/internal/pkg/resp"
)

// HandleWebSocket authenticates the handshake, upgrades the connection
// and runs the client's read/write pumps until disconnect.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		tokenString := jwt.BearerToken(r)
		if tokenString == "" {
			logx.Warn("WebSocket connection rejected: Missing bearer token", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: Invalid token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := uuid.NewString()
		client := chat.NewClient(deps.Gateway, conn, connID, payload.UserID)

		go client.WritePump()

		deps.Gateway.Connect(connID, payload.UserID, client)

		logx.Info("WebSocket connection established", "conn_id", connID, "user_id", payload.UserID)

		client.ReadPump()
	}
}
