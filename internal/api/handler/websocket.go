package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/pkg/jwt"
	"github.com/qs3c/options_go_server/internal/pkg/ws"
)

type WebSocketHandler struct {
	hub       *ws.Hub
	jwtSecret string
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler Origin 校验复用 CORS 的放行名单，"*" 放行所有来源
func NewWebSocketHandler(hub *ws.Hub, jwtSecret string, corsCfg config.CORSConfig) *WebSocketHandler {
	allowAll := false
	allowed := make(map[string]struct{}, len(corsCfg.AllowedOrigins))
	for _, origin := range corsCfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// 非浏览器客户端（CLI、测试）没有 Origin 头
					return true
				}
				if allowAll {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Handle WebSocket 连接，预警触发等推送都走这条通道
// GET /api/v1/ws?token=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := jwt.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection for user %d: %v", claims.UserID, err)
		return
	}

	client := &ws.Client{
		UserID: claims.UserID,
		Conn:   conn,
	}
	h.hub.Register(client)
	go h.readLoop(client)
}

// readLoop 丢弃入站消息，只用于感知断开；推送全部由 hub 主动发起
func (h *WebSocketHandler) readLoop(client *ws.Client) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
