package realtime

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"skycarry/internal/models"
	"skycarry/internal/modules/messages"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware on the REST
	// surface; browsers cannot set Origin-free websocket requests anyway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated clients onto the hub.
type Handler struct {
	hub       *Hub
	msgSvc    messages.ServiceInterface
	jwtSecret string
}

func NewHandler(hub *Hub, msgSvc messages.ServiceInterface, jwtSecret string) *Handler {
	return &Handler{hub: hub, msgSvc: msgSvc, jwtSecret: jwtSecret}
}

// Serve handles GET /ws?token=<jwt>. Browsers cannot set an Authorization
// header on a websocket dial, so the access token travels as a query
// parameter here.
func (h *Handler) Serve(c echo.Context) error {
	tokenString := c.QueryParam("token")
	if tokenString == "" {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing token"})
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or expired JWT"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		id:     uuid.NewString(),
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan []byte, 32),
		hub:    h.hub,
		msgSvc: h.msgSvc,
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}
