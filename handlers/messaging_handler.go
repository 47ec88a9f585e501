package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	configs "github.com/expertlink/expert_marketplace/configs"
	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/notifications"
	"github.com/expertlink/expert_marketplace/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Content     string `json:"content" validate:"required,min=1,max=5000"`
	Subject     string `json:"subject,omitempty" validate:"omitempty,max=255"`
	BookingID   string `json:"booking_id,omitempty" validate:"omitempty,uuid"`
}

// SendMessage persists the message, pushes it to the recipient's live
// connection if they have one, and drops a notification either way.
func SendMessage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	senderID, _ := uuid.Parse(claims["user_id"].(string))

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	recipientID, _ := uuid.Parse(req.RecipientID)

	if recipientID == senderID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot message yourself"})
	}

	var recipient models.User
	if err := database.DB.First(&recipient, "id = ? AND is_active = ?", recipientID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipient not found"})
	}

	message := models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     req.Content,
	}
	if req.Subject != "" {
		message.Subject = &req.Subject
	}
	if req.BookingID != "" {
		bookingID, _ := uuid.Parse(req.BookingID)
		var booking models.Booking
		if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
		isParticipant := booking.ExpertID == senderID || (booking.ClientID != nil && *booking.ClientID == senderID)
		if !isParticipant {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not part of this booking"})
		}
		message.BookingID = &bookingID
	}

	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send message"})
	}
	database.DB.Preload("Sender").First(&message, "id = ?", message.ID)

	websocket.Broadcast <- &message
	go notifications.Notify(recipientID, "message", "New message",
		fmt.Sprintf("You have a new message from %s.", message.Sender.FullName),
		map[string]string{"message_id": message.ID.String(), "sender_id": senderID.String()})

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversation pages through the two-way thread between the caller and
// another user, oldest first.
func GetConversation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	otherID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	offset := (page - 1) * pageSize

	var messages []models.Message
	if err := database.DB.
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at asc").
		Limit(pageSize).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}

	return c.JSON(messages)
}

// GetBookingMessages lists the thread attached to one booking, visible only
// to its client and expert.
func GetBookingMessages(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	isParticipant := booking.ExpertID == userID || (booking.ClientID != nil && *booking.ClientID == userID)
	if !isParticipant {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not part of this booking"})
	}

	var messages []models.Message
	database.DB.
		Preload("Sender").
		Where("booking_id = ?", booking.ID).
		Order("created_at asc").
		Find(&messages)

	return c.JSON(messages)
}

// GetInbox lists the caller's received messages with an unread count.
func GetInbox(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	offset := (page - 1) * pageSize

	var messages []models.Message
	database.DB.
		Preload("Sender").
		Where("recipient_id = ?", userID).
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&messages)

	var unread int64
	database.DB.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&unread)

	return c.JSON(fiber.Map{"messages": messages, "unread_count": unread})
}

func MarkMessageAsRead(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	messageID := c.Params("messageId")

	result := database.DB.Model(&models.Message{}).
		Where("id = ? AND recipient_id = ?", messageID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update message"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}

	return c.JSON(fiber.Map{"message": "Message marked as read"})
}

// ServeWs holds the recipient side of live message delivery. The client
// authenticates with its JWT as the first frame, then just listens; sending
// goes through the REST endpoint so every message is validated and persisted
// the same way.
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(configs.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
