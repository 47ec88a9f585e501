package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	config "github.com/expertlink/expert_marketplace/configs"
	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/notifications"
	"github.com/expertlink/expert_marketplace/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateBookingRequest struct {
	ServiceID          string `json:"service_id" validate:"required,uuid"`
	AvailabilitySlotID string `json:"availability_slot_id" validate:"required,uuid"`
	GuestEmail         string `json:"guest_email,omitempty" validate:"omitempty,email"`
	ClientNotes        string `json:"client_notes,omitempty"`
}

func platformFeePercent() float64 {
	if raw := config.Config("PLATFORM_FEE_PERCENT"); raw != "" {
		if pct, err := strconv.ParseFloat(raw, 64); err == nil && pct >= 0 && pct <= 100 {
			return pct
		}
	}
	return payments.DefaultPlatformFeePercent
}

// sessionDescription labels the vendor order; when the expert's name could
// not be loaded it falls back to the service name rather than rendering a
// dangling "Session with ".
func sessionDescription(expertName, serviceName string) string {
	if expertName == "" {
		return fmt.Sprintf("Session: %s", serviceName)
	}
	return fmt.Sprintf("Session with %s", expertName)
}

// callerIdentity resolves the optional JWT into the acting user, or nil for
// an anonymous caller.
func callerIdentity(c *fiber.Ctx) *models.User {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims := token.Claims.(jwt.MapClaims)
	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		return nil
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil
	}
	return &user
}

// CreateBooking runs the whole booking-and-payment sequence: claim the slot
// under a row lock, insert the pending booking and payment in the same
// transaction, then register the order with Cashfree and hand back the
// checkout session. A vendor failure after commit is compensated by failing
// the payment, cancelling the booking and releasing the slot.
func CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user := callerIdentity(c)
	if user == nil && req.GuestEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "An email address is required for guest bookings"})
	}

	customerEmail := req.GuestEmail
	if user != nil {
		customerEmail = user.Email
	}

	serviceID, _ := uuid.Parse(req.ServiceID)
	slotID, _ := uuid.Parse(req.AvailabilitySlotID)

	var service models.Service
	if err := database.DB.First(&service, "id = ? AND is_active = ?", serviceID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}

	var slot models.AvailabilitySlot
	if err := database.DB.First(&slot, "id = ?", slotID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability slot not found"})
	}
	if slot.ExpertID != service.ExpertID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Slot does not belong to this service's expert"})
	}
	if slot.StartTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This slot is in the past"})
	}

	feePercent := platformFeePercent()
	platformFee := payments.CalculatePlatformFee(service.Price, feePercent)
	expertEarnings := payments.CalculateExpertEarnings(service.Price, platformFee)
	orderID := payments.GenerateOrderID()

	var booking models.Booking
	var payment models.Payment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// The slot claim is the serialization point: two concurrent
		// bookings for the same slot collide here.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, "id = ?", slotID).Error; err != nil {
			return err
		}
		if slot.Status != "available" {
			return errors.New("this slot is no longer available")
		}
		slot.Status = "booked"
		if err := tx.Save(&slot).Error; err != nil {
			return err
		}

		booking = models.Booking{
			ExpertID:           service.ExpertID,
			ServiceID:          service.ID,
			AvailabilitySlotID: slot.ID,
			ScheduledAt:        slot.StartTime,
			DurationMinutes:    service.DurationMinutes,
			TotalAmount:        service.Price,
			Currency:           service.Currency,
			Status:             "pending",
		}
		if user != nil {
			booking.ClientID = &user.ID
			if req.ClientNotes != "" {
				booking.ClientNotes = &req.ClientNotes
			}
		} else {
			guestNote := fmt.Sprintf("Guest booking - Email: %s", req.GuestEmail)
			if req.ClientNotes != "" {
				guestNote = guestNote + "\n" + req.ClientNotes
			}
			booking.ClientNotes = &guestNote
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		payment = models.Payment{
			BookingID:       booking.ID,
			RecipientID:     service.ExpertID,
			Amount:          service.Price,
			Currency:        service.Currency,
			PlatformFee:     platformFee,
			ExpertEarnings:  expertEarnings,
			CashfreeOrderID: orderID,
			Status:          "pending",
		}
		if user != nil {
			payment.PayerID = &user.ID
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	customerID := "guest-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	customerName := customerEmail[:strings.Index(customerEmail+"@", "@")]
	customerPhone := "9999999999"
	if user != nil {
		customerID = user.ID.String()
		customerName = user.FullName
		if user.Phone != nil && *user.Phone != "" {
			customerPhone = *user.Phone
		}
	}

	var expert models.Expert
	if err := database.DB.Preload("User").First(&expert, "user_id = ?", service.ExpertID).Error; err != nil {
		log.Printf("🔥 Could not load expert %s for order labels: %v", service.ExpertID, err)
	}
	sessionLabel := sessionDescription(expert.User.FullName, service.Name)

	session, err := payments.NewClient().CreateOrder(payments.CreateOrderRequest{
		OrderID:       orderID,
		OrderAmount:   service.Price,
		OrderCurrency: service.Currency,
		Customer: payments.CustomerDetails{
			CustomerID:    customerID,
			CustomerName:  customerName,
			CustomerEmail: customerEmail,
			CustomerPhone: customerPhone,
		},
		ReturnURL: fmt.Sprintf("%s/booking/confirmation?orderId=%s", config.Config("APP_BASE_URL"), orderID),
		NotifyURL: fmt.Sprintf("%s/api/v1/payments/webhook", config.Config("API_BASE_URL")),
		CartItems: []payments.CartItem{{
			ItemID:                  service.ID.String(),
			ItemName:                service.Name,
			ItemDescription:         sessionLabel,
			ItemOriginalUnitPrice:   service.Price,
			ItemDiscountedUnitPrice: service.Price,
			ItemQuantity:            1,
			ItemCurrency:            service.Currency,
		}},
		OrderNote: "Payment for " + sessionLabel,
		OrderTags: map[string]string{
			"bookingId": booking.ID.String(),
			"expertId":  service.ExpertID.String(),
		},
	})
	if err != nil {
		log.Printf("🔥 Cashfree order creation failed for booking %s: %v", booking.ID, err)
		if compErr := compensateFailedOrder(&booking, &payment); compErr != nil {
			log.Printf("🔥 CRITICAL: failed to compensate booking %s: %v", booking.ID, compErr)
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment could not be initiated, please try again."})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking":            booking,
		"payment":            payment,
		"payment_session_id": session.PaymentSessionID,
		"order_id":           session.OrderID,
	})
}

// compensateFailedOrder unwinds a booking whose vendor order never came to
// exist: the payment fails, the booking is cancelled and the slot reopens.
func compensateFailedOrder(booking *models.Booking, payment *models.Payment) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(payment).Update("status", "failed").Error; err != nil {
			return err
		}
		reason := "Payment initiation failed"
		if err := tx.Model(booking).Updates(map[string]interface{}{
			"status":              "cancelled",
			"cancellation_reason": reason,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND status = ?", booking.AvailabilitySlotID, "booked").
			Update("status", "available").Error
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	clientID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("Expert.User").
		Preload("Service").
		Preload("AvailabilitySlot").
		Where("client_id = ?", clientID).
		Order("scheduled_at desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetExpertBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("Client").
		Preload("Service").
		Preload("AvailabilitySlot").
		Where("expert_id = ?", expertID).
		Order("scheduled_at desc").
		Find(&bookings)

	return c.JSON(bookings)
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func CancelBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	clientID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var req CancelBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.Preload("AvailabilitySlot").First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.ClientID == nil || *booking.ClientID != clientID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}
	if booking.Status != "pending" && booking.Status != "confirmed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only pending or confirmed bookings can be cancelled"})
	}
	if booking.AvailabilitySlot.StartTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot cancel a session that has already started"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		booking.Status = "cancelled"
		booking.CancellationReason = &req.Reason
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		return tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND status = ?", booking.AvailabilitySlotID, "booked").
			Update("status", "available").Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel booking"})
	}

	// A paid booking keeps its completed payment; refunds go through admin
	// review rather than happening automatically here.
	return c.JSON(fiber.Map{"message": "Booking cancelled. If you already paid, a refund request has been noted for review."})
}

type RescheduleBookingRequest struct {
	NewSlotID string `json:"new_slot_id" validate:"required,uuid"`
}

// Only confirmed bookings can move: a pending booking still has a pending
// payment attached, and settlement resolves that payment against the booking
// and slot it was created for.
func canReschedule(status string) bool {
	return status == "confirmed"
}

// RescheduleBooking moves a booking onto another open slot of the same
// expert. The old row stays as the tail of the reschedule chain.
func RescheduleBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	clientID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var req RescheduleBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	newSlotID, _ := uuid.Parse(req.NewSlotID)

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.ClientID == nil || *booking.ClientID != clientID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking"})
	}
	if !canReschedule(booking.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only confirmed bookings can be rescheduled"})
	}

	var newBooking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var newSlot models.AvailabilitySlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&newSlot, "id = ?", newSlotID).Error; err != nil {
			return errors.New("new slot not found")
		}
		if newSlot.ExpertID != booking.ExpertID {
			return errors.New("new slot belongs to a different expert")
		}
		if newSlot.Status != "available" || newSlot.StartTime.Before(time.Now()) {
			return errors.New("new slot is no longer available")
		}

		newSlot.Status = "booked"
		if err := tx.Save(&newSlot).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND status = ?", booking.AvailabilitySlotID, "booked").
			Update("status", "available").Error; err != nil {
			return err
		}

		priorID := booking.ID
		newBooking = models.Booking{
			ClientID:           booking.ClientID,
			ExpertID:           booking.ExpertID,
			ServiceID:          booking.ServiceID,
			AvailabilitySlotID: newSlot.ID,
			ScheduledAt:        newSlot.StartTime,
			DurationMinutes:    booking.DurationMinutes,
			TotalAmount:        booking.TotalAmount,
			Currency:           booking.Currency,
			Status:             "confirmed",
			ClientNotes:        booking.ClientNotes,
			RescheduledFrom:    &priorID,
		}
		if err := tx.Create(&newBooking).Error; err != nil {
			return err
		}

		booking.Status = "rescheduled"
		return tx.Save(&booking).Error
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	var expert models.Expert
	if err := database.DB.Preload("User").First(&expert, "user_id = ?", booking.ExpertID).Error; err == nil {
		go notifications.SendEmail(expert.User.FullName, expert.User.Email, "Booking Rescheduled",
			fmt.Sprintf("<h1>Booking Rescheduled</h1><p>A client moved their session to %s.</p>", newBooking.ScheduledAt.Format(time.RFC1123)))
		go notifications.Notify(expert.UserID, "booking", "Booking rescheduled",
			"A client moved their session to a new slot.", map[string]string{"booking_id": newBooking.ID.String()})
	}

	return c.JSON(fiber.Map{"message": "Booking rescheduled successfully", "booking": newBooking})
}

func MarkBookingAsComplete(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var booking models.Booking
	if err := database.DB.Preload("AvailabilitySlot").First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.ExpertID != expertID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the expert for this booking"})
	}
	if booking.Status != "confirmed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only confirmed bookings can be marked as complete"})
	}
	if booking.AvailabilitySlot.EndTime.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot mark a session as complete before it has ended"})
	}

	booking.Status = "completed"
	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete booking"})
	}

	if booking.ClientID != nil {
		go notifications.Notify(*booking.ClientID, "booking", "Session completed",
			"Your session is complete. You can now leave a review.", map[string]string{"booking_id": booking.ID.String()})
	}

	return c.JSON(fiber.Map{"message": "Booking marked as complete."})
}

type ExpertNotesRequest struct {
	Notes string `json:"notes" validate:"required,min=5"`
}

func SubmitExpertNotes(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	expertID, _ := uuid.Parse(claims["user_id"].(string))
	bookingID := c.Params("bookingId")

	var req ExpertNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.ExpertID != expertID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the expert for this booking"})
	}
	if booking.Status != "completed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Notes can only be added to completed bookings"})
	}

	booking.ExpertNotes = &req.Notes
	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save notes"})
	}

	return c.JSON(fiber.Map{"message": "Notes submitted successfully"})
}
