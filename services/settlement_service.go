package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/notifications"
	"github.com/expertlink/expert_marketplace/payments"
	"github.com/expertlink/expert_marketplace/utils"
	"gorm.io/gorm"
)

// SettleOrder is the one place a payment leaves the pending state. It asks
// Cashfree for the order's transactions, classifies them, and applies the
// outcome. Payments already in a terminal state are returned as-is, so the
// verify endpoint, the webhook and the reconciliation job can all call this
// for the same order without double-applying anything.
func SettleOrder(orderID string) (string, *models.Payment, error) {
	var payment models.Payment
	if err := database.DB.Preload("Booking").First(&payment, "cashfree_order_id = ?", orderID).Error; err != nil {
		return "", nil, fmt.Errorf("payment for order %s not found: %w", orderID, err)
	}
	if payment.Status != "pending" {
		return statusLabel(payment.Status), &payment, nil
	}

	txns, err := payments.NewClient().FetchOrderPayments(orderID)
	if errors.Is(err, payments.ErrOrderNotFound) {
		// The vendor has no record of the order (typically a crash between
		// our commit and the order registration). Nothing can ever pay it,
		// so it fails closed: payment failed, booking cancelled, slot freed.
		log.Printf("Order %s unknown to Cashfree, failing it closed.", orderID)
		if err := applyFailure(&payment); err != nil {
			return "", nil, err
		}
		return payments.OrderStatusFailure, &payment, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("could not fetch payments for order %s: %w", orderID, err)
	}

	outcome := payments.ClassifyTransactions(txns)
	switch outcome {
	case payments.OrderStatusSuccess:
		if err := applySuccess(&payment, payments.SucceededTransaction(txns)); err != nil {
			return "", nil, err
		}
	case payments.OrderStatusFailure:
		if err := applyFailure(&payment); err != nil {
			return "", nil, err
		}
	}
	return outcome, &payment, nil
}

func statusLabel(paymentStatus string) string {
	switch paymentStatus {
	case "completed":
		return payments.OrderStatusSuccess
	case "failed", "refunded":
		return payments.OrderStatusFailure
	default:
		return payments.OrderStatusPending
	}
}

// applySuccess confirms the booking and credits the expert in the same
// transaction that completes the payment.
func applySuccess(payment *models.Payment, txn *payments.OrderTransaction) error {
	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		payment.Status = "completed"
		payment.ProcessedAt = &now
		if txn != nil {
			cfID := txn.CFPaymentID.String()
			payment.CashfreePaymentID = &cfID
			if txn.PaymentGroup != "" {
				payment.PaymentMethod = &txn.PaymentGroup
			}
		}
		if err := tx.Save(payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", payment.BookingID, "pending").
			Update("status", "confirmed").Error; err != nil {
			return err
		}
		return tx.Model(&models.Expert{}).
			Where("user_id = ?", payment.RecipientID).
			Updates(map[string]interface{}{
				"total_earnings": gorm.Expr("total_earnings + ?", payment.ExpertEarnings),
				"total_sessions": gorm.Expr("total_sessions + 1"),
			}).Error
	})
	if err != nil {
		return fmt.Errorf("could not complete payment %s: %w", payment.ID, err)
	}

	go notifyPaymentSuccess(payment)
	go func() {
		if err := GenerateReceipt(payment.ID); err != nil {
			log.Printf("🔥 Receipt generation failed for payment %s: %v", payment.ID, err)
		}
	}()
	return nil
}

// applyFailure fails the payment, cancels the booking and reopens the slot.
func applyFailure(payment *models.Payment) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		payment.Status = "failed"
		if err := tx.Save(payment).Error; err != nil {
			return err
		}
		reason := "Payment failed"
		if err := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", payment.BookingID, "pending").
			Updates(map[string]interface{}{
				"status":              "cancelled",
				"cancellation_reason": reason,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND status = ?", payment.Booking.AvailabilitySlotID, "booked").
			Update("status", "available").Error
	})
	if err != nil {
		return fmt.Errorf("could not fail payment %s: %w", payment.ID, err)
	}
	return nil
}

func notifyPaymentSuccess(payment *models.Payment) {
	var booking models.Booking
	if err := database.DB.Preload("Client").Preload("Expert.User").Preload("Service").
		First(&booking, "id = ?", payment.BookingID).Error; err != nil {
		log.Printf("🔥 Could not load booking %s for confirmation emails: %v", payment.BookingID, err)
		return
	}

	when := booking.ScheduledAt.Format(time.RFC1123)
	expertUser := booking.Expert.User

	notifications.SendEmail(expertUser.FullName, expertUser.Email, "New Booking Confirmed",
		fmt.Sprintf("<h1>New Booking</h1><p>You have a confirmed session for <b>%s</b> on %s.</p>", booking.Service.Name, when))
	notifications.Notify(booking.ExpertID, "booking", "New booking confirmed",
		fmt.Sprintf("A session for %s was booked for %s.", booking.Service.Name, when),
		map[string]string{"booking_id": booking.ID.String()})

	if booking.Client != nil {
		notifications.SendEmail(booking.Client.FullName, booking.Client.Email, "Booking Confirmed",
			fmt.Sprintf("<h1>You're booked!</h1><p>Your session for <b>%s</b> with %s is confirmed for %s.</p>",
				booking.Service.Name, expertUser.FullName, when))
		notifications.Notify(*booking.ClientID, "booking", "Booking confirmed",
			fmt.Sprintf("Your session with %s is confirmed for %s.", expertUser.FullName, when),
			map[string]string{"booking_id": booking.ID.String()})
	} else if email := utils.GuestEmailFromNotes(booking.ClientNotes); email != "" {
		notifications.SendEmail("there", email, "Booking Confirmed",
			fmt.Sprintf("<h1>You're booked!</h1><p>Your session for <b>%s</b> with %s is confirmed for %s.</p>",
				booking.Service.Name, expertUser.FullName, when))
	}
}
