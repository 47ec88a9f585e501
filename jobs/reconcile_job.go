package jobs

import (
	"log"
	"time"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/payments"
	"github.com/expertlink/expert_marketplace/services"
)

// Payments older than this and still pending are assumed to have lost their
// verify callback (closed tab, dead webhook) and get re-checked at the source.
const stalePendingAge = 30 * time.Minute

func ReconcilePendingPayments() {
	log.Println("Running job: ReconcilePendingPayments...")

	cutoff := time.Now().Add(-stalePendingAge)

	var stalePayments []models.Payment
	err := database.DB.
		Where("status = ? AND created_at < ?", "pending", cutoff).
		Order("created_at asc").
		Limit(50).
		Find(&stalePayments).Error
	if err != nil {
		log.Printf("Error fetching stale pending payments: %v", err)
		return
	}

	if len(stalePayments) == 0 {
		return
	}

	for _, payment := range stalePayments {
		outcome, _, err := services.SettleOrder(payment.CashfreeOrderID)
		if err != nil {
			log.Printf("🔥 Reconciliation failed for order %s: %v", payment.CashfreeOrderID, err)
			continue
		}
		if outcome != payments.OrderStatusPending {
			log.Printf("✅ Reconciled order %s to %s.", payment.CashfreeOrderID, outcome)
		}
	}
}
