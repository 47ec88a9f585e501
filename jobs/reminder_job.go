package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/notifications"
	"github.com/expertlink/expert_marketplace/utils"
)

func SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingBookings []models.Booking

	err := database.DB.
		Preload("Client").
		Preload("Expert.User").
		Preload("Service").
		Preload("AvailabilitySlot").
		Where("bookings.status = ? AND availability_slots.start_time BETWEEN ? AND ?", "confirmed", lowerBound, upperBound).
		Joins("JOIN availability_slots on bookings.availability_slot_id = availability_slots.id").
		Find(&upcomingBookings).Error

	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	if len(upcomingBookings) == 0 {
		return
	}

	for _, booking := range upcomingBookings {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		meetingLine := ""
		if booking.MeetingURL != nil {
			meetingLine = fmt.Sprintf("<p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>", *booking.MeetingURL)
		}

		emailSubject := "Reminder: Your Session Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Session Reminder</h1><p>Hi there,</p><p>Your <b>%s</b> session is scheduled to start in one hour at %s.</p>%s",
			booking.Service.Name,
			booking.AvailabilitySlot.StartTime.Format(time.Kitchen),
			meetingLine,
		)

		expertUser := booking.Expert.User
		go notifications.SendEmail(expertUser.FullName, expertUser.Email, emailSubject, emailBody)

		if booking.Client != nil {
			go notifications.SendEmail(booking.Client.FullName, booking.Client.Email, emailSubject, emailBody)
		} else if email := utils.GuestEmailFromNotes(booking.ClientNotes); email != "" {
			go notifications.SendEmail("there", email, emailSubject, emailBody)
		}
	}
}
