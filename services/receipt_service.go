package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/expertlink/expert_marketplace/configs"
	"github.com/expertlink/expert_marketplace/database"
	"github.com/expertlink/expert_marketplace/models"
	"github.com/expertlink/expert_marketplace/utils"
	"github.com/google/uuid"
)

// GenerateReceipt renders a PDF receipt for a completed payment, uploads it
// and stores the URL on the payment row. Safe to re-run: an existing receipt
// is left alone.
func GenerateReceipt(paymentID uuid.UUID) error {
	var payment models.Payment
	if err := database.DB.
		Preload("Booking.Client").
		Preload("Booking.Expert.User").
		Preload("Booking.Service").
		First(&payment, "id = ?", paymentID).Error; err != nil {
		return err
	}
	if payment.Status != "completed" {
		return fmt.Errorf("payment %s is not completed, no receipt to issue", paymentID)
	}
	if payment.ReceiptURL != nil {
		return nil
	}

	htmlData, err := generateReceiptHTML(&payment)
	if err != nil {
		return fmt.Errorf("failed to render receipt HTML: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return fmt.Errorf("failed to print receipt PDF: %w", err)
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, payment.CashfreeOrderID)
	if err != nil {
		return fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := database.DB.Model(&payment).Update("receipt_url", uploadURL).Error; err != nil {
		return err
	}
	log.Printf("✅ Generated receipt for order %s.", payment.CashfreeOrderID)
	return nil
}

func generateReceiptHTML(payment *models.Payment) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	payerName := "Guest"
	if payment.Booking.Client != nil {
		payerName = payment.Booking.Client.FullName
	} else if email := utils.GuestEmailFromNotes(payment.Booking.ClientNotes); email != "" {
		payerName = email
	}

	processedAt := time.Now()
	if payment.ProcessedAt != nil {
		processedAt = *payment.ProcessedAt
	}

	data := struct {
		OrderID     string
		PayerName   string
		ExpertName  string
		ServiceName string
		SessionDate string
		Amount      string
		Currency    string
		PaidOn      string
	}{
		OrderID:     payment.CashfreeOrderID,
		PayerName:   payerName,
		ExpertName:  payment.Booking.Expert.User.FullName,
		ServiceName: payment.Booking.Service.Name,
		SessionDate: payment.Booking.ScheduledAt.Format("January 2, 2006 at 3:04 PM"),
		Amount:      fmt.Sprintf("%.2f", payment.Amount),
		Currency:    payment.Currency,
		PaidOn:      processedAt.Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, orderID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s", orderID),
		Folder:       "expert_marketplace_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
