package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	config "github.com/expertlink/expert_marketplace/configs"
)

// ErrOrderNotFound means Cashfree has no record of the order id at all,
// distinct from an order that exists but has no payment attempts yet.
var ErrOrderNotFound = errors.New("cashfree order not found")

const (
	cashfreeSandboxURL    = "https://sandbox.cashfree.com/pg"
	cashfreeProductionURL = "https://api.cashfree.com/pg"
	cashfreeAPIVersion    = "2023-08-01"

	// DefaultPlatformFeePercent is the marketplace cut applied when no
	// PLATFORM_FEE_PERCENT override is configured.
	DefaultPlatformFeePercent = 10.0
)

// Order outcome as reported to callers of the verify endpoint. Success wins
// over everything, Pending over Failure, Failure covers the empty case too.
const (
	OrderStatusSuccess = "Success"
	OrderStatusPending = "Pending"
	OrderStatusFailure = "Failure"
)

type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type CartItem struct {
	ItemID                   string  `json:"item_id"`
	ItemName                 string  `json:"item_name"`
	ItemDescription          string  `json:"item_description,omitempty"`
	ItemOriginalUnitPrice    float64 `json:"item_original_unit_price"`
	ItemDiscountedUnitPrice  float64 `json:"item_discounted_unit_price"`
	ItemQuantity             int     `json:"item_quantity"`
	ItemCurrency             string  `json:"item_currency"`
}

type CreateOrderRequest struct {
	OrderID         string
	OrderAmount     float64
	OrderCurrency   string
	Customer        CustomerDetails
	ReturnURL       string
	NotifyURL       string
	PaymentMethods  string
	CartItems       []CartItem
	OrderNote       string
	OrderTags       map[string]string
}

// OrderSession is what the checkout widget needs to mount.
type OrderSession struct {
	PaymentSessionID string `json:"payment_session_id"`
	OrderID          string `json:"order_id"`
}

// OrderTransaction is one payment attempt against an order, as returned by
// GET /orders/{id}/payments.
type OrderTransaction struct {
	CFPaymentID     json.Number `json:"cf_payment_id"`
	OrderID         string      `json:"order_id"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentGroup    string      `json:"payment_group"`
	PaymentAmount   float64     `json:"payment_amount"`
	PaymentCurrency string      `json:"payment_currency"`
	PaymentTime     string      `json:"payment_time"`
	PaymentMessage  string      `json:"payment_message"`
	BankReference   string      `json:"bank_reference"`
}

type Client struct {
	appID      string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	baseURL := cashfreeSandboxURL
	if config.Config("CASHFREE_MODE") == "production" {
		baseURL = cashfreeProductionURL
	}

	return &Client{
		appID:      config.Config("CASHFREE_APP_ID"),
		secretKey:  config.Config("CASHFREE_SECRET_KEY"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", cashfreeAPIVersion)
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)
}

// CreateOrder registers the order with Cashfree and returns the hosted
// checkout session token for it.
func (c *Client) CreateOrder(orderReq CreateOrderRequest) (*OrderSession, error) {
	payload := map[string]interface{}{
		"order_id":       orderReq.OrderID,
		"order_amount":   orderReq.OrderAmount,
		"order_currency": orderReq.OrderCurrency,
		"customer_details": map[string]string{
			"customer_id":    orderReq.Customer.CustomerID,
			"customer_name":  orderReq.Customer.CustomerName,
			"customer_email": orderReq.Customer.CustomerEmail,
			"customer_phone": orderReq.Customer.CustomerPhone,
		},
		"order_meta": map[string]string{
			"return_url":      orderReq.ReturnURL,
			"notify_url":      orderReq.NotifyURL,
			"payment_methods": paymentMethodsOrDefault(orderReq.PaymentMethods),
		},
		"order_expiry_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	if len(orderReq.CartItems) > 0 {
		payload["cart_details"] = map[string]interface{}{"cart_items": orderReq.CartItems}
	}
	if orderReq.OrderNote != "" {
		payload["order_note"] = orderReq.OrderNote
	}
	if len(orderReq.OrderTags) > 0 {
		payload["order_tags"] = orderReq.OrderTags
	}

	body, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/orders", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cashfree create order failed: %s", string(respBody))
	}

	var session OrderSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	if session.PaymentSessionID == "" {
		return nil, fmt.Errorf("cashfree returned no payment session for order %s", orderReq.OrderID)
	}
	return &session, nil
}

// FetchOrderPayments lists every payment attempt recorded against an order.
// A fresh, untouched order legitimately has zero attempts.
func (c *Client) FetchOrderPayments(orderID string) ([]OrderTransaction, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/orders/%s/payments", c.baseURL, orderID), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cashfree fetch payments failed for order %s: %s", orderID, string(respBody))
	}

	var transactions []OrderTransaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// ClassifyTransactions reduces an order's payment attempts to a single
// outcome: any SUCCESS wins, otherwise any PENDING holds the order open,
// otherwise (including zero attempts) the order has failed.
func ClassifyTransactions(transactions []OrderTransaction) string {
	hasPending := false
	for _, txn := range transactions {
		switch txn.PaymentStatus {
		case "SUCCESS":
			return OrderStatusSuccess
		case "PENDING":
			hasPending = true
		}
	}
	if hasPending {
		return OrderStatusPending
	}
	return OrderStatusFailure
}

// SucceededTransaction returns the first SUCCESS attempt, if any.
func SucceededTransaction(transactions []OrderTransaction) *OrderTransaction {
	for i := range transactions {
		if transactions[i].PaymentStatus == "SUCCESS" {
			return &transactions[i]
		}
	}
	return nil
}

const orderIDSuffixLength = 9
const orderIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateOrderID builds a vendor order id from the current time in
// milliseconds plus a random base36 suffix. The top-level rand source is
// locked internally, so concurrent bookings can call this freely.
func GenerateOrderID() string {
	b := make([]byte, orderIDSuffixLength)
	for i := range b {
		b[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
	}
	return fmt.Sprintf("order_%d_%s", time.Now().UnixMilli(), string(b))
}

// CalculatePlatformFee takes the marketplace cut of amount at feePercent,
// rounded to two decimals.
func CalculatePlatformFee(amount, feePercent float64) float64 {
	return math.Round(amount*feePercent/100*100) / 100
}

// CalculateExpertEarnings is the remainder after the platform fee.
func CalculateExpertEarnings(amount, platformFee float64) float64 {
	return math.Round((amount-platformFee)*100) / 100
}

func paymentMethodsOrDefault(methods string) string {
	if methods == "" {
		return "cc,dc,upi,nb,wallet"
	}
	return methods
}
