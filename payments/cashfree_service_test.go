package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestClassifyTransactions(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"no transactions", nil, OrderStatusFailure},
		{"single success", []string{"SUCCESS"}, OrderStatusSuccess},
		{"success among failures", []string{"FAILED", "SUCCESS", "USER_DROPPED"}, OrderStatusSuccess},
		{"success and pending", []string{"PENDING", "SUCCESS"}, OrderStatusSuccess},
		{"pending only", []string{"PENDING"}, OrderStatusPending},
		{"pending among failures", []string{"FAILED", "PENDING", "FAILED"}, OrderStatusPending},
		{"failures only", []string{"FAILED", "USER_DROPPED"}, OrderStatusFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var transactions []OrderTransaction
			for _, status := range tc.statuses {
				transactions = append(transactions, OrderTransaction{PaymentStatus: status})
			}
			if got := ClassifyTransactions(transactions); got != tc.want {
				t.Errorf("ClassifyTransactions(%v) = %s, want %s", tc.statuses, got, tc.want)
			}
		})
	}
}

func TestSucceededTransaction(t *testing.T) {
	transactions := []OrderTransaction{
		{CFPaymentID: "1", PaymentStatus: "FAILED"},
		{CFPaymentID: "2", PaymentStatus: "SUCCESS"},
		{CFPaymentID: "3", PaymentStatus: "SUCCESS"},
	}
	txn := SucceededTransaction(transactions)
	if txn == nil || txn.CFPaymentID != "2" {
		t.Fatalf("expected first succeeded transaction 2, got %+v", txn)
	}
	if SucceededTransaction(nil) != nil {
		t.Error("expected nil for empty transaction list")
	}
}

func TestCalculatePlatformFee(t *testing.T) {
	// The documented example: 1500 at 10% splits 150 / 1350.
	fee := CalculatePlatformFee(1500, 10)
	if fee != 150 {
		t.Errorf("CalculatePlatformFee(1500, 10) = %v, want 150", fee)
	}
	if earnings := CalculateExpertEarnings(1500, fee); earnings != 1350 {
		t.Errorf("CalculateExpertEarnings(1500, 150) = %v, want 1350", earnings)
	}
}

func TestFeeSplitInvariant(t *testing.T) {
	amounts := []float64{0, 0.01, 1, 99.99, 100, 1234.56, 1500, 99999.99}
	percents := []float64{0, 1, 2.5, 10, 33.33, 50, 100}

	for _, amount := range amounts {
		for _, pct := range percents {
			fee := CalculatePlatformFee(amount, pct)
			earnings := CalculateExpertEarnings(amount, fee)

			if fee < 0 || fee > amount+0.005 {
				t.Errorf("fee out of range: amount=%v pct=%v fee=%v", amount, pct, fee)
			}
			// Fee and earnings must recombine to the amount at cent precision.
			if diff := amount - (fee + earnings); diff > 0.005 || diff < -0.005 {
				t.Errorf("split does not recombine: amount=%v pct=%v fee=%v earnings=%v", amount, pct, fee, earnings)
			}
		}
	}
}

func TestGenerateOrderIDUnique(t *testing.T) {
	const n = 10000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := GenerateOrderID()
		if !strings.HasPrefix(id, "order_") {
			t.Fatalf("unexpected order id format: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate order id after %d calls: %s", i, id)
		}
		seen[id] = true
	}
}

func TestGenerateOrderIDConcurrent(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 500

	ids := make(chan string, goroutines*perGoroutine)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ids <- GenerateOrderID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, goroutines*perGoroutine)
	for id := range ids {
		if !strings.HasPrefix(id, "order_") {
			t.Fatalf("unexpected order id format: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate order id under concurrency: %s", id)
		}
		seen[id] = true
	}
}

func TestFetchOrderPaymentsUnknownOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Order reference id does not exist",
			"code":    "order_not_found",
			"type":    "invalid_request_error",
		})
	}))
	defer server.Close()

	client := &Client{baseURL: server.URL, httpClient: server.Client()}
	_, err := client.FetchOrderPayments("order_unknown")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for a 404 response, got: %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" || r.Method != "POST" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-client-id") != "app-id" || r.Header.Get("x-client-secret") != "secret" {
			t.Error("missing Cashfree auth headers")
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode order payload: %v", err)
		}
		if payload["order_id"] != "order_123_abc" {
			t.Errorf("order_id = %v", payload["order_id"])
		}
		if payload["order_amount"].(float64) != 1500 {
			t.Errorf("order_amount = %v", payload["order_amount"])
		}
		meta := payload["order_meta"].(map[string]interface{})
		if meta["payment_methods"] != "cc,dc,upi,nb,wallet" {
			t.Errorf("payment_methods = %v", meta["payment_methods"])
		}

		json.NewEncoder(w).Encode(map[string]string{
			"payment_session_id": "session_xyz",
			"order_id":           "order_123_abc",
		})
	}))
	defer server.Close()

	client := &Client{appID: "app-id", secretKey: "secret", baseURL: server.URL, httpClient: server.Client()}

	session, err := client.CreateOrder(CreateOrderRequest{
		OrderID:       "order_123_abc",
		OrderAmount:   1500,
		OrderCurrency: "INR",
		Customer: CustomerDetails{
			CustomerID:    "client-1",
			CustomerName:  "Test Client",
			CustomerEmail: "client@example.com",
			CustomerPhone: "9999999999",
		},
		ReturnURL: "https://app.example.com/booking/confirmation?orderId=order_123_abc",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if session.PaymentSessionID != "session_xyz" {
		t.Errorf("payment session id = %s", session.PaymentSessionID)
	}
	if session.OrderID != "order_123_abc" {
		t.Errorf("order id = %s", session.OrderID)
	}
}

func TestCreateOrderRejectsEmptySession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"order_id": "order_1"})
	}))
	defer server.Close()

	client := &Client{baseURL: server.URL, httpClient: server.Client()}
	if _, err := client.CreateOrder(CreateOrderRequest{OrderID: "order_1"}); err == nil {
		t.Fatal("expected error when vendor omits the payment session id")
	}
}

func TestFetchOrderPayments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order_42_zz/payments" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"cf_payment_id": 991, "order_id": "order_42_zz", "payment_status": "FAILED", "payment_amount": 1500},
			{"cf_payment_id": 992, "order_id": "order_42_zz", "payment_status": "SUCCESS", "payment_amount": 1500},
		})
	}))
	defer server.Close()

	client := &Client{baseURL: server.URL, httpClient: server.Client()}
	transactions, err := client.FetchOrderPayments("order_42_zz")
	if err != nil {
		t.Fatalf("FetchOrderPayments failed: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
	if ClassifyTransactions(transactions) != OrderStatusSuccess {
		t.Error("expected fetched order to classify as Success")
	}
	if txn := SucceededTransaction(transactions); txn == nil || txn.CFPaymentID.String() != "992" {
		t.Errorf("expected succeeded txn 992, got %+v", txn)
	}
}
