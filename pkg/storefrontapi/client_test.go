package storefrontapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mosketh/storefront/pkg/config"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(config.APIConfig{
		BaseURL:            srv.URL + "/api/",
		Timeout:            2 * time.Second,
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Minute,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(config.APIConfig{}, nil); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestCreateOrderSendsWireShapeAndHeaders(t *testing.T) {
	var (
		gotBody    CreateOrderRequest
		gotAuth    string
		gotIdemKey string
		gotPath    string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"ord_1","orderNumber":"ORD-1700000000000-042","totalKES":8500}}`))
	})

	order, err := client.CreateOrder(context.Background(), "tok", CreateOrderRequest{
		UserID:          "guest",
		Items:           []OrderItem{{ProductID: "p1", Quantity: 1, PriceKES: 8500}},
		TotalKES:        8500,
		CustomerName:    "Wanjiru Kamau",
		CustomerEmail:   "wanjiru@example.com",
		CustomerPhone:   "0712345678",
		ShippingAddress: "Moi Avenue, Nairobi",
	}, "key-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if gotPath != "/api/orders" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer tok" || gotIdemKey != "key-1" {
		t.Fatalf("unexpected headers auth=%q idem=%q", gotAuth, gotIdemKey)
	}
	if gotBody.UserID != "guest" || gotBody.TotalKES != 8500 || len(gotBody.Items) != 1 || gotBody.Items[0].PriceKES != 8500 {
		t.Fatalf("unexpected body %+v", gotBody)
	}
	if order.ID != "ord_1" || order.OrderNumber != "ORD-1700000000000-042" || order.TotalKES != 8500 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestNonSuccessResponsesBecomeAPIErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"Insufficient stock","code":"OUT_OF_STOCK"}`, wantMsg: "Insufficient stock", wantCode: "OUT_OF_STOCK"},
		{name: "message field", status: http.StatusUnprocessableEntity, body: `{"success":false,"message":"Invalid items"}`, wantMsg: "Invalid items"},
		{name: "success false on 200", status: http.StatusOK, body: `{"success":false,"error":"Order rejected"}`, wantMsg: "Order rejected"},
		{name: "non json body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMsg: "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.CreateOrder(context.Background(), "", CreateOrderRequest{}, "k")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.status || apiErr.Message != tc.wantMsg || apiErr.Code != tc.wantCode {
				t.Fatalf("unexpected api error %+v", apiErr)
			}
		})
	}
}

func TestBreakerOpensAfterConsecutiveServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	for i := 0; i < 2; i++ {
		_, err := client.ProductBySlug(context.Background(), "dior-sauvage")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
			t.Fatalf("attempt %d: expected 500 api error, got %v", i, err)
		}
	}

	_, err := client.ProductBySlug(context.Background(), "dior-sauvage")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected open breaker dependency error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected open breaker to skip the server, got %d calls", calls)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	})
	for i := 0; i < 5; i++ {
		_, err := client.Login(context.Background(), "a@b.co", "nope")
		if !IsUnauthorized(err) {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i, err)
		}
	}
}

func TestLoginAndProductDecode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "amina@example.com" || body["password"] != "secret" {
				t.Errorf("unexpected login body %v", body)
			}
			_, _ = w.Write([]byte(`{"success":true,"data":{"token":"jwt","user":{"id":"u1","email":"amina@example.com","firstName":"Amina","lastName":"Otieno","role":"CUSTOMER"}}}`))
		case "/api/products/slug/dior-sauvage":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"p1","name":"Dior Sauvage","slug":"dior-sauvage","priceKES":8500,"images":["/a.jpg","/b.jpg"]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Product not found"}`))
		}
	})

	res, err := client.Login(context.Background(), "amina@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "jwt" || res.User.ID != "u1" || res.User.FirstName != "Amina" {
		t.Fatalf("unexpected login result %+v", res)
	}

	product, err := client.ProductBySlug(context.Background(), "dior-sauvage")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if product.ID != "p1" || product.PriceKES != 8500 || product.PrimaryImage() != "/a.jpg" {
		t.Fatalf("unexpected product %+v", product)
	}

	if _, err := client.ProductBySlug(context.Background(), "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnreachableServerIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := New(config.APIConfig{BaseURL: url, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.CreateOrder(context.Background(), "", CreateOrderRequest{}, "k")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 0 || apiErr.Cause == nil {
		t.Fatalf("expected transport api error, got %v", err)
	}
}

func TestCreateOrderTreatsUnreadableSuccessAsCreated(t *testing.T) {
	cases := map[string]string{
		"data wrong shape": `{"success":true,"data":"MOS1760000000123"}`,
		"data missing":     `{"success":true}`,
		"body not json":    `order created`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(body))
			})
			order, err := client.CreateOrder(context.Background(), "", CreateOrderRequest{UserID: "guest"}, "attempt-1")
			if err != nil {
				t.Fatalf("expected created order, got %v", err)
			}
			if order.OrderNumber != "" {
				t.Fatalf("expected empty order, got %+v", order)
			}
		})
	}
}

func TestLoginUnreadableSuccessIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":"jwt"}`))
	})
	_, err := client.Login(context.Background(), "amina@example.com", "secret")
	if !errors.Is(err, ErrUnreadableData) {
		t.Fatalf("expected unreadable data error, got %v", err)
	}
}
