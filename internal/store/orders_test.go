package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/dbtest"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
	"github.com/shopspring/decimal"
)

func TestCreateOrder(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "test@example.com")
	product1 := createProduct(t, db, "TEST-ORD-001", 100)
	product2 := createProduct(t, db, "TEST-ORD-002", 200)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID:        user.ID,
		CustomerEmail: user.Email,
		Currency:      "USD",
		Shipping:      testShipping,
		Items: models.LineItems{
			{ProductID: product1.ID, Size: "M", Color: "black", Quantity: 5, Price: decimal.NewFromInt(1)},
			{ProductID: product2.ID, Size: "L", Color: "white", Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if order.ID == 0 {
		t.Error("Order ID should not be 0")
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected status pending, got %s", order.Status)
	}
	if order.Currency != "usd" {
		t.Errorf("Expected currency usd, got %s", order.Currency)
	}

	expectedTotal := decimal.NewFromInt(100).Mul(decimal.NewFromInt(5)).
		Add(decimal.NewFromInt(200).Mul(decimal.NewFromInt(3)))

	if !order.TotalAmount.Equal(expectedTotal) {
		t.Errorf("Expected total %s, got %s", expectedTotal, order.TotalAmount)
	}
	if !order.Items[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected catalog price 100 on first item, got %s", order.Items[0].Price)
	}
	if order.Items[0].Name != product1.Name {
		t.Errorf("Expected item name %q, got %q", product1.Name, order.Items[0].Name)
	}

	fetched, err := store.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if fetched.Shipping.City != "London" {
		t.Errorf("Expected shipping city London, got %q", fetched.Shipping.City)
	}
	if len(fetched.Items) != 2 || fetched.Items[1].Size != "L" {
		t.Errorf("Unexpected items after round trip: %+v", fetched.Items)
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "cart-order@example.com")
	product := createProduct(t, db, "TEST-ORD-010", 25)

	_, err := store.SaveCart(ctx, db, user.ID, models.LineItems{
		{ProductID: product.ID, Size: "S", Color: "black", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Save cart: %v", err)
	}

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID:   user.ID,
		FromCart: true,
		Currency: "usd",
		Shipping: testShipping,
	})
	if err != nil {
		t.Fatalf("Create order from cart: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected total 50, got %s", order.TotalAmount)
	}

	cart, err := store.GetCart(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("Cart should be empty after checkout, got %d items", len(cart.Items))
	}

	_, err = store.CreateOrder(ctx, db, store.CreateOrderRequest{UserID: user.ID, FromCart: true, Shipping: testShipping})
	if !errors.Is(err, database.ErrCartEmpty) {
		t.Errorf("Expected empty cart error, got: %v", err)
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "unknown@example.com")

	_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID:   user.ID,
		Shipping: testShipping,
		Items:    models.LineItems{{ProductID: 999999, Quantity: 1}},
	})
	if !errors.Is(err, database.ErrInvalidReference) {
		t.Errorf("Expected invalid reference error, got: %v", err)
	}
}

func TestConcurrentOrderCreation(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "test3@example.com")
	product := createProduct(t, db, "TEST-ORD-004", 100)

	concurrency := 10
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
				UserID:   user.ID,
				Shipping: testShipping,
				Items:    models.LineItems{{ProductID: product.ID, Quantity: 2}},
			})

			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err != nil {
			t.Logf("Unexpected error: %v", err)
			continue
		}
		successCount++
	}

	if successCount != concurrency {
		t.Errorf("Expected %d successful orders, got %d", concurrency, successCount)
	}
}

func TestListOrdersCursor(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "test4@example.com")
	product := createProduct(t, db, "TEST-ORD-005", 100)

	for i := 0; i < 15; i++ {
		_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
			UserID:   user.ID,
			Shipping: testShipping,
			Items:    models.LineItems{{ProductID: product.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("Create order %d: %v", i, err)
		}
	}

	page1, err := store.ListOrdersCursor(ctx, db, user.ID, "", 10)
	if err != nil {
		t.Fatalf("List orders page 1: %v", err)
	}

	if !page1.HasMore {
		t.Error("Page 1 should have more results")
	}

	if page1.NextCursor == "" {
		t.Error("Page 1 should have a next cursor")
	}

	page2, err := store.ListOrdersCursor(ctx, db, user.ID, page1.NextCursor, 10)
	if err != nil {
		t.Fatalf("List orders page 2: %v", err)
	}

	if page2.HasMore {
		t.Error("Page 2 should not have more results")
	}
	if n := len(page2.Items.([]models.Order)); n != 5 {
		t.Errorf("Expected 5 orders on page 2, got %d", n)
	}

	all, err := store.ListOrders(ctx, db, store.OrderFilter{Status: models.OrderStatusPending}, 1, 20)
	if err != nil {
		t.Fatalf("List all orders: %v", err)
	}
	if all.Total != 15 {
		t.Errorf("Expected 15 pending orders, got %d", all.Total)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "status@example.com")
	product := createProduct(t, db, "TEST-ORD-006", 10)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID:   user.ID,
		Shipping: testShipping,
		Items:    models.LineItems{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	updated, err := store.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusShipped)
	if err != nil {
		t.Fatalf("Update status: %v", err)
	}
	if updated.Status != models.OrderStatusShipped {
		t.Errorf("Expected shipped, got %s", updated.Status)
	}
	if updated.Version != order.Version+1 {
		t.Errorf("Expected version %d, got %d", order.Version+1, updated.Version)
	}

	_, err = store.UpdateOrderStatus(ctx, db, order.ID, "teleported")
	if !errors.Is(err, database.ErrInvalidStatus) {
		t.Errorf("Expected invalid status error, got: %v", err)
	}

	_, err = store.UpdateOrderStatus(ctx, db, order.ID+1000, models.OrderStatusDelivered)
	if !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected order not found, got: %v", err)
	}
}

func TestReplaceOrderAndPayment(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	user := createUser(t, db, "replace@example.com")
	product := createProduct(t, db, "TEST-ORD-007", 40)

	order, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		UserID:   user.ID,
		Shipping: testShipping,
		Items:    models.LineItems{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	paid, err := store.SetOrderPayment(ctx, db, order.ID, models.Payment{
		Provider: "stripe",
		IntentID: "pi_123",
		Status:   models.PaymentStatusSucceeded,
		Amount:   4000,
		Currency: "usd",
	})
	if err != nil {
		t.Fatalf("Set payment: %v", err)
	}
	if paid.Status != models.OrderStatusConfirmed {
		t.Errorf("Expected confirmed after successful payment, got %s", paid.Status)
	}
	if paid.Payment.IntentID != "pi_123" {
		t.Errorf("Expected intent pi_123, got %q", paid.Payment.IntentID)
	}

	doc := *paid
	doc.Status = models.OrderStatusPrepared
	doc.TotalAmount = decimal.NewFromInt(1)
	doc.Shipping.TrackingNumber = "1Z999"

	replaced, err := store.ReplaceOrder(ctx, db, order.ID, doc)
	if err != nil {
		t.Fatalf("Replace order: %v", err)
	}
	if !replaced.TotalAmount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Replace should keep the total as sent, got %s", replaced.TotalAmount)
	}
	if replaced.Shipping.TrackingNumber != "1Z999" {
		t.Errorf("Expected tracking number to be stored, got %q", replaced.Shipping.TrackingNumber)
	}

	if err := store.DeleteOrder(ctx, db, order.ID); err != nil {
		t.Fatalf("Delete order: %v", err)
	}
	if _, err := store.GetOrder(ctx, db, order.ID); !errors.Is(err, database.ErrOrderNotFound) {
		t.Errorf("Expected order not found after delete, got: %v", err)
	}
}
