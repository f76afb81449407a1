package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kavica-app/kavica/internal/catalog"
	"github.com/kavica-app/kavica/internal/order"
)

func newOrderRouter(orders *stubOrderRepo, cat *stubCatalogRepo, locs *stubLocationRepo, userID string) *gin.Engine {
	svc := order.NewService(orders, cat, locs)
	r := gin.New()
	r.POST("/app/orders", setUser(userID), placeOrderHandler(svc, nil))
	return r
}

func menuItem(id, name string, priceCents int64, active bool) *catalog.MenuItem {
	return &catalog.MenuItem{ID: id, Name: name, BasePriceCents: priceCents, Active: active}
}

func TestPlaceOrder_EndToEnd(t *testing.T) {
	orders := newStubOrderRepo()
	cat := newStubCatalogRepo()
	cat.items["burger"] = menuItem("burger", "Burger", 650, true)
	cat.items["fries"] = menuItem("fries", "Fries", 300, true)
	locs := newStubLocationRepo("L1")
	r := newOrderRouter(orders, cat, locs, "u1")

	body := `{"location_id":"L1","cart":[{"menu_item_id":"burger","quantity":2},{"menu_item_id":"fries","quantity":1}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/app/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var got struct {
		Order order.Order  `json:"order"`
		Items []order.Item `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Order.SubtotalCents != 1600 || got.Order.TotalCents != 1600 || got.Order.DiscountCents != 0 {
		t.Fatalf("totals wrong: %+v", got.Order)
	}
	if len(got.Items) != 2 || got.Items[0].LineTotalCents != 1300 || got.Items[1].LineTotalCents != 300 {
		t.Fatalf("line totals wrong: %+v", got.Items)
	}
	if len(orders.orders) != 1 {
		t.Fatalf("persisted orders=%d, want 1", len(orders.orders))
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty cart", `{"location_id":"L1","cart":[]}`},
		{"zero quantity", `{"location_id":"L1","cart":[{"menu_item_id":"burger","quantity":0}]}`},
		{"negative quantity", `{"location_id":"L1","cart":[{"menu_item_id":"burger","quantity":-1}]}`},
		{"non-integer quantity", `{"location_id":"L1","cart":[{"menu_item_id":"burger","quantity":1.5}]}`},
		{"unknown item", `{"location_id":"L1","cart":[{"menu_item_id":"ghost","quantity":1}]}`},
		{"inactive item", `{"location_id":"L1","cart":[{"menu_item_id":"retired","quantity":1}]}`},
		{"unknown location", `{"location_id":"L9","cart":[{"menu_item_id":"burger","quantity":1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := newStubOrderRepo()
			cat := newStubCatalogRepo()
			cat.items["burger"] = menuItem("burger", "Burger", 650, true)
			cat.items["retired"] = menuItem("retired", "Old Special", 900, false)
			locs := newStubLocationRepo("L1")
			r := newOrderRouter(orders, cat, locs, "u1")

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/app/orders", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s (want 400)", w.Code, w.Body.String())
			}
			if len(orders.orders) != 0 {
				t.Fatalf("no order row may exist after rejection, got %d", len(orders.orders))
			}
		})
	}
}

func TestMyOrders_ReturnsOnlyOwnOrders(t *testing.T) {
	orders := newStubOrderRepo()
	for i, uid := range []string{"u1", "u1", "u2"} {
		o := &order.Order{ID: fmt.Sprintf("o%d", i), UserID: uid, LocationID: "L1", Status: order.StatusCreated}
		_ = orders.Create(nil, o, nil)
	}

	r := gin.New()
	r.GET("/app/orders", setUser("u1"), myOrdersHandler(orders, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/orders", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Orders []order.Order `json:"orders"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.Orders) != 2 {
		t.Fatalf("orders=%d, want the caller's 2", len(got.Orders))
	}
	for _, o := range got.Orders {
		if o.UserID != "u1" {
			t.Fatalf("leaked another user's order: %+v", o)
		}
	}
}
