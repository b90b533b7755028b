package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		pages       int
		next, prev  bool
	}{
		{1, 20, 0, 0, false, false},
		{1, 20, 20, 1, false, false},
		{1, 20, 21, 2, true, false},
		{2, 20, 21, 2, false, true},
		{3, 10, 100, 10, true, true},
	}
	for _, tt := range tests {
		m := NewPaginationMeta(tt.page, tt.limit, tt.total)
		if m.TotalPages != tt.pages || m.HasNext != tt.next || m.HasPrevious != tt.prev {
			t.Errorf("NewPaginationMeta(%d, %d, %d) = %+v", tt.page, tt.limit, tt.total, m)
		}
	}
}

func TestOrderTransitions(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{OrderProcessing, OrderShipped}:   true,
		{OrderProcessing, OrderCancelled}: true,
		{OrderShipped, OrderDelivered}:    true,
	}
	all := []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}
	for _, from := range all {
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != allowed[[2]OrderStatus{from, to}] {
				t.Errorf("%s -> %s = %v", from, to, got)
			}
		}
	}
}

func TestNewCartViewSkipsMissingProducts(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Quantity: 2, Product: Product{ID: 1, Price: decimal.RequireFromString("12.50")}},
		{ProductID: 2, Quantity: 5},
		{ProductID: 3, Quantity: 1, Product: Product{ID: 3, Price: decimal.RequireFromString("0.99")}},
	}

	view := NewCartView(items)
	if len(view.Items) != 2 || view.Count != 3 {
		t.Fatalf("view = %+v", view)
	}
	if !view.Total.Equal(decimal.RequireFromString("25.99")) {
		t.Errorf("Total = %s", view.Total)
	}
	if !view.Items[0].Subtotal.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Subtotal = %s", view.Items[0].Subtotal)
	}
}

func TestEmptyCartViewSerializesItems(t *testing.T) {
	raw, err := json.Marshal(NewCartView(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"items":[],"count":0,"total":0}` {
		t.Errorf("json = %s", raw)
	}
}

func TestPricesMarshalAsNumbers(t *testing.T) {
	raw, err := json.Marshal(struct {
		Price decimal.Decimal `json:"price"`
	}{decimal.RequireFromString("150.00")})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"price":150}` {
		t.Errorf("json = %s", raw)
	}
}

func TestConversationParticipants(t *testing.T) {
	c := Conversation{BuyerID: 4, SellerID: 9}
	if c.Other(4) != 9 || c.Other(9) != 4 {
		t.Error("Other returned the wrong participant")
	}
	if !c.HasParticipant(9) || c.HasParticipant(5) {
		t.Error("HasParticipant mismatch")
	}
}

func TestPublicUserHidesEmail(t *testing.T) {
	raw, _ := json.Marshal(User{ID: 1, Email: "ada@example.com", Name: "Ada", Password: "hash"}.Public())
	var out map[string]interface{}
	json.Unmarshal(raw, &out)
	if _, ok := out["email"]; ok {
		t.Errorf("public user exposes email: %s", raw)
	}
}

func TestRelationsMarshalAsPublicUsers(t *testing.T) {
	private := &User{ID: 2, Email: "bob@example.com", Name: "Bob", Phone: "555", Role: RoleUser}

	raw, err := json.Marshal(Product{ID: 1, SellerID: 2, Price: decimal.NewFromInt(10), Seller: private})
	if err != nil {
		t.Fatal(err)
	}
	var product map[string]interface{}
	json.Unmarshal(raw, &product)
	seller := product["seller"].(map[string]interface{})
	for _, key := range []string{"email", "phone", "role"} {
		if _, ok := seller[key]; ok {
			t.Errorf("product seller exposes %s: %s", key, raw)
		}
	}
	if seller["name"] != "Bob" || product["price"] != float64(10) || product["id"] != float64(1) {
		t.Errorf("product json = %s", raw)
	}

	raw, _ = json.Marshal(&Order{ID: 3, Buyer: private, Seller: private})
	var order map[string]interface{}
	json.Unmarshal(raw, &order)
	for _, side := range []string{"buyer", "seller"} {
		if _, ok := order[side].(map[string]interface{})["email"]; ok {
			t.Errorf("order %s exposes email: %s", side, raw)
		}
	}

	raw, _ = json.Marshal(Product{ID: 1})
	var bare map[string]interface{}
	json.Unmarshal(raw, &bare)
	if _, ok := bare["seller"]; ok {
		t.Errorf("unloaded seller rendered: %s", raw)
	}
}
