package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestSaleFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "clerk", "password123")

	// Create a product: cost 10, margin 50 -> sale price 15
	rec := app.request("POST", "/api/v1/products",
		`{"description":"Armação Ray-Ban","cost_price":10,"profit_margin":50,"quantity":20}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product failed: %d %s", rec.Code, rec.Body.String())
	}
	product := parseJSON(t, rec)["product"].(map[string]interface{})
	productID := product["id"].(string)
	if product["sale_price"] != "15" {
		t.Errorf("expected sale_price 15, got %v", product["sale_price"])
	}

	// Sell 2 units with a 10%% discount -> final unit 13.5, total 27
	rec = app.request("POST", "/api/v1/sales",
		fmt.Sprintf(`{"product_id":%q,"quantity":2,"discount_percent":10}`, productID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale failed: %d %s", rec.Code, rec.Body.String())
	}
	sale := parseJSON(t, rec)["sale"].(map[string]interface{})
	saleID := sale["id"].(string)
	if sale["final_unit_price"] != "13.5" {
		t.Errorf("expected final_unit_price 13.5, got %v", sale["final_unit_price"])
	}
	if sale["total_price"] != "27" {
		t.Errorf("expected total_price 27, got %v", sale["total_price"])
	}
	if sale["seq"] != float64(1) {
		t.Errorf("expected first sale seq 1, got %v", sale["seq"])
	}

	// Stock was decremented
	rec = app.request("GET", "/api/v1/products/"+productID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get product failed: %d", rec.Code)
	}
	product = parseJSON(t, rec)["product"].(map[string]interface{})
	if product["quantity"] != float64(18) {
		t.Errorf("expected quantity 18 after sale, got %v", product["quantity"])
	}

	// The sale shows up in the list
	rec = app.request("GET", "/api/v1/sales", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sales failed: %d", rec.Code)
	}
	list := parseJSON(t, rec)
	if list["total_items"] != float64(1) {
		t.Errorf("expected 1 sale, got %v", list["total_items"])
	}

	// Undo credits the stock back and removes the sale
	rec = app.request("DELETE", "/api/v1/sales/"+saleID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("undo sale failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/products/"+productID, "", token)
	product = parseJSON(t, rec)["product"].(map[string]interface{})
	if product["quantity"] != float64(20) {
		t.Errorf("expected quantity 20 after undo, got %v", product["quantity"])
	}

	rec = app.request("GET", "/api/v1/sales", "", token)
	list = parseJSON(t, rec)
	if list["total_items"] != float64(0) {
		t.Errorf("expected 0 sales after undo, got %v", list["total_items"])
	}

	// Undoing the same sale again is a benign no-op
	rec = app.request("DELETE", "/api/v1/sales/"+saleID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("second undo should be a no-op, got %d", rec.Code)
	}
	rec = app.request("GET", "/api/v1/products/"+productID, "", token)
	product = parseJSON(t, rec)["product"].(map[string]interface{})
	if product["quantity"] != float64(20) {
		t.Errorf("expected quantity unchanged at 20, got %v", product["quantity"])
	}
}

func TestProductUpdateLeavesStockAlone(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "clerk", "password123")

	rec := app.request("POST", "/api/v1/products",
		`{"description":"Armação Oakley","cost_price":10,"profit_margin":50,"quantity":5}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product failed: %d %s", rec.Code, rec.Body.String())
	}
	productID := parseJSON(t, rec)["product"].(map[string]interface{})["id"].(string)

	// A quantity field in the patch body is ignored; stock only moves
	// through sales
	rec = app.request("PATCH", "/api/v1/products/"+productID,
		`{"cost_price":20,"quantity":999}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update product failed: %d %s", rec.Code, rec.Body.String())
	}
	product := parseJSON(t, rec)["product"].(map[string]interface{})
	if product["sale_price"] != "30" {
		t.Errorf("expected sale_price 30 after cost change, got %v", product["sale_price"])
	}
	if product["quantity"] != float64(5) {
		t.Errorf("expected quantity 5 with no sales on record, got %v", product["quantity"])
	}
}

func TestSaleFlow_RequiresAuth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/sales",
		`{"product_id":"123e4567-e89b-12d3-a456-426614174000","quantity":1}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
