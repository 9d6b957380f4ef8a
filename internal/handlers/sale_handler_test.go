package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/livefeed"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

type mockSaleService struct {
	createSaleFn func(productID string, quantity int, discountPercent decimal.Decimal, soldBy string) (*models.Sale, error)
	undoSaleFn   func(saleID string) error
	listSalesFn  func(page pagination.PageRequest, since *time.Time) (*pagination.PageResponse[models.Sale], error)
}

func (m *mockSaleService) CreateSale(productID string, quantity int, discountPercent decimal.Decimal, soldBy string) (*models.Sale, error) {
	if m.createSaleFn != nil {
		return m.createSaleFn(productID, quantity, discountPercent, soldBy)
	}
	return &models.Sale{}, nil
}

func (m *mockSaleService) UndoSale(saleID string) error {
	if m.undoSaleFn != nil {
		return m.undoSaleFn(saleID)
	}
	return nil
}

func (m *mockSaleService) GetSaleByID(_ string) (*models.Sale, error) {
	return &models.Sale{}, nil
}

func (m *mockSaleService) ListSales(page pagination.PageRequest, since *time.Time) (*pagination.PageResponse[models.Sale], error) {
	if m.listSalesFn != nil {
		return m.listSalesFn(page, since)
	}
	return &pagination.PageResponse[models.Sale]{}, nil
}

func setupSaleRouter(handler *SaleHandler) *gin.Engine {
	r := gin.New()
	auth := injectIdentity("user-1", "newton", false)
	r.POST("/sales", auth, handler.CreateSale)
	r.DELETE("/sales/:id", auth, handler.UndoSale)
	r.GET("/sales", auth, handler.ListSales)
	return r
}

func TestSaleHandler_CreateSale(t *testing.T) {
	t.Run("returns 201 and the sale snapshot", func(t *testing.T) {
		var gotSoldBy string
		saleSvc := &mockSaleService{
			createSaleFn: func(productID string, quantity int, discount decimal.Decimal, soldBy string) (*models.Sale, error) {
				gotSoldBy = soldBy
				return &models.Sale{
					Base:            models.Base{ID: "sale-1"},
					Seq:             7,
					ProductID:       productID,
					Quantity:        quantity,
					DiscountPercent: discount,
				}, nil
			},
		}
		handler := NewSaleHandler(saleSvc, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "POST", "/sales",
			`{"product_id":"123e4567-e89b-12d3-a456-426614174000","quantity":3,"discount_percent":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotSoldBy != "user-1" {
			t.Errorf("expected sale attributed to user-1, got %q", gotSoldBy)
		}
		result := parseJSON(t, rec)
		sale := result["sale"].(map[string]interface{})
		if sale["seq"] != float64(7) {
			t.Errorf("expected seq 7, got %v", sale["seq"])
		}
	})

	t.Run("returns 400 on non-positive quantity", func(t *testing.T) {
		handler := NewSaleHandler(&mockSaleService{}, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "POST", "/sales",
			`{"product_id":"123e4567-e89b-12d3-a456-426614174000","quantity":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on unknown product", func(t *testing.T) {
		saleSvc := &mockSaleService{
			createSaleFn: func(_ string, _ int, _ decimal.Decimal, _ string) (*models.Sale, error) {
				return nil, apperrors.ErrProductNotFound
			},
		}
		handler := NewSaleHandler(saleSvc, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "POST", "/sales",
			`{"product_id":"123e4567-e89b-12d3-a456-426614174000","quantity":1}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PRODUCT_NOT_FOUND")
	})
}

func TestSaleHandler_UndoSale(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		var undone string
		saleSvc := &mockSaleService{
			undoSaleFn: func(saleID string) error {
				undone = saleID
				return nil
			},
		}
		handler := NewSaleHandler(saleSvc, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "DELETE", "/sales/123e4567-e89b-12d3-a456-426614174000", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		if undone != "123e4567-e89b-12d3-a456-426614174000" {
			t.Errorf("expected undo of path ID, got %q", undone)
		}
	})

	t.Run("returns 400 on malformed ID", func(t *testing.T) {
		handler := NewSaleHandler(&mockSaleService{}, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "DELETE", "/sales/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSaleHandler_ListSales(t *testing.T) {
	t.Run("passes the recent-sales window to the service", func(t *testing.T) {
		var gotSince *time.Time
		saleSvc := &mockSaleService{
			listSalesFn: func(_ pagination.PageRequest, since *time.Time) (*pagination.PageResponse[models.Sale], error) {
				gotSince = since
				return &pagination.PageResponse[models.Sale]{}, nil
			},
		}
		handler := NewSaleHandler(saleSvc, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "GET", "/sales?since_hours=24", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotSince == nil {
			t.Fatal("expected a since cutoff, got nil")
		}
		if time.Since(*gotSince) < 23*time.Hour || time.Since(*gotSince) > 25*time.Hour {
			t.Errorf("expected cutoff about 24h ago, got %v", *gotSince)
		}
	})

	t.Run("lists without a window by default", func(t *testing.T) {
		var gotSince *time.Time
		saleSvc := &mockSaleService{
			listSalesFn: func(_ pagination.PageRequest, since *time.Time) (*pagination.PageResponse[models.Sale], error) {
				gotSince = since
				return &pagination.PageResponse[models.Sale]{}, nil
			},
		}
		handler := NewSaleHandler(saleSvc, livefeed.NopNotifier{})
		r := setupSaleRouter(handler)

		rec := doRequest(r, "GET", "/sales", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotSince != nil {
			t.Errorf("expected no cutoff, got %v", *gotSince)
		}
	})
}
