package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleBody(clientID uint, items ...gin.H) gin.H {
	return gin.H{
		"client_id": clientID,
		"date":      "2026-04-02",
		"subtotal":  30,
		"discount":  0,
		"total":     30,
		"items":     items,
	}
}

func TestSalesRoutesDisabledByDefault(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("nosales@example.com")

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/sales", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/sales", token, gin.H{}).Code)
}

func TestSalesAPI(t *testing.T) {
	s := newTestServer(t, withSalesAPI)
	token, _ := s.register("sales@example.com")
	other, _ := s.register("other-sales@example.com")

	clientID := s.createClient(token, "Acme")
	widget := s.createArticle(token, "Widget", 10)
	gadget := s.createArticle(token, "Gadget", 20)

	rec := s.do(http.MethodPost, "/api/sales", token, saleBody(clientID,
		gin.H{"article_id": widget, "quantity": 1, "price": 10, "total": 10},
		gin.H{"article_id": gadget, "quantity": 1, "price": 20, "total": 20},
	))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Sale created successfully", body["message"])
	sale := body["sale"].(map[string]interface{})
	assert.Equal(t, "SALE-0001", sale["sale_number"])
	assert.Len(t, sale["items"], 2)
	saleID := idOf(t, sale)
	path := fmt.Sprintf("/api/sales/%d", saleID)

	t.Run("validation", func(t *testing.T) {
		fields := errorsOf(t, s.do(http.MethodPost, "/api/sales", token, saleBody(clientID)))
		assert.Contains(t, fields, "items")

		fields = errorsOf(t, s.do(http.MethodPost, "/api/sales", token, saleBody(clientID,
			gin.H{"article_id": widget, "quantity": 0, "price": 10, "total": 10},
		)))
		assert.Contains(t, fields, "items.0.quantity")
	})

	t.Run("foreign references", func(t *testing.T) {
		fields := errorsOf(t, s.do(http.MethodPost, "/api/sales", other, saleBody(clientID,
			gin.H{"article_id": widget, "quantity": 1, "price": 10, "total": 10},
		)))
		assert.Equal(t, []interface{}{"The selected client id is invalid."}, fields["client_id"])
		assert.Equal(t, []interface{}{"The selected items.0.article_id is invalid."}, fields["items.0.article_id"])
	})

	t.Run("show and list", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Acme", decode(t, rec)["client"].(map[string]interface{})["name"])

		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, other, nil).Code)

		rec = s.do(http.MethodGet, "/api/sales?search=sale-0001", token, nil)
		assert.EqualValues(t, 1, decode(t, rec)["total"])
		rec = s.do(http.MethodGet, "/api/sales", other, nil)
		assert.EqualValues(t, 0, decode(t, rec)["total"])
	})

	t.Run("update replaces items", func(t *testing.T) {
		first := sale["items"].([]interface{})[0].(map[string]interface{})
		body := saleBody(clientID,
			gin.H{"id": first["id"], "article_id": widget, "quantity": 3, "price": 10, "total": 30},
		)
		rec := s.do(http.MethodPut, path, token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decode(t, rec)["sale"].(map[string]interface{})
		assert.Equal(t, "SALE-0001", updated["sale_number"])
		items := updated["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, first["id"], items[0].(map[string]interface{})["id"])
		assert.EqualValues(t, 3, items[0].(map[string]interface{})["quantity"])
	})

	t.Run("delete blocked by invoice", func(t *testing.T) {
		invoice := invoiceBody(clientID, "2026-04-02", "2026-04-30")
		invoice["sale_id"] = saleID
		rec := s.do(http.MethodPost, "/api/invoices", token, invoice)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		invoiceID := idOf(t, decode(t, rec)["invoice"])

		rec = s.do(http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Cannot delete sale with related invoice", decode(t, rec)["message"])

		require.Equal(t, http.StatusOK, s.do(http.MethodDelete, fmt.Sprintf("/api/invoices/%d", invoiceID), token, nil).Code)

		rec = s.do(http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Sale deleted successfully", decode(t, rec)["message"])
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, token, nil).Code)
	})
}
