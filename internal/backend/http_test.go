package backend

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/quotedesk/internal/types"
)

// fakeBackend mimics the quotation API closely enough for the client
type fakeBackend struct {
	inventory []types.InventoryItem
	lastPDF   types.PDFRequest
	lastText  string
	failPDF   bool
}

func (f *fakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "CCTV Quotation API is running"})
	})

	api := r.Group("/api")
	{
		api.POST("/process", func(c *gin.Context) {
			var req types.ProcessRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			f.lastText = req.RawText
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Generated 1 items using Gemini AI",
				"items": []gin.H{
					{"description": "4 Channel NVR", "quantity": 1, "rate": 8000, "amount": 8000},
				},
			})
		})
		api.GET("/inventory", func(c *gin.Context) {
			c.JSON(http.StatusOK, f.inventory)
		})
		api.POST("/inventory", func(c *gin.Context) {
			var item types.InventoryItem
			if err := c.ShouldBindJSON(&item); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			f.inventory = append(f.inventory, item)
			c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
		})
		api.DELETE("/inventory/:id", func(c *gin.Context) {
			id := c.Param("id")
			for i, it := range f.inventory {
				if it.ID == id {
					f.inventory = append(f.inventory[:i], f.inventory[i+1:]...)
					c.JSON(http.StatusOK, gin.H{"success": true})
					return
				}
			}
			c.JSON(http.StatusNotFound, gin.H{"detail": "Item not found"})
		})
		api.POST("/generate-pdf", func(c *gin.Context) {
			if f.failPDF {
				c.JSON(http.StatusInternalServerError, gin.H{"detail": "font missing"})
				return
			}
			if err := c.ShouldBindJSON(&f.lastPDF); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
				return
			}
			c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4 fake"))
		})
	}
	return r
}

func newFakeServer(t *testing.T, f *fakeBackend) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/", 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestHTTPClient_Process(t *testing.T) {
	f := &fakeBackend{}
	c := newFakeServer(t, f)

	resp, err := c.Process(context.Background(), "1 nvr 4 channel")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if f.lastText != "1 nvr 4 channel" {
		t.Fatalf("backend saw %q", f.lastText)
	}
	if len(resp.Items) != 1 || resp.Items[0].Amount != 8000 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}

func TestHTTPClient_InventoryRoundTrip(t *testing.T) {
	f := &fakeBackend{}
	c := newFakeServer(t, f)
	ctx := context.Background()

	items, err := c.ListInventory(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}

	item := types.InventoryItem{ID: "1790000000000", Name: "Dome Camera", Category: "camera", Price: 3500, Unit: "piece"}
	if err := c.CreateInventory(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, _ = c.ListInventory(ctx)
	if len(items) != 1 || items[0] != item {
		t.Fatalf("unexpected list after create: %+v", items)
	}

	if err := c.DeleteInventory(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = c.DeleteInventory(ctx, "does-not-exist")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestHTTPClient_GeneratePDF(t *testing.T) {
	f := &fakeBackend{}
	c := newFakeServer(t, f)

	req := types.PDFRequest{
		Items:        []types.ItemPayload{{Description: "Adaptor", Quantity: 2, Rate: 300, Amount: 600}},
		CustomerName: "Joseph",
	}
	data, err := c.GeneratePDF(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected document %q", data)
	}
	if f.lastPDF.CustomerName != "Joseph" || f.lastPDF.CustomerLocation != "" {
		t.Fatalf("unexpected request at backend: %+v", f.lastPDF)
	}

	f.failPDF = true
	_, err = c.GeneratePDF(context.Background(), req)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 StatusError, got %v", err)
	}
}

func TestHTTPClient_Ping(t *testing.T) {
	c := newFakeServer(t, &fakeBackend{})
	msg, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if msg != "CCTV Quotation API is running" {
		t.Fatalf("unexpected banner %q", msg)
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, 0)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Process(context.Background(), "anything"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNewHTTPClient_RejectsBadOrigin(t *testing.T) {
	for _, origin := range []string{"localhost:8000", "ftp://example.com", "://"} {
		if _, err := NewHTTPClient(origin, 0); err == nil {
			t.Fatalf("expected error for origin %q", origin)
		}
	}

	c, err := NewHTTPClient("", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Origin() != DefaultOrigin {
		t.Fatalf("expected default origin, got %s", c.Origin())
	}
}
