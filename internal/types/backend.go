package types

import "context"

// Extractor turns freeform intake text into provisional quotation items
type Extractor interface {
	Process(ctx context.Context, rawText string) (*ProcessResponse, error)
}

// InventoryStore is the remote inventory collection
type InventoryStore interface {
	ListInventory(ctx context.Context) ([]InventoryItem, error)
	CreateInventory(ctx context.Context, item InventoryItem) error
	DeleteInventory(ctx context.Context, id string) error
}

// DocumentRenderer produces a downloadable quotation document
type DocumentRenderer interface {
	GeneratePDF(ctx context.Context, req PDFRequest) ([]byte, error)
}

// Backend is everything the quotation client needs from the remote side
type Backend interface {
	Extractor
	InventoryStore
	DocumentRenderer
	Ping(ctx context.Context) (string, error)
	Origin() string
}

// ItemPayload is a quotation row as it travels over the wire. It never
// carries a local identifier.
type ItemPayload struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// ProcessRequest is the body of POST /api/process
type ProcessRequest struct {
	RawText string `json:"raw_text"`
}

// ProcessResponse is the extraction result
type ProcessResponse struct {
	Items   []ItemPayload `json:"items"`
	Success bool          `json:"success"`
	Message string        `json:"message"`
}

// PDFRequest is the body of POST /api/generate-pdf
type PDFRequest struct {
	Items            []ItemPayload `json:"items"`
	CustomerName     string        `json:"customer_name,omitempty"`
	CustomerLocation string        `json:"customer_location,omitempty"`
}

// InventoryItem mirrors the backend inventory record
type InventoryItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Description string  `json:"description,omitempty"`
}
