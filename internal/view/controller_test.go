package view

import (
	"testing"

	"github.com/matthieukhl/quotedesk/internal/quotation"
	"github.com/matthieukhl/quotedesk/internal/types"
)

func TestController_StartsOnIntake(t *testing.T) {
	c := NewController(quotation.Options{})
	if _, ok := c.Current().(IntakeView); !ok {
		t.Fatalf("expected intake, got %s", c.Current().Name())
	}
	if _, ok := c.Quotation(); ok {
		t.Fatal("no quotation expected on intake")
	}
}

func TestController_OpenBlank(t *testing.T) {
	c := NewController(quotation.Options{})
	q := c.OpenBlank()

	got, ok := c.Quotation()
	if !ok || got != q {
		t.Fatal("expected the blank quotation to be on screen")
	}
	if len(q.Items()) != 0 {
		t.Fatalf("expected no items, got %d", len(q.Items()))
	}
}

func TestController_SeedConsumedOnce(t *testing.T) {
	c := NewController(quotation.Options{})
	seed := []types.ItemPayload{
		{Description: "8 Channel NVR", Quantity: 1, Rate: 12000, Amount: 12000},
		{Description: "Adaptor", Quantity: 4, Rate: 300, Amount: 1200},
	}

	q := c.OpenWithSeed(seed)
	if len(q.Items()) != 2 {
		t.Fatalf("expected 2 seeded items, got %d", len(q.Items()))
	}

	// edits are lost on Back
	_, _ = q.AddItem()
	c.Back()
	if _, ok := c.Current().(IntakeView); !ok {
		t.Fatalf("expected intake after back, got %s", c.Current().Name())
	}

	again := c.OpenBlank()
	if again == q {
		t.Fatal("expected a fresh quotation")
	}
	if len(again.Items()) != 0 {
		t.Fatalf("previous seed must not be restored, got %d items", len(again.Items()))
	}
}

func TestController_SeedIsCopied(t *testing.T) {
	c := NewController(quotation.Options{})
	seed := []types.ItemPayload{{Description: "Cat6 Cable", Quantity: 100, Rate: 25, Amount: 2500}}

	q := c.OpenWithSeed(seed)
	seed[0].Description = "changed"

	if q.Items()[0].Description != "Cat6 Cable" {
		t.Fatal("quotation must not alias the seed slice")
	}
}
