package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/dumpster-rentals/internal/invoice"
	"github.com/nurpe/dumpster-rentals/internal/model"
)

func sampleContract(days, tons int64) model.Contract {
	return model.Contract{
		InvoiceNumber: 42,
		Customer:      model.Customer{Name: "José Pérez", Phone: "305-555-0100"},
		WorkAddress:   model.WorkAddress{Address: "12 Coral Way"},
		Dumpster:      model.Dumpster{Size: 20},
		StartDate:     model.NewDate(2026, 5, 1),
		EndDate:       model.NewDate(2026, 5, 8),
		BaseWeight:    decimal.NewFromInt(2),
		FixContract: model.FixContract{
			Fix: model.Fix{
				CustomAmount:         decimal.NewFromInt(300),
				LandFillCost:         decimal.NewFromInt(50),
				TonsOverWeightAmount: decimal.NewFromInt(80),
				DaysOverTimeAmount:   decimal.NewFromInt(20),
			},
			PaymentDaysOverTimeAmount:   decimal.NewFromInt(days),
			PaymentTonsOverWeightAmount: decimal.NewFromInt(tons),
		},
	}
}

func TestGenerator_Invoice(t *testing.T) {
	g := NewGenerator(model.Company{
		Name:       "Dumpster Rentals",
		Street:     "1 Harbor Rd",
		CityLine:   "Miami, FL 33134",
		PaymentURL: "https://pay.example.test",
	})
	issued := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		days, tons int64
	}{
		{name: "base fee only", days: 0, tons: 0},
		{name: "with overages", days: 3, tons: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleContract(tt.days, tt.tons)
			content, err := g.Invoice(c, invoice.Compute(c), issued)
			if err != nil {
				t.Fatalf("render invoice: %v", err)
			}
			if !bytes.HasPrefix(content, []byte("%PDF-")) {
				t.Fatalf("output is not a PDF")
			}
			if pages := g.render(c, invoice.Compute(c), issued).PageCount(); pages != 2 {
				t.Fatalf("expected 2 pages, got %d", pages)
			}
		})
	}
}

func TestMoney(t *testing.T) {
	if got := money(decimal.RequireFromString("12.5")); got != "$12.50" {
		t.Fatalf("money = %q", got)
	}
}
