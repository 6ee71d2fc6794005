package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freshchain/freshchain/internal/analytics"
	"github.com/freshchain/freshchain/internal/procurement"
)

func TestBuildInvoiceHTML(t *testing.T) {
	detail := procurement.OrderDetail{
		Order: procurement.Order{
			Number:       "ORD-1",
			SupplierName: "Tani <Makmur>",
		},
		Invoice: procurement.Invoice{
			Number:      "INV-1",
			TotalAmount: 120000,
			Status:      procurement.InvoiceStatusPending,
		},
		InvoiceItems: []procurement.InvoiceItem{
			{ProductName: "Rice", Quantity: 10, Price: 12000},
		},
		Payment: procurement.Payment{
			Number: "PAY-1",
			Amount: 120000,
			Method: "bank_transfer",
			Status: procurement.PaymentStatusPending,
		},
	}

	html := BuildInvoiceHTML(detail)

	assert.Contains(t, html, "Invoice INV-1")
	assert.Contains(t, html, "Tani &lt;Makmur&gt;", "supplier names are escaped")
	assert.Contains(t, html, "Rice")
	assert.Contains(t, html, "120,000.00")
	assert.Contains(t, html, "PAY-1")
}

func TestBuildSummaryHTML(t *testing.T) {
	summary := analytics.Summary{
		TotalMaterials:  5,
		TotalStockValue: 1500000,
		OrdersByStatus:  []analytics.StatusCount{{Status: "pending", Count: 3}},
		LowStock:        []analytics.LowStockItem{{Name: "Chili", Quantity: 2, Price: 40000}},
	}

	html := BuildSummaryHTML(summary)

	assert.Contains(t, html, "Procurement Analytics")
	assert.Contains(t, html, "1,500,000.00")
	assert.Contains(t, html, "pending")
	assert.Contains(t, html, "Chili")
}
