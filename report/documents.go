package report

import (
	"context"
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/freshchain/freshchain/internal/analytics"
	"github.com/freshchain/freshchain/internal/procurement"
)

var printer = message.NewPrinter(language.English)

func money(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Renderer builds HTML documents and converts them through Gotenberg.
type Renderer struct {
	client *Client
}

// NewRenderer constructs a renderer.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client}
}

// RenderSummary converts the analytics summary into a PDF.
func (r *Renderer) RenderSummary(ctx context.Context, summary analytics.Summary) ([]byte, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("report: renderer not configured")
	}
	return r.client.RenderHTML(ctx, BuildSummaryHTML(summary))
}

// RenderInvoice converts an order's invoice into a PDF.
func (r *Renderer) RenderInvoice(ctx context.Context, detail procurement.OrderDetail) ([]byte, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("report: renderer not configured")
	}
	return r.client.RenderHTML(ctx, BuildInvoiceHTML(detail))
}

// BuildSummaryHTML renders the dashboard summary document.
func BuildSummaryHTML(summary analytics.Summary) string {
	var b strings.Builder
	writeHead(&b, "Procurement Analytics")
	b.WriteString("<h1>Procurement Analytics</h1>")

	b.WriteString("<section><h2>Overview</h2><table><tbody>")
	writeRow(&b, "Total Materials", printer.Sprintf("%d", summary.TotalMaterials))
	writeRow(&b, "Total Stock Value", money(summary.TotalStockValue))
	writeRow(&b, "Pending Rejections", printer.Sprintf("%d", summary.PendingRejections))
	writeRow(&b, "Pending Returns", printer.Sprintf("%d", summary.PendingReturns))
	writeRow(&b, "Total Order Value", money(summary.TotalOrderValue))
	b.WriteString("</tbody></table></section>")

	if len(summary.OrdersByStatus) > 0 {
		b.WriteString("<section><h2>Orders by Status</h2><table><thead><tr><th>Status</th><th>Count</th></tr></thead><tbody>")
		for _, sc := range summary.OrdersByStatus {
			writeRow(&b, sc.Status, printer.Sprintf("%d", sc.Count))
		}
		b.WriteString("</tbody></table></section>")
	}

	if len(summary.LowStock) > 0 {
		b.WriteString("<section><h2>Low Stock</h2><table><thead><tr><th>Material</th><th>Quantity</th><th>Price</th></tr></thead><tbody>")
		for _, item := range summary.LowStock {
			b.WriteString("<tr><td class=\"label\">")
			b.WriteString(html.EscapeString(item.Name))
			b.WriteString("</td><td>")
			b.WriteString(printer.Sprintf("%d", item.Quantity))
			b.WriteString("</td><td>")
			b.WriteString(money(item.Price))
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table></section>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

// BuildInvoiceHTML renders an order's invoice document.
func BuildInvoiceHTML(detail procurement.OrderDetail) string {
	var b strings.Builder
	writeHead(&b, "Invoice "+detail.Invoice.Number)
	b.WriteString(fmt.Sprintf("<h1>Invoice %s</h1>", html.EscapeString(detail.Invoice.Number)))

	b.WriteString("<section><table><tbody>")
	writeRow(&b, "Order", detail.Order.Number)
	writeRow(&b, "Supplier", detail.Order.SupplierName)
	writeRow(&b, "Status", string(detail.Invoice.Status))
	writeRow(&b, "Total", money(detail.Invoice.TotalAmount))
	b.WriteString("</tbody></table></section>")

	b.WriteString("<section><h2>Items</h2><table><thead><tr><th>Product</th><th>Quantity</th><th>Price</th><th>Total</th></tr></thead><tbody>")
	for _, item := range detail.InvoiceItems {
		b.WriteString("<tr><td class=\"label\">")
		b.WriteString(html.EscapeString(item.ProductName))
		b.WriteString("</td><td>")
		b.WriteString(printer.Sprintf("%d", item.Quantity))
		b.WriteString("</td><td>")
		b.WriteString(money(item.Price))
		b.WriteString("</td><td>")
		b.WriteString(money(item.Price * float64(item.Quantity)))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table></section>")

	if detail.Payment.Number != "" {
		b.WriteString("<section><h2>Payment</h2><table><tbody>")
		writeRow(&b, "Payment", detail.Payment.Number)
		writeRow(&b, "Method", detail.Payment.Method)
		writeRow(&b, "Status", string(detail.Payment.Status))
		writeRow(&b, "Amount", money(detail.Payment.Amount))
		b.WriteString("</tbody></table></section>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

func writeHead(b *strings.Builder, title string) {
	b.WriteString("<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{text-align:left;background:#f5f5f5;}section{margin-bottom:24px;} .label{text-align:left;}")
	b.WriteString("</style></head><body>")
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><td class=\"label\">")
	b.WriteString(html.EscapeString(label))
	b.WriteString("</td><td>")
	b.WriteString(html.EscapeString(value))
	b.WriteString("</td></tr>")
}
