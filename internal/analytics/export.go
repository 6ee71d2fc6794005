package analytics

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func formatFloat(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// WriteSummaryCSV serialises the dashboard summary to CSV.
func WriteSummaryCSV(w io.Writer, summary Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Total Materials", printer.Sprintf("%d", summary.TotalMaterials)},
		{"Total Stock Value", formatFloat(summary.TotalStockValue)},
		{"Pending Rejections", printer.Sprintf("%d", summary.PendingRejections)},
		{"Pending Returns", printer.Sprintf("%d", summary.PendingReturns)},
		{"Total Order Value", formatFloat(summary.TotalOrderValue)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	for _, sc := range summary.OrdersByStatus {
		if err := writer.Write([]string{"Orders " + sc.Status, printer.Sprintf("%d", sc.Count)}); err != nil {
			return err
		}
	}

	if len(summary.LowStock) > 0 {
		if err := writer.Write([]string{}); err != nil {
			return err
		}
		if err := writer.Write([]string{"Low Stock Material", "Quantity"}); err != nil {
			return err
		}
		for _, item := range summary.LowStock {
			if err := writer.Write([]string{item.Name, printer.Sprintf("%d", item.Quantity)}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
