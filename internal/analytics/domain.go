package analytics

// LowStockItem is a material at or below the low-stock threshold.
type LowStockItem struct {
	MaterialID int64   `json:"material_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Quantity   int64   `json:"quantity"`
	Price      float64 `json:"price"`
}

// StatusCount is one order-status bucket.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Summary is the back-office dashboard aggregate.
type Summary struct {
	TotalMaterials    int64          `json:"total_materials"`
	TotalStockValue   float64        `json:"total_stock_value"`
	LowStock          []LowStockItem `json:"low_stock"`
	PendingRejections int64          `json:"pending_rejections"`
	PendingReturns    int64          `json:"pending_returns"`
	OrdersByStatus    []StatusCount  `json:"orders_by_status"`
	TotalOrderValue   float64        `json:"total_order_value"`
}
