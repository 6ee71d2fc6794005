package procurement

// Change-feed table names published after successful workflows. Consumers
// treat an event as a freshness hint only and refetch the named table.
const (
	tableOrders          = "orders"
	tableInvoices        = "invoices"
	tablePayments        = "payments"
	tableTransactions    = "transactions"
	tableSupplierHistory = "supplier_history"
	tableProducts        = "products"
)
