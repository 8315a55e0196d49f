package handlers

import "github.com/go-chi/chi/v5"

// Routes mounts the API endpoints on r. Authentication is applied by the
// caller.
func Routes(r chi.Router, users *UserHandler, customers *CustomerHandler, transactions *TransactionHandler, reports *ReportHandler, uploads *UploadHandler) {
	r.Get("/user", users.CurrentUser)

	r.Get("/customers", customers.ListCustomers)
	r.Post("/customers", customers.CreateCustomer)
	r.Get("/customers/{id}", customers.GetCustomer)
	r.Put("/customers/{id}", customers.UpdateCustomer)
	r.Patch("/customers/{id}", customers.UpdateCustomer)

	r.Get("/transactions", transactions.ListTransactions)
	r.Post("/transactions", transactions.CreateTransaction)
	r.Get("/transactions/{id}", transactions.GetTransaction)
	r.Post("/transactions/{id}/extend", transactions.Extend)
	r.Post("/transactions/{id}/repay", transactions.Repay)

	r.Get("/dashboard/stats", reports.Stats)
	r.Get("/inventory", reports.Inventory)

	r.Post("/uploads", uploads.UploadItemPhoto)
}
