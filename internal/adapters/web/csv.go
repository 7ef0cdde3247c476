package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"
)

// exportInvoicesCSV streams the invoice list as a CSV attachment, honoring
// the same status filter as the JSON listing.
func (h *Handler) exportInvoicesCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("invoices-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"invoice_number", "invoice_date", "due_date", "customer_name",
		"customer_email", "status", "total_amount", "paid_amount", "due_amount",
	})
	for _, inv := range result.Invoices {
		dueDate := ""
		if inv.DueDate != nil {
			dueDate = *inv.DueDate
		}
		_ = cw.Write([]string{
			inv.InvoiceNumber,
			inv.InvoiceDate,
			dueDate,
			inv.CustomerName,
			inv.CustomerEmail,
			string(inv.Status),
			inv.TotalAmount.StringFixed(2),
			inv.PaidAmount.StringFixed(2),
			inv.DueAmount.StringFixed(2),
		})
	}
	cw.Flush()
}
