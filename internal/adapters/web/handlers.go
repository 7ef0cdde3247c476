package web

import (
	"net/http"
	"strconv"
	"time"

	"erp-backend/internal/app"
	"erp-backend/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	users     core.UserService
	jwtSecret string
	tokenTTL  time.Duration
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, users core.UserService, jwtSecret string, tokenTTL time.Duration, allowedOrigins []string, log zerolog.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API ─────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		// Sales
		r.Post("/api/invoices", h.createInvoice)
		r.Get("/api/invoices", h.listInvoices)
		r.Get("/api/invoices/export", h.exportInvoicesCSV)
		r.Get("/api/invoices/{ref}", h.getInvoice)
		r.Post("/api/invoices/{id}/payments", h.recordInvoicePayment)
		r.Post("/api/invoices/{id}/cancel", h.cancelInvoice)
		r.Get("/api/invoices/{id}/commissions", h.listInvoiceCommissions)

		// Returns
		r.Post("/api/returns", h.processReturn)
		r.Get("/api/returns", h.listReturns)

		// Purchasing
		r.Post("/api/purchase-orders", h.createPurchaseOrder)
		r.Get("/api/purchase-orders", h.listPurchaseOrders)
		r.Get("/api/purchase-orders/{id}", h.getPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/ship", h.shipPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/receive", h.receivePurchaseOrder)
		r.Post("/api/purchase-orders/{id}/cancel", h.cancelPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/payments", h.recordPurchasePayment)

		// Production
		r.Post("/api/production-orders", h.createProductionOrder)
		r.Get("/api/production-orders", h.listProductionOrders)
		r.Post("/api/production-orders/{id}/complete", h.completeProductionOrder)
		r.Post("/api/production-orders/{id}/cancel", h.cancelProductionOrder)

		// Master data
		r.Get("/api/raw-materials", h.listRawMaterials)
		r.Post("/api/raw-materials", h.createRawMaterial)
		r.Post("/api/raw-materials/{id}/adjust", h.adjustRawMaterialStock)
		r.Get("/api/finished-goods", h.listFinishedGoods)
		r.Post("/api/finished-goods", h.createFinishedGood)
		r.Put("/api/finished-goods/{id}/price", h.setSellingPrice)
		r.Get("/api/distributors", h.listDistributors)
		r.Post("/api/distributors", h.createDistributor)
		r.Get("/api/suppliers", h.listSuppliers)
		r.Post("/api/suppliers", h.createSupplier)
		r.Get("/api/commission-rules", h.listCommissionRules)
		r.Post("/api/commission-rules", h.createCommissionRule)
		r.Put("/api/commission-rules/{id}/active", h.setCommissionRuleActive)

		// Payroll and expenses
		r.Post("/api/expenses", h.recordExpense)
		r.Get("/api/expenses", h.listExpenses)
		r.Post("/api/expenses/interpret", h.interpretExpense)
		r.Post("/api/salaries", h.recordSalaryPayment)
		r.Get("/api/salaries", h.listSalaryPayments)

		// Reporting
		r.Get("/api/reports/sales-summary", h.salesSummary)
		r.Get("/api/reports/overdue", h.overdueInvoices)
		r.Get("/api/reports/commissions", h.commissionsByDistributor)
		r.Get("/api/reports/stock-valuation", h.stockValuation)
		r.Get("/api/reports/expense-summary", h.expenseSummary)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// pathID parses the {id} URL parameter as int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, "invalid id in path", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// dateRange reads the from/to query parameters, defaulting to the current
// month when absent.
func dateRange(r *http.Request) (string, string) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		now := time.Now()
		if from == "" {
			from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		}
		if to == "" {
			to = now.Format("2006-01-02")
		}
	}
	return from, to
}

// ── Sales ────────────────────────────────────────────────────────────────────

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetInvoice(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) recordInvoicePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RecordInvoicePayment(r.Context(), id, req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CancelInvoice(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listInvoiceCommissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListInvoiceCommissions(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Returns ──────────────────────────────────────────────────────────────────

func (h *Handler) processReturn(w http.ResponseWriter, r *http.Request) {
	var req app.ProcessReturnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ProcessReturn(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	var invoiceID *int64
	if s := r.URL.Query().Get("invoice_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, r, "invalid invoice_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		invoiceID = &id
	}
	result, err := h.svc.ListReturns(r.Context(), invoiceID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Purchasing ───────────────────────────────────────────────────────────────

func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), r.URL.Query().Get("delivery_status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) shipPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ShipPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) receivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ReceivePurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) cancelPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CancelPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) recordPurchasePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RecordPurchasePayment(r.Context(), id, req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Production ───────────────────────────────────────────────────────────────

func (h *Handler) createProductionOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FinishedGoodID int64  `json:"finished_good_id"`
		Quantity       string `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateProductionOrder(r.Context(), req.FinishedGoodID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listProductionOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProductionOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) completeProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CompleteProductionOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) cancelProductionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CancelProductionOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Master data ──────────────────────────────────────────────────────────────

func (h *Handler) listRawMaterials(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListRawMaterials(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createRawMaterial(w http.ResponseWriter, r *http.Request) {
	var req app.CreateRawMaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateRawMaterial(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) adjustRawMaterialStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Delta  string `json:"delta"`
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.AdjustRawMaterialStock(r.Context(), id, req.Delta, req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listFinishedGoods(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListFinishedGoods(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createFinishedGood(w http.ResponseWriter, r *http.Request) {
	var req app.CreateFinishedGoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateFinishedGood(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) setSellingPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Price string `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.SetSellingPrice(r.Context(), id, req.Price)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listDistributors(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListDistributors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createDistributor(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateDistributor(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSuppliers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePartnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateSupplier(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listCommissionRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	result, err := h.svc.ListCommissionRules(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) createCommissionRule(w http.ResponseWriter, r *http.Request) {
	var req app.CreateCommissionRuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateCommissionRule(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) setCommissionRuleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.SetCommissionRuleActive(r.Context(), id, req.Active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Payroll and expenses ─────────────────────────────────────────────────────

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req app.RecordExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RecordExpense(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	result, err := h.svc.ListExpenses(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) interpretExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.InterpretExpense(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) recordSalaryPayment(w http.ResponseWriter, r *http.Request) {
	var req app.RecordSalaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.RecordSalaryPayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) listSalaryPayments(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	result, err := h.svc.ListSalaryPayments(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// ── Reporting ────────────────────────────────────────────────────────────────

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	result, err := h.svc.SalesSummary(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) overdueInvoices(w http.ResponseWriter, r *http.Request) {
	asOf := r.URL.Query().Get("as_of")
	if asOf == "" {
		asOf = time.Now().Format("2006-01-02")
	}
	result, err := h.svc.OverdueInvoices(r.Context(), asOf)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) commissionsByDistributor(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	result, err := h.svc.CommissionsByDistributor(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) stockValuation(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.StockValuation(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) expenseSummary(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	result, err := h.svc.ExpenseSummary(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
