package app

// Amount fields arrive as strings from the wire and are parsed to exact
// decimals at the app boundary; a bad string is a validation error, never a
// silent zero.

// CreateInvoiceRequest is the input for posting a new sale.
type CreateInvoiceRequest struct {
	DistributorID *int64             `json:"distributor_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	InvoiceDate   string             `json:"invoice_date"` // YYYY-MM-DD
	DueDate       string             `json:"due_date,omitempty"`
	PaidAmount    string             `json:"paid_amount,omitempty"`
	Items         []InvoiceLineInput `json:"items"`
}

// InvoiceLineInput is a single line within a CreateInvoiceRequest.
type InvoiceLineInput struct {
	FinishedGoodID int64  `json:"finished_good_id"`
	Quantity       string `json:"quantity"`
	UnitPrice      string `json:"unit_price,omitempty"` // empty means "use product selling price"
}

// ProcessReturnRequest is the input for a customer return.
type ProcessReturnRequest struct {
	InvoiceID  int64             `json:"invoice_id"`
	ReturnDate string            `json:"return_date"` // YYYY-MM-DD
	Reason     string            `json:"reason,omitempty"`
	Items      []ReturnLineInput `json:"items"`
}

// ReturnLineInput is a single line within a ProcessReturnRequest.
type ReturnLineInput struct {
	FinishedGoodID int64  `json:"finished_good_id"`
	Quantity       string `json:"quantity"`
}

// CreatePurchaseOrderRequest is the input for opening a purchase order.
type CreatePurchaseOrderRequest struct {
	SupplierID int64     `json:"supplier_id"`
	OrderDate  string    `json:"order_date"` // YYYY-MM-DD
	Discount   string    `json:"discount,omitempty"`
	Tax        string    `json:"tax,omitempty"`
	PaidAmount string    `json:"paid_amount,omitempty"`
	Items      []POLineInput `json:"items"`
}

// POLineInput is a single line within a CreatePurchaseOrderRequest.
type POLineInput struct {
	RawMaterialID int64  `json:"raw_material_id"`
	Quantity      string `json:"quantity"`
	UnitCost      string `json:"unit_cost"`
}

// CreateRawMaterialRequest is the input for registering a raw material.
type CreateRawMaterialRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Unit     string `json:"unit,omitempty"`
	UnitCost string `json:"unit_cost,omitempty"`
}

// CreateFinishedGoodRequest defines a product and its formula.
type CreateFinishedGoodRequest struct {
	ProductName  string                  `json:"product_name"`
	SellingPrice string                  `json:"selling_price,omitempty"`
	Components   []FormulaComponentInput `json:"components"`
}

// FormulaComponentInput is one bill-of-materials line.
type FormulaComponentInput struct {
	RawMaterialID int64  `json:"raw_material_id"`
	QtyPerUnit    string `json:"qty_per_unit"`
}

// CreatePartnerRequest covers both distributors and suppliers; Tier is used
// only for distributors and Category only for suppliers.
type CreatePartnerRequest struct {
	Name     string `json:"name"`
	Tier     string `json:"tier,omitempty"`
	Category string `json:"category,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// CreateCommissionRuleRequest is the input for a new commission rule.
type CreateCommissionRuleRequest struct {
	RuleName  string   `json:"rule_name"`
	AppliesTo []string `json:"applies_to"`
	RuleType  string   `json:"rule_type"` // "Percentage" or "Fixed"
	Rate      string   `json:"rate"`
}

// RecordExpenseRequest is the input for recording an operating expense.
type RecordExpenseRequest struct {
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	ExpenseDate string `json:"expense_date"` // YYYY-MM-DD
}

// RecordSalaryRequest is the input for recording a salary payment.
type RecordSalaryRequest struct {
	EmployeeName string `json:"employee_name"`
	Amount       string `json:"amount"`
	PayPeriod    string `json:"pay_period,omitempty"`
	PayDate      string `json:"pay_date"` // YYYY-MM-DD
}
