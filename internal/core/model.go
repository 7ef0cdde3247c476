package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of a sales invoice. Apart from the
// terminal Cancelled state it is fully determined by (total, paid) —
// see InvoiceStatusFor.
type InvoiceStatus string

const (
	InvoiceUnpaid        InvoiceStatus = "Unpaid"
	InvoicePartiallyPaid InvoiceStatus = "Partially Paid"
	InvoicePaid          InvoiceStatus = "Paid"
	InvoiceCancelled     InvoiceStatus = "Cancelled"
)

// PaymentStatus is the payment state of a purchase order.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "Unpaid"
	PaymentPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentPaid          PaymentStatus = "Paid"
)

// DeliveryStatus is the fulfilment state of a purchase order.
// Pending → {Shipped, Cancelled}; Shipped → {Received, Cancelled};
// Received and Cancelled are terminal.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryShipped   DeliveryStatus = "Shipped"
	DeliveryReceived  DeliveryStatus = "Received"
	DeliveryCancelled DeliveryStatus = "Cancelled"
)

// CommissionType selects how a commission rule's rate is applied.
type CommissionType string

const (
	CommissionPercentage CommissionType = "Percentage"
	CommissionFixed      CommissionType = "Fixed"
)

// ProductionStatus is the state of a production order.
type ProductionStatus string

const (
	ProductionPending   ProductionStatus = "Pending"
	ProductionCompleted ProductionStatus = "Completed"
	ProductionCancelled ProductionStatus = "Cancelled"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Distributor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Tier      string    `json:"tier"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// RawMaterial is a purchased input tracked at weighted-average unit cost.
type RawMaterial struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FormulaComponent is one raw-material line of a finished good's bill of
// materials: the quantity consumed per unit produced.
type FormulaComponent struct {
	ID             int64           `json:"id"`
	FinishedGoodID int64           `json:"finished_good_id"`
	RawMaterialID  int64           `json:"raw_material_id"`
	MaterialName   string          `json:"material_name"`
	QtyPerUnit     decimal.Decimal `json:"qty_per_unit"`
	Position       int             `json:"position"`
}

// FinishedGood is a sellable product. UnitCost is derived from the formula
// at formula-creation time and blended on production (it is NOT recomputed
// when underlying raw-material costs drift afterwards).
type FinishedGood struct {
	ID           int64              `json:"id"`
	ProductName  string             `json:"product_name"`
	Quantity     decimal.Decimal    `json:"quantity"`
	UnitCost     decimal.Decimal    `json:"unit_cost"`
	SellingPrice *decimal.Decimal   `json:"selling_price,omitempty"`
	Components   []FormulaComponent `json:"components,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// CommissionRule matches a sale line when AppliesTo contains the product
// name, the distributor name, OR the distributor tier.
type CommissionRule struct {
	ID        int64           `json:"id"`
	RuleName  string          `json:"rule_name"`
	AppliesTo []string        `json:"applies_to"`
	Type      CommissionType  `json:"type"`
	Rate      decimal.Decimal `json:"rate"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

type InvoiceItem struct {
	ID             int64           `json:"id"`
	InvoiceID      int64           `json:"invoice_id"`
	LineNumber     int             `json:"line_number"`
	FinishedGoodID int64           `json:"finished_good_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// Invoice invariant: DueAmount == max(0, TotalAmount − PaidAmount) at all
// times. CustomerName is a display snapshot; DistributorID is the join key.
type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	DistributorID *int64          `json:"distributor_id,omitempty"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       *string         `json:"due_date,omitempty"`
	Items         []InvoiceItem   `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	DueAmount     decimal.Decimal `json:"due_amount"`
	Status        InvoiceStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

type PurchaseOrderItem struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	LineNumber    int             `json:"line_number"`
	RawMaterialID int64           `json:"raw_material_id"`
	MaterialName  string          `json:"material_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// PurchaseOrder invariant: Amount == Σ(quantity×unitCost) − Discount + Tax
// and DueAmount == max(0, Amount − PaidAmount).
type PurchaseOrder struct {
	ID             int64               `json:"id"`
	SupplierID     int64               `json:"supplier_id"`
	SupplierName   string              `json:"supplier_name"`
	OrderDate      string              `json:"order_date"`
	Items          []PurchaseOrderItem `json:"items"`
	Discount       decimal.Decimal     `json:"discount"`
	Tax            decimal.Decimal     `json:"tax"`
	Amount         decimal.Decimal     `json:"amount"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	DueAmount      decimal.Decimal     `json:"due_amount"`
	PaymentStatus  PaymentStatus       `json:"payment_status"`
	DeliveryStatus DeliveryStatus      `json:"delivery_status"`
	CreatedAt      time.Time           `json:"created_at"`
	ReceivedAt     *time.Time          `json:"received_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
}

// SalesCommission is created once per (invoice item × matching rule) at
// invoice creation and is immutable afterwards. Invoice cancellation does
// not reverse these records.
type SalesCommission struct {
	ID               int64           `json:"id"`
	InvoiceID        int64           `json:"invoice_id"`
	InvoiceItemID    *int64          `json:"invoice_item_id,omitempty"`
	RuleID           int64           `json:"rule_id"`
	RuleName         string          `json:"rule_name"`
	CommissionType   CommissionType  `json:"commission_type"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	DistributorID    *int64          `json:"distributor_id,omitempty"`
	FinishedGoodID   *int64          `json:"finished_good_id,omitempty"`
	SaleDate         string          `json:"sale_date"`
	SaleAmount       decimal.Decimal `json:"sale_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SalesReturn is created once per return transaction and is immutable.
type SalesReturn struct {
	ID            int64           `json:"id"`
	InvoiceID     int64           `json:"invoice_id"`
	CustomerName  string          `json:"customer_name"`
	ReturnDate    string          `json:"return_date"`
	Amount        decimal.Decimal `json:"amount"`
	ReturnedUnits decimal.Decimal `json:"returned_units"`
	Reason        string          `json:"reason"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ProductionOrder struct {
	ID             int64            `json:"id"`
	FinishedGoodID int64            `json:"finished_good_id"`
	ProductName    string           `json:"product_name"`
	Quantity       decimal.Decimal  `json:"quantity"`
	BatchUnitCost  *decimal.Decimal `json:"batch_unit_cost,omitempty"`
	Status         ProductionStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SalaryPayment struct {
	ID           int64           `json:"id"`
	EmployeeName string          `json:"employee_name"`
	Amount       decimal.Decimal `json:"amount"`
	PayPeriod    string          `json:"pay_period"`
	PayDate      string          `json:"pay_date"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ExpenseDraft is the structured output of the expense-capture assistant.
// It is a proposal only — nothing is persisted until the caller confirms it
// through PayrollService.RecordExpense.
type ExpenseDraft struct {
	Category    string  `json:"category" jsonschema_description:"Expense category, e.g. 'Utilities', 'Transport', 'Maintenance'"`
	Description string  `json:"description" jsonschema_description:"Short human-readable description of the expense"`
	Amount      string  `json:"amount" jsonschema_description:"The exact monetary amount as a positive decimal string, e.g. '1250.00'"`
	ExpenseDate string  `json:"expense_date" jsonschema_description:"The expense date in YYYY-MM-DD format; use today's date if unspecified"`
	Confidence  float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning   string  `json:"reasoning" jsonschema_description:"Explanation of how the fields were extracted"`
}
