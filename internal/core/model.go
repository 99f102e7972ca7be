package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionMethod is the basis used to allocate a shared cost across the
// line items of an order. The four values are wire literals shared with the
// frontend and the distribution_configs table; do not rename them.
type DistributionMethod string

const (
	MethodWeight   DistributionMethod = "peso"
	MethodVolume   DistributionMethod = "volumen"
	MethodFOBValue DistributionMethod = "valor_fob"
	MethodUnits    DistributionMethod = "unidades"
)

// Valid reports whether m is one of the four known methods.
func (m DistributionMethod) Valid() bool {
	switch m {
	case MethodWeight, MethodVolume, MethodFOBValue, MethodUnits:
		return true
	}
	return false
}

// Cost-type labels for distribution configuration lookups. Each shared-cost
// category can be configured with its own allocation method.
const (
	CostTypePayments    = "pagos_proveedor"
	CostTypeLogistics   = "gastos_logisticos"
	CostTypeCommissions = "comisiones_bancarias"
)

// MaxItemSubtotalUSD caps a single line's quantity × unit price. Anything above
// this is almost certainly a data-entry mistake (fat-fingered quantity or price).
var MaxItemSubtotalUSD = decimal.NewFromInt(10_000_000)

// Order is a purchase order placed with an overseas supplier.
// Orders are soft-deleted: deleted_at is set and the row stays for history.
type Order struct {
	ID             int         `json:"id"`
	Code           string      `json:"codigo"`
	Supplier       string      `json:"proveedor"`
	OrderDate      string      `json:"fecha_orden"` // YYYY-MM-DD
	Category       string      `json:"categoria"`
	LotDescription string      `json:"descripcion_lote"`
	DeletedAt      *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Items          []OrderItem `json:"items,omitempty"`
}

// OrderItem is one product line within an order. UnitWeightKg and
// UnitVolumeCBM are nil on legacy records that predate weight/volume capture.
type OrderItem struct {
	ID            int              `json:"id"`
	OrderID       int              `json:"order_id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"nombre"`
	Quantity      int              `json:"cantidad"`
	UnitPriceUSD  decimal.Decimal  `json:"precio_unitario_usd"`
	SubtotalUSD   decimal.Decimal  `json:"subtotal_usd"`
	UnitWeightKg  *decimal.Decimal `json:"peso_unitario_kg,omitempty"`
	UnitVolumeCBM *decimal.Decimal `json:"volumen_unitario_cbm,omitempty"`
}

// TotalWeightKg returns unit weight × quantity, or zero when weight is absent.
func (it OrderItem) TotalWeightKg() decimal.Decimal {
	if it.UnitWeightKg == nil {
		return decimal.Zero
	}
	return it.UnitWeightKg.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// TotalVolumeCBM returns unit volume × quantity, or zero when volume is absent.
func (it OrderItem) TotalVolumeCBM() decimal.Decimal {
	if it.UnitVolumeCBM == nil {
		return decimal.Zero
	}
	return it.UnitVolumeCBM.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Payment is money wired to the supplier against one order. Amount is in the
// payment currency (normally USD); ExchangeRate converts it to RD$.
// BankCommission is recorded in RD$.
type Payment struct {
	ID             int             `json:"id"`
	Code           string          `json:"codigo"`
	OrderID        int             `json:"order_id"`
	Amount         decimal.Decimal `json:"monto"`
	Currency       string          `json:"moneda"`
	ExchangeRate   decimal.Decimal `json:"tasa_cambio"`
	BankCommission decimal.Decimal `json:"comision_bancaria"`
	PaymentDate    string          `json:"fecha_pago"` // YYYY-MM-DD
	Notes          string          `json:"notas"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AmountRD returns the payment amount converted to RD$ at its own rate.
func (p Payment) AmountRD() decimal.Decimal {
	return p.Amount.Mul(p.ExchangeRate)
}

// LogisticsExpense is a freight/customs/handling expense in RD$, linkable to
// one or more orders. OrderShareRD is the portion attributed to the order the
// expense was fetched for: amount divided by the number of linked orders.
type LogisticsExpense struct {
	ID           int             `json:"id"`
	Code         string          `json:"codigo"`
	Concept      string          `json:"concepto"`
	AmountRD     decimal.Decimal `json:"monto_rd"`
	ExpenseDate  string          `json:"fecha_gasto"` // YYYY-MM-DD
	Notes        string          `json:"notas"`
	OrderIDs     []int           `json:"order_ids,omitempty"`
	OrderShareRD decimal.Decimal `json:"monto_orden_rd"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DistributionConfig maps a cost-type label to its allocation method.
// At most one active row exists per cost type.
type DistributionConfig struct {
	ID        int                `json:"id"`
	CostType  string             `json:"tipo_costo"`
	Method    DistributionMethod `json:"metodo"`
	Active    bool               `json:"activo"`
	CreatedAt time.Time          `json:"created_at"`
}

// Reception records physical goods arriving at a warehouse. OrderItemID is nil
// for mixed/legacy lots that cannot be attributed to a single line item.
// UnitCostRD and TotalCostRD are frozen at create/update time; later payments
// or expenses on the order do not change them.
type Reception struct {
	ID          int             `json:"id"`
	Code        string          `json:"codigo"`
	OrderID     int             `json:"order_id"`
	OrderItemID *int            `json:"order_item_id,omitempty"`
	ArrivalDate string          `json:"fecha_llegada"` // YYYY-MM-DD
	Warehouse   string          `json:"almacen"`
	Quantity    int             `json:"cantidad"`
	UnitCostRD  decimal.Decimal `json:"costo_unitario_rd"`
	TotalCostRD decimal.Decimal `json:"costo_total_rd"`
	Notes       string          `json:"notas"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
