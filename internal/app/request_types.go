package app

import "github.com/shopspring/decimal"

// Request DTOs are the JSON shapes the web adapter decodes. Field names match
// the frontend's Spanish vocabulary; validate tags are enforced by the
// adapter before the request reaches the service layer.

type OrderItemRequest struct {
	SKU           string           `json:"sku" validate:"required"`
	Name          string           `json:"nombre" validate:"required"`
	Quantity      int              `json:"cantidad" validate:"required,gt=0"`
	UnitPriceUSD  decimal.Decimal  `json:"precio_unitario_usd" validate:"required"`
	UnitWeightKg  *decimal.Decimal `json:"peso_unitario_kg,omitempty"`
	UnitVolumeCBM *decimal.Decimal `json:"volumen_unitario_cbm,omitempty"`
}

type OrderRequest struct {
	Supplier       string             `json:"proveedor" validate:"required"`
	OrderDate      string             `json:"fecha_orden" validate:"required"`
	Category       string             `json:"categoria"`
	LotDescription string             `json:"descripcion_lote"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type PaymentRequest struct {
	OrderCode      string          `json:"orden" validate:"required"`
	Amount         decimal.Decimal `json:"monto" validate:"required"`
	Currency       string          `json:"moneda"`
	ExchangeRate   decimal.Decimal `json:"tasa_cambio" validate:"required"`
	BankCommission decimal.Decimal `json:"comision_bancaria"`
	PaymentDate    string          `json:"fecha_pago" validate:"required"`
	Notes          string          `json:"notas"`
}

type ExpenseRequest struct {
	Concept     string          `json:"concepto" validate:"required"`
	AmountRD    decimal.Decimal `json:"monto_rd" validate:"required"`
	ExpenseDate string          `json:"fecha_gasto" validate:"required"`
	Notes       string          `json:"notas"`
	OrderCodes  []string        `json:"ordenes" validate:"required,min=1"`
}

type DistributionConfigRequest struct {
	CostType string `json:"tipo_costo" validate:"required"`
	Method   string `json:"metodo" validate:"required,oneof=peso volumen valor_fob unidades"`
}

type ReceptionRequest struct {
	OrderCode   string `json:"orden" validate:"required"`
	ItemSKU     string `json:"sku"` // empty for mixed/legacy lots
	ArrivalDate string `json:"fecha_llegada" validate:"required"`
	Warehouse   string `json:"almacen" validate:"required"`
	Quantity    int    `json:"cantidad" validate:"required,gt=0"`
	Notes       string `json:"notas"`
}
