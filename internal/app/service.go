package app

import (
	"context"

	"importops/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// HTTP types and no display logic.
type ApplicationService interface {
	// Orders
	CreateOrder(ctx context.Context, req OrderRequest) (*core.Order, error)
	GetOrder(ctx context.Context, code string) (*core.Order, error)
	ListOrders(ctx context.Context) ([]core.Order, error)
	UpdateOrder(ctx context.Context, code string, req OrderRequest) (*core.Order, error)
	DeleteOrder(ctx context.Context, code string) error

	// Payments
	RecordPayment(ctx context.Context, req PaymentRequest) (*core.Payment, error)
	ListPayments(ctx context.Context, orderCode string) ([]core.Payment, error)
	DeletePayment(ctx context.Context, code string) error

	// Logistics expenses
	RecordExpense(ctx context.Context, req ExpenseRequest) (*core.LogisticsExpense, error)
	ListExpenses(ctx context.Context) ([]core.LogisticsExpense, error)
	ListExpensesForOrder(ctx context.Context, orderCode string) ([]core.LogisticsExpense, error)
	DeleteExpense(ctx context.Context, code string) error

	// Distribution configuration
	SetDistributionMethod(ctx context.Context, req DistributionConfigRequest) (*core.DistributionConfig, error)
	ListDistributionConfigs(ctx context.Context) ([]core.DistributionConfig, error)

	// Receptions
	CreateReception(ctx context.Context, req ReceptionRequest) (*core.Reception, error)
	UpdateReception(ctx context.Context, code string, req ReceptionRequest) (*core.Reception, error)
	GetReception(ctx context.Context, code string) (*core.Reception, error)
	ListReceptions(ctx context.Context, orderCode string) ([]core.Reception, error)
	DeleteReception(ctx context.Context, code string) error

	// Reports (read-only)
	CostAnalysis(ctx context.Context, orderCode *string) (*core.CostAnalysisReport, error)
	InventorySummary(ctx context.Context) ([]core.InventoryRow, error)
}
