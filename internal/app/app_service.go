package app

import (
	"context"

	"importops/internal/core"
)

type appService struct {
	orders     core.OrderService
	payments   core.PaymentService
	expenses   core.ExpenseService
	configs    core.DistributionConfigService
	receptions core.ReceptionService
	reports    core.ReportingService
}

// NewAppService wires the domain services behind the ApplicationService facade.
func NewAppService(
	orders core.OrderService,
	payments core.PaymentService,
	expenses core.ExpenseService,
	configs core.DistributionConfigService,
	receptions core.ReceptionService,
	reports core.ReportingService,
) ApplicationService {
	return &appService{
		orders:     orders,
		payments:   payments,
		expenses:   expenses,
		configs:    configs,
		receptions: receptions,
		reports:    reports,
	}
}

func (s *appService) CreateOrder(ctx context.Context, req OrderRequest) (*core.Order, error) {
	return s.orders.CreateOrder(ctx, orderInput(req))
}

func (s *appService) GetOrder(ctx context.Context, code string) (*core.Order, error) {
	return s.orders.GetOrder(ctx, code)
}

func (s *appService) ListOrders(ctx context.Context) ([]core.Order, error) {
	return s.orders.ListOrders(ctx)
}

func (s *appService) UpdateOrder(ctx context.Context, code string, req OrderRequest) (*core.Order, error) {
	return s.orders.UpdateOrder(ctx, code, orderInput(req))
}

func (s *appService) DeleteOrder(ctx context.Context, code string) error {
	return s.orders.DeleteOrder(ctx, code)
}

func orderInput(req OrderRequest) core.OrderInput {
	in := core.OrderInput{
		Supplier:       req.Supplier,
		OrderDate:      req.OrderDate,
		Category:       req.Category,
		LotDescription: req.LotDescription,
		Items:          make([]core.OrderItemInput, len(req.Items)),
	}
	for i, it := range req.Items {
		in.Items[i] = core.OrderItemInput{
			SKU:           it.SKU,
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPriceUSD:  it.UnitPriceUSD,
			UnitWeightKg:  it.UnitWeightKg,
			UnitVolumeCBM: it.UnitVolumeCBM,
		}
	}
	return in
}

func (s *appService) RecordPayment(ctx context.Context, req PaymentRequest) (*core.Payment, error) {
	return s.payments.RecordPayment(ctx, core.PaymentInput{
		OrderCode:      req.OrderCode,
		Amount:         req.Amount,
		Currency:       req.Currency,
		ExchangeRate:   req.ExchangeRate,
		BankCommission: req.BankCommission,
		PaymentDate:    req.PaymentDate,
		Notes:          req.Notes,
	})
}

func (s *appService) ListPayments(ctx context.Context, orderCode string) ([]core.Payment, error) {
	return s.payments.ListPayments(ctx, orderCode)
}

func (s *appService) DeletePayment(ctx context.Context, code string) error {
	return s.payments.DeletePayment(ctx, code)
}

func (s *appService) RecordExpense(ctx context.Context, req ExpenseRequest) (*core.LogisticsExpense, error) {
	return s.expenses.RecordExpense(ctx, core.ExpenseInput{
		Concept:     req.Concept,
		AmountRD:    req.AmountRD,
		ExpenseDate: req.ExpenseDate,
		Notes:       req.Notes,
		OrderCodes:  req.OrderCodes,
	})
}

func (s *appService) ListExpenses(ctx context.Context) ([]core.LogisticsExpense, error) {
	return s.expenses.ListExpenses(ctx)
}

func (s *appService) ListExpensesForOrder(ctx context.Context, orderCode string) ([]core.LogisticsExpense, error) {
	return s.expenses.ListExpensesForOrder(ctx, orderCode)
}

func (s *appService) DeleteExpense(ctx context.Context, code string) error {
	return s.expenses.DeleteExpense(ctx, code)
}

func (s *appService) SetDistributionMethod(ctx context.Context, req DistributionConfigRequest) (*core.DistributionConfig, error) {
	return s.configs.SetMethod(ctx, req.CostType, core.DistributionMethod(req.Method))
}

func (s *appService) ListDistributionConfigs(ctx context.Context) ([]core.DistributionConfig, error) {
	return s.configs.ListConfigs(ctx)
}

func (s *appService) CreateReception(ctx context.Context, req ReceptionRequest) (*core.Reception, error) {
	return s.receptions.CreateReception(ctx, receptionInput(req))
}

func (s *appService) UpdateReception(ctx context.Context, code string, req ReceptionRequest) (*core.Reception, error) {
	return s.receptions.UpdateReception(ctx, code, receptionInput(req))
}

func (s *appService) GetReception(ctx context.Context, code string) (*core.Reception, error) {
	return s.receptions.GetReception(ctx, code)
}

func (s *appService) ListReceptions(ctx context.Context, orderCode string) ([]core.Reception, error) {
	return s.receptions.ListReceptions(ctx, orderCode)
}

func (s *appService) DeleteReception(ctx context.Context, code string) error {
	return s.receptions.DeleteReception(ctx, code)
}

func receptionInput(req ReceptionRequest) core.ReceptionInput {
	return core.ReceptionInput{
		OrderCode:   req.OrderCode,
		ItemSKU:     req.ItemSKU,
		ArrivalDate: req.ArrivalDate,
		Warehouse:   req.Warehouse,
		Quantity:    req.Quantity,
		Notes:       req.Notes,
	}
}

func (s *appService) CostAnalysis(ctx context.Context, orderCode *string) (*core.CostAnalysisReport, error) {
	return s.reports.CostAnalysis(ctx, orderCode)
}

func (s *appService) InventorySummary(ctx context.Context) ([]core.InventoryRow, error) {
	return s.reports.InventorySummary(ctx)
}
