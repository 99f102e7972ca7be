// Package excel renders reports as XLSX workbooks for download.
package excel

import (
	"fmt"

	"importops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const costSheet = "Analisis de Costos"

var costHeaders = []string{
	"Orden", "SKU", "Producto", "Unidades",
	"FOB RD$/u", "Pagos RD$/u", "Logistica RD$/u", "Comisiones RD$/u",
	"Costo Unitario RD$", "Costo Total RD$",
}

// CostAnalysisWorkbook builds the cost-analysis spreadsheet: one row per
// product plus a totals block. Monetary cells carry float values rounded to
// 2 decimals; rounding here is presentation only, the report keeps full
// precision in JSON.
func CostAnalysisWorkbook(report *core.CostAnalysisReport) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(costSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range costHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(costSheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header %s: %w", title, err)
		}
	}

	for i, row := range report.Rows {
		values := []any{
			row.OrderCode, row.SKU, row.Name, row.Quantity,
			money(row.FOBUnitRD), money(row.PaymentsUnitRD),
			money(row.LogisticsUnitRD), money(row.CommissionsUnitRD),
			money(row.UnitCostRD), money(row.TotalCostRD),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(costSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	totalsRow := len(report.Rows) + 3
	totals := [][2]any{
		{"Total productos", report.TotalProducts},
		{"Total unidades", report.TotalUnits},
		{"Inversion total RD$", money(report.TotalInvestmentRD)},
		{"Costo unitario promedio RD$", money(report.AverageUnitCostRD)},
	}
	for i, pair := range totals {
		labelCell, _ := excelize.CoordinatesToCellName(1, totalsRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, totalsRow+i)
		if err := f.SetCellValue(costSheet, labelCell, pair[0]); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
		if err := f.SetCellValue(costSheet, valueCell, pair[1]); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
	}

	return f, nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
