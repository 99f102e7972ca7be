// seed is a one-shot tool that loads demo data into an empty database:
// a default distribution configuration plus a sample order with one payment
// and one logistics expense. Safe to re-run, existing rows are left alone.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"

	"importops/internal/config"
	"importops/internal/db"
	"importops/internal/logging"
)

func main() {
	log := logging.L()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Info("seeding distribution configuration...")
	_, err = tx.Exec(ctx, `
		INSERT INTO distribution_configs (cost_type, method, active)
		SELECT v.cost_type, v.method, TRUE
		FROM (VALUES
		    ('pagos_proveedor',      'valor_fob'),
		    ('gastos_logisticos',    'peso'),
		    ('comisiones_bancarias', 'valor_fob')
		) AS v(cost_type, method)
		WHERE NOT EXISTS (
		    SELECT 1 FROM distribution_configs d
		    WHERE d.cost_type = v.cost_type AND d.active
		);
	`)
	if err != nil {
		log.Fatalf("seed distribution configs: %v", err)
	}

	log.Info("seeding sample order...")
	_, err = tx.Exec(ctx, `
		INSERT INTO code_sequences (prefix, last_number)
		VALUES ('ORD', 1), ('PAG', 1), ('GAS', 1)
		ON CONFLICT (prefix) DO NOTHING;

		INSERT INTO orders (code, supplier, order_date, category, lot_description)
		VALUES ('ORD-00001', 'Guangzhou Trading Co.', '2026-08-01', 'electrodomesticos', 'Lote de demostracion')
		ON CONFLICT (code) DO NOTHING;

		INSERT INTO order_items (order_id, sku, name, quantity, unit_price_usd, subtotal_usd, unit_weight_kg, unit_volume_cbm)
		SELECT o.id, i.sku, i.name, i.quantity, i.price, i.quantity * i.price, i.weight, i.volume
		FROM orders o
		CROSS JOIN (VALUES
		    ('VNT-120', 'Ventilador de pie 120W', 100, 10.00, 4.50, 0.060),
		    ('LIC-800', 'Licuadora 800W',         300,  2.00, 2.10, 0.015)
		) AS i(sku, name, quantity, price, weight, volume)
		WHERE o.code = 'ORD-00001'
		ON CONFLICT (order_id, sku) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("seed order: %v", err)
	}

	log.Info("seeding payment and logistics expense...")
	_, err = tx.Exec(ctx, `
		INSERT INTO payments (code, order_id, amount, currency, exchange_rate, bank_commission, payment_date)
		SELECT 'PAG-00001', o.id, 1600.00, 'USD', 58.50, 450.00, '2026-08-05'
		FROM orders o
		WHERE o.code = 'ORD-00001'
		  AND NOT EXISTS (SELECT 1 FROM payments WHERE code = 'PAG-00001');

		INSERT INTO logistics_expenses (code, concept, amount_rd, expense_date)
		SELECT 'GAS-00001', 'Flete maritimo y aduana', 38000.00, '2026-08-20'
		WHERE NOT EXISTS (SELECT 1 FROM logistics_expenses WHERE code = 'GAS-00001');

		INSERT INTO expense_orders (expense_id, order_id)
		SELECT e.id, o.id
		FROM logistics_expenses e, orders o
		WHERE e.code = 'GAS-00001' AND o.code = 'ORD-00001'
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("seed costs: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Info("seed data loaded")
}
