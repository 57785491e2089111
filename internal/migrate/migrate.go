package migrate

import (
	"context"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pg_trgm for catalog and blog search
	CreateChecks           bool
	CreateIndexes          bool
	CreateUpdatedAtTrigger bool
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

// AllModels lists every table owned by the shop in dependency order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.UserProfile{},
		&models.Address{},
		&models.PasswordResetToken{},
		&models.ContactMessage{},
		&models.Category{},
		&models.Product{},
		&models.Discount{},
		&models.ProductReview{},
		&models.ProductRating{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Shipment{},
		&models.BlogCategory{},
		&models.BlogTag{},
		&models.Blog{},
		&models.Announcement{},
	}
}

type step struct {
	name string
	sql  string
}

var extensionSteps = []step{
	{"pg_trgm", `CREATE EXTENSION IF NOT EXISTS pg_trgm`},
}

var checkSteps = []step{
	{"chk_orders_status_allowed", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('created','paid','shipped','delivered','cancelled'));`},
	{"chk_orders_payment_method", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_payment_method;
ALTER TABLE orders ADD CONSTRAINT chk_orders_payment_method
  CHECK (payment_method IN ('online','cash_on_delivery'));`},
	{"chk_orders_money_non_negative", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_money_non_negative;
ALTER TABLE orders ADD CONSTRAINT chk_orders_money_non_negative
  CHECK (total_price >= 0 AND discount >= 0 AND shipping_cost >= 0 AND cod_fee >= 0);`},
	{"chk_order_items_quantity_gt_zero", `
ALTER TABLE order_items DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0 AND price >= 0);`},
	{"chk_products_stock_non_negative", `
ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative;
ALTER TABLE products ADD CONSTRAINT chk_products_stock_non_negative
  CHECK (stock >= 0 AND price >= 0);`},
	{"chk_coupons_usage", `
ALTER TABLE coupons DROP CONSTRAINT IF EXISTS chk_coupons_usage;
ALTER TABLE coupons ADD CONSTRAINT chk_coupons_usage
  CHECK (usage_count >= 0 AND max_usage >= 0 AND discount_type IN ('percentage','fixed'));`},
	{"chk_product_ratings_range", `
ALTER TABLE product_ratings DROP CONSTRAINT IF EXISTS chk_product_ratings_range;
ALTER TABLE product_ratings ADD CONSTRAINT chk_product_ratings_range
  CHECK (rating BETWEEN 1 AND 5);`},
	{"chk_product_discounts_percentage", `
ALTER TABLE product_discounts DROP CONSTRAINT IF EXISTS chk_product_discounts_percentage;
ALTER TABLE product_discounts ADD CONSTRAINT chk_product_discounts_percentage
  CHECK (discount_percentage >= 0 AND discount_percentage <= 100 AND start_date <= end_date);`},
	{"chk_shipments_status_allowed", `
ALTER TABLE shipments DROP CONSTRAINT IF EXISTS chk_shipments_status_allowed;
ALTER TABLE shipments ADD CONSTRAINT chk_shipments_status_allowed
  CHECK (status IN ('preparing','shipped','in_transit','out_for_delivery','delivered','failed','returned'));`},
	{"chk_payments_status_allowed", `
ALTER TABLE payments DROP CONSTRAINT IF EXISTS chk_payments_status_allowed;
ALTER TABLE payments ADD CONSTRAINT chk_payments_status_allowed
  CHECK (status IN ('pending','processing','completed','failed','refunded'));`},
}

var indexSteps = []step{
	{"ix_orders_user_created", `CREATE INDEX IF NOT EXISTS ix_orders_user_created ON orders (user_id, created_at DESC)`},
	{"ix_orders_status_created", `CREATE INDEX IF NOT EXISTS ix_orders_status_created ON orders (status, created_at DESC)`},
	{"ix_products_category_available", `CREATE INDEX IF NOT EXISTS ix_products_category_available ON products (category_id, available)`},
	{"ix_products_name_trgm", `CREATE INDEX IF NOT EXISTS ix_products_name_trgm ON products USING gin (lower(name) gin_trgm_ops)`},
	{"ix_blogs_status_published", `CREATE INDEX IF NOT EXISTS ix_blogs_status_published ON blogs (status, published_at DESC)`},
	{"ix_announcements_active_order", `CREATE INDEX IF NOT EXISTS ix_announcements_active_order ON announcements (is_active, sort_order)`},
}

var triggerTables = []string{"orders", "products", "payments", "shipments", "coupons", "blogs"}

// MigrateShopDB creates the schema. Postgres-only steps are skipped on other dialects.
func MigrateShopDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting shop schema migration", zap.String("dialect", db.Dialector.Name()))
	db = db.WithContext(ctx)
	pg := db.Dialector.Name() == "postgres"

	if opt.CreateExtensions && pg {
		if err := runSteps(db, log, "extension", extensionSteps); err != nil {
			return err
		}
	}

	log.Info("creating tables")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}
	log.Info("tables created")

	if !pg {
		log.Info("non-postgres dialect: skipping checks, indexes and triggers")
		return nil
	}

	if opt.CreateUpdatedAtTrigger {
		if err := createUpdatedAtTriggers(db, log); err != nil {
			return err
		}
	}
	if opt.CreateChecks {
		if err := runSteps(db, log, "check", checkSteps); err != nil {
			return err
		}
	}
	if opt.CreateIndexes {
		steps := indexSteps
		if !opt.CreateExtensions {
			steps = withoutStep(steps, "ix_products_name_trgm")
		}
		if err := runSteps(db, log, "index", steps); err != nil {
			return err
		}
	}

	log.Info("shop schema migration finished")
	return nil
}

func runSteps(db *gorm.DB, log *zap.Logger, kind string, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("migration step failed", zap.String("kind", kind), zap.String("step", s.name), zap.Error(err))
			return err
		}
		log.Debug("migration step applied", zap.String("kind", kind), zap.String("step", s.name))
	}
	log.Info("migration steps applied", zap.String("kind", kind), zap.Int("count", len(steps)))
	return nil
}

func createUpdatedAtTriggers(db *gorm.DB, log *zap.Logger) error {
	if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;`).Error; err != nil {
		log.Error("failed to create set_updated_at function", zap.Error(err))
		return err
	}
	steps := make([]step, 0, len(triggerTables))
	for _, t := range triggerTables {
		steps = append(steps, step{
			name: "trg_" + t + "_updated",
			sql: `DROP TRIGGER IF EXISTS trg_` + t + `_updated ON ` + t + `;
CREATE TRIGGER trg_` + t + `_updated BEFORE UPDATE ON ` + t + `
FOR EACH ROW EXECUTE FUNCTION set_updated_at();`,
		})
	}
	return runSteps(db, log, "trigger", steps)
}

func withoutStep(steps []step, name string) []step {
	out := make([]step, 0, len(steps))
	for _, s := range steps {
		if s.name != name {
			out = append(out, s)
		}
	}
	return out
}
