package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/infra/api/apiv1"
	pg "whatsapp-reseller/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	customerID := flag.String("customer", "demo-customer", "customer id to create and mint a token for")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	packages := pg.NewPackageRepo(pool)
	customers := pg.NewCustomerRepo(pool)

	// Packages are upserted, so reruns only refresh prices.
	seed := []model.ServicePackage{
		{ID: "wa-basic", Name: "WhatsApp Basic", Group: "basic", MonthlyPrice: 100_000, IsActive: true},
		{ID: "wa-pro", Name: "WhatsApp Pro", Group: "pro", MonthlyPrice: 250_000, YearlyPrice: 2_500_000, IsActive: true},
		{ID: "wa-business", Name: "WhatsApp Business", Group: "business", MonthlyPrice: 600_000, YearlyPrice: 6_000_000, IsActive: true},
	}
	for i := range seed {
		p := seed[i]
		if err := packages.Save(ctx, nil, &p); err != nil {
			log.Fatalf("save package %q: %v", p.ID, err)
		}
		fmt.Printf("seeded package: %s (monthly=%d, yearly=%d IDR)\n", p.ID, p.MonthlyPrice, p.YearlyPrice)
	}

	addons := []model.Addon{
		{ID: "extra-device", Name: "Extra device", Price: 25_000, IsActive: true},
		{ID: "broadcast-pack", Name: "Broadcast pack", Price: 50_000, IsActive: true},
	}
	for _, a := range addons {
		if _, err := pool.Exec(ctx,
			`INSERT INTO addons (id, name, price, is_active) VALUES ($1,$2,$3,$4) ON CONFLICT (id) DO NOTHING;`,
			a.ID, a.Name, a.Price, a.IsActive); err != nil {
			log.Fatalf("save addon %q: %v", a.ID, err)
		}
		fmt.Printf("seeded addon: %s (price=%d IDR)\n", a.ID, a.Price)
	}

	// Legacy rows stored the calculation kind in either column; seed one of each.
	vouchers := []struct {
		id, code, typ, discountType, scope string
		value                              float64
		maxUses                            *int64
		multi                              bool
	}{
		{"v-save10", "SAVE10", "percentage", "total", "total", 10, i64(100), false},
		{"v-addon20", "ADDON20", "addon", "percentage", "addon", 20, nil, true},
		{"v-fixed50", "FIXED50", "total", "fixed_amount", "total", 50_000, i64(10), false},
	}
	for _, v := range vouchers {
		if _, err := pool.Exec(ctx, `
INSERT INTO vouchers (id, code, type, discount_type, scope, value, max_uses, valid_from, is_active, allow_multi_use)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),TRUE,$8)
ON CONFLICT (id) DO NOTHING;`,
			v.id, v.code, v.typ, v.discountType, v.scope, v.value, v.maxUses, v.multi); err != nil {
			log.Fatalf("save voucher %q: %v", v.code, err)
		}
		fmt.Printf("seeded voucher: %s\n", v.code)
	}

	if err := customers.Save(ctx, nil, &model.Customer{ID: *customerID, Name: "Demo Customer", Email: "demo@example.com"}); err != nil {
		log.Fatalf("save customer: %v", err)
	}
	token, err := apiv1.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL).Mint(*customerID)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Printf("customer %s token:\n%s\n", *customerID, token)

	fmt.Println("Seeding complete.")
}

func i64(v int64) *int64 { return &v }
