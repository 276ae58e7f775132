package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/pricing"
	"hotelbooking/internal/modules/wallet"
	jwtsvc "hotelbooking/internal/pkg/jwt"
	"hotelbooking/internal/pkg/logger"
	"hotelbooking/internal/repository"
)

// seed fills a development database with a hotel, rooms, a weekend rule and
// funded users, then prints bearer tokens for them.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProdLike() {
		log.Fatal("refusing to seed a production-like environment")
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{MaxOpenConns: 1})
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	log.Info("Cleaning old data...")
	for _, table := range []string{
		"booking_services", "bookings", "wallet_transactions", "withdrawal_requests", "deposit_requests",
		"special_price_rule_rooms", "special_price_rules", "hotel_services", "rooms", "hotels", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	ctx := context.Background()
	admin := mustCreate(db, &domain.User{Email: "admin@hotel.local", Name: "Admin", Role: domain.RoleAdmin})
	staff := mustCreate(db, &domain.User{Email: "frontdesk@hotel.local", Name: "Front Desk", Role: domain.RoleStaff})
	guest := mustCreate(db, &domain.User{Email: "guest@hotel.local", Name: "Aliya Guest", Phone: "+77010000000", Role: domain.RoleGuest})

	hotel := mustCreate(db, &domain.Hotel{
		Name:               "Seaside Resort",
		Address:            "1 Coastal Rd",
		CancellationPolicy: "Free cancellation until 48 hours before check-in.",
	})
	standard := mustCreate(db, &domain.Room{HotelID: hotel.ID, Name: "Standard", BasePrice: 2_500_000, Quantity: 5, MaxAdults: 2, MaxChildren: 1, IsActive: true})
	suite := mustCreate(db, &domain.Room{HotelID: hotel.ID, Name: "Suite", BasePrice: 6_000_000, Quantity: 1, MaxAdults: 4, MaxChildren: 2, IsActive: true})
	for name, price := range map[string]int64{"Breakfast": 150_000, "Airport transfer": 800_000, "Spa": 1_200_000} {
		mustCreate(db, &domain.HotelService{HotelID: hotel.ID, Name: name, Price: price, IsActive: true})
	}

	pricingRepo := pricing.NewRepository(db)
	pricingService := pricing.NewService(pricingRepo, pricingRepo, repository.NewRoomRepository(db))
	if _, err := pricingService.UpsertRule(ctx, pricing.RuleInput{
		Name:          "Weekend surcharge",
		RoomIDs:       []int64{standard.ID, suite.ID},
		Kind:          domain.RuleWeekend,
		ModifierKind:  domain.ModifierPercentage,
		ModifierValue: decimal.NewFromInt(20),
	}); err != nil {
		log.WithError(err).Fatal("weekend rule failed")
	}

	ledger := wallet.NewLedger(db)
	if _, err := ledger.Apply(ctx, wallet.Entry{UserID: guest.ID, Type: domain.TxDeposit, Amount: 20_000_000, Description: "Seed deposit"}); err != nil {
		log.WithError(err).Fatal("seed deposit failed")
	}
	if _, err := ledger.Apply(ctx, wallet.Entry{UserID: guest.ID, Type: domain.TxBonus, BonusAmount: 1_000_000, Description: "Welcome bonus"}); err != nil {
		log.WithError(err).Fatal("seed bonus failed")
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, u := range []*domain.User{admin, staff, guest} {
		token, err := j.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			log.WithError(err).Fatal("token generation failed")
		}
		fmt.Printf("%-6s %-24s Bearer %s\n", u.Role, u.Email, token)
	}
	log.Info("Seed completed")
}

func mustCreate[T any](db *gorm.DB, v *T) *T {
	if err := db.Create(v).Error; err != nil {
		log.WithError(err).Fatalf("create %T failed", v)
	}
	return v
}
