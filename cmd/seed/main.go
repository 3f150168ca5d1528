package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"labstock/internal/audit"
	"labstock/internal/database"
	"labstock/internal/domain"
	"labstock/internal/notification"
	"labstock/internal/pkg/validator"
	"labstock/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "labstock.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db,
		&domain.User{},
		&domain.EquipmentModel{},
		&domain.Unit{},
		&domain.StockRow{},
		&domain.Loan{},
		&domain.TransferRequest{},
		&domain.Certificate{},
		&domain.RepairTicket{},
		&notification.Notification{},
		&audit.ActivityLog{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM activity_logs")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM repair_tickets")
	db.Exec("DELETE FROM certificates")
	db.Exec("DELETE FROM transfer_requests")
	db.Exec("DELETE FROM loans")
	db.Exec("DELETE FROM stock_rows")
	db.Exec("DELETE FROM units")
	db.Exec("DELETE FROM equipment_models")
	db.Exec("DELETE FROM users")

	ctx := context.Background()

	// ================== USERS ==================
	log.Println("Creating users...")

	users := []struct {
		email    string
		password string
		role     domain.UserRole
		name     string
		code     string
	}{
		{"admin@labstock.local", "admin123", domain.RoleSchoolAdmin, "School Admin", ""},
		{"manager@labstock.local", "manager123", domain.RoleLabManager, "Lab Manager", ""},
		{"aliya@labstock.local", "student123", domain.RoleStudent, "Aliya S.", "ST-0001"},
		{"bekzat@labstock.local", "student123", domain.RoleStudent, "Bekzat K.", "ST-0002"},
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("bcrypt failed:", err)
		}
		user := domain.User{
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
			Name:         u.name,
			StudentCode:  u.code,
		}
		if errs := validator.Validate(user); errs != nil {
			log.Fatalf("invalid seed user %s: %v", u.email, errs)
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("user create failed:", err)
		}
	}

	// ================== CATALOG ==================
	log.Println("Creating equipment models and units...")

	models := []struct {
		name      string
		category  string
		warehouse int
		lab       int
		price     float64
	}{
		{"Digital Multimeter DM-501", "Measurement", 10, 6, 89.90},
		{"Compound Microscope MX-200", "Optics", 4, 3, 540.00},
		{"Bench Oscilloscope OS-1102", "Measurement", 3, 2, 1290.00},
		{"Hotplate Stirrer HS-50", "Heating", 6, 4, 210.50},
	}

	stockRepo := repository.NewStockRepository(db)
	purchase := time.Now().AddDate(-1, 0, 0)
	warranty := time.Now().AddDate(1, 0, 0)

	for _, m := range models {
		model := domain.EquipmentModel{Name: m.name, Category: m.category, Verified: true}
		if errs := validator.Validate(model); errs != nil {
			log.Fatalf("invalid seed model %s: %v", m.name, errs)
		}
		if err := db.Create(&model).Error; err != nil {
			log.Fatal("model create failed:", err)
		}

		create := func(loc domain.Location, n int) {
			for i := 0; i < n; i++ {
				u := domain.Unit{
					ModelID:       model.ID,
					Serial:        fmt.Sprintf("%s-%d-%s", model.Category[:2], model.ID, uuid.NewString()[:8]),
					Status:        domain.UnitAvailable,
					Condition:     domain.ConditionNew,
					Location:      loc,
					PurchasePrice: m.price,
					Supplier:      "SciSupply Ltd",
					PurchaseDate:  &purchase,
					WarrantyUntil: &warranty,
				}
				if err := db.Create(&u).Error; err != nil {
					log.Fatal("unit create failed:", err)
				}
			}
		}
		create(domain.LocWarehouse, m.warehouse)
		create(domain.LocLab, m.lab)

		for _, loc := range []domain.Location{domain.LocWarehouse, domain.LocLab} {
			if _, err := stockRepo.Reconcile(ctx, model.ID, loc); err != nil {
				log.Fatal("stock reconcile failed:", err)
			}
		}
	}

	log.Println("Seed complete.")
}
