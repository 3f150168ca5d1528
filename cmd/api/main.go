package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"labstock/internal/audit"
	"labstock/internal/database"
	"labstock/internal/domain"
	"labstock/internal/middleware"
	"labstock/internal/modules/auth"
	"labstock/internal/modules/inventory"
	"labstock/internal/modules/loan"
	"labstock/internal/modules/repair"
	"labstock/internal/modules/transfer"
	"labstock/internal/notification"
	jwtsvc "labstock/internal/pkg/jwt"
	"labstock/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "labstock.db"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	modelRepo := repository.NewEquipmentModelRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	stockRepo := repository.NewStockRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	repairRepo := repository.NewRepairRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)
	notifSvc := notification.NewService(db)
	auditRec := audit.NewRecorder(db)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))

	inventorySvc := inventory.NewService(modelRepo, unitRepo, stockRepo, auditRec)
	inventoryHandler := inventory.NewHandler(inventorySvc)

	loanSvc := loan.NewService(loanRepo, unitRepo, stockRepo, notifSvc, auditRec)
	loanHandler := loan.NewHandler(loanSvc)

	transferSvc := transfer.NewService(transferRepo, certRepo, unitRepo, stockRepo, modelRepo, notifSvc, auditRec)
	transferHandler := transfer.NewHandler(transferSvc)

	repairSvc := repair.NewService(repairRepo, unitRepo, notifSvc, auditRec)
	repairHandler := repair.NewHandler(repairSvc)

	notifHandler := notification.NewHandler(notifSvc)
	auditHandler := audit.NewHandler(auditRec)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)

		authed := v1.Group("/")
		authed.Use(middleware.JWTAuth(j))
		{
			inventoryHandler.RegisterReadRoutes(authed)
			notifHandler.RegisterRoutes(authed)

			student := authed.Group("/")
			student.Use(middleware.RequireRole(domain.RoleStudent))
			{
				loanHandler.RegisterStudentRoutes(student)
			}

			manager := authed.Group("/")
			manager.Use(middleware.RequireRole(domain.RoleLabManager, domain.RoleSchoolAdmin))
			{
				inventoryHandler.RegisterManagerRoutes(manager)
				loanHandler.RegisterManagerRoutes(manager)
				transferHandler.RegisterManagerRoutes(manager)
				repairHandler.RegisterManagerRoutes(manager)
			}

			admin := authed.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				inventoryHandler.RegisterAdminRoutes(admin)
				transferHandler.RegisterAdminRoutes(admin)
				repairHandler.RegisterAdminRoutes(admin)
				auditHandler.RegisterRoutes(admin)
			}
		}
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
