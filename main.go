package main

import (
	"github.com/vizcard/vizcard/config"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/routes"
	"github.com/vizcard/vizcard/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Template{},
		&models.CustomTemplate{},
		&models.VisitingCard{},
		&models.CardView{},
		&models.ContactMessage{},
		&models.EmailLog{},
	)

	if err := models.EnsureTemplates(db); err != nil {
		utils.Sugar.Fatalf("template seeding failed: %v", err)
	}

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
