package main

import (
	"log"

	"github.com/mazza92/creator-dashboard-backend-sub000/db"
	_ "github.com/mazza92/creator-dashboard-backend-sub000/docs"
	"github.com/mazza92/creator-dashboard-backend-sub000/notifications"
	"github.com/mazza92/creator-dashboard-backend-sub000/routes"
	"github.com/mazza92/creator-dashboard-backend-sub000/utils"

	"github.com/gin-gonic/gin"
)

// @title Creator Dashboard API
// @version 1.0
// @description Booking and subscription payment lifecycle for the creator marketplace
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	if err := utils.InitCloudinary(); err != nil {
		log.Printf("Warning: Cloudinary initialization failed: %v", err)
		log.Println("Content file uploads will not work correctly.")
	}

	// An event without a template would be a silent notification drop, so
	// refuse to start.
	if err := notifications.ValidateTemplates(); err != nil {
		log.Fatal("Notification template table is incomplete: ", err)
	}

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Error starting the server: ", err)
	}
}
