package routes

import (
	"github.com/mazza92/creator-dashboard-backend-sub000/handlers/bookings"
	"github.com/mazza92/creator-dashboard-backend-sub000/middleware"

	"github.com/gin-gonic/gin"
)

func BookingsRoutes(r *gin.Engine) {
	group := r.Group("/bookings")
	group.Use(middleware.JWTAuth())
	{
		group.GET("", bookings.ListBookings)
		group.GET("/:id", bookings.GetBooking)
	}

	brand := r.Group("/bookings")
	brand.Use(middleware.BrandAuth())
	{
		brand.POST("", bookings.CreateBooking)
		brand.POST("/:id/review-content", bookings.ReviewContent)
		brand.POST("/:id/confirm-published", bookings.InitiatePayment)
		brand.POST("/:id/complete-payment", bookings.CompletePayment)
		brand.POST("/:id/cancel", bookings.CancelBooking)
	}

	creator := r.Group("/bookings")
	creator.Use(middleware.CreatorAuth())
	{
		creator.POST("/:id/accept", bookings.AcceptInvite)
		creator.POST("/:id/reject", bookings.RejectInvite)
		creator.POST("/:id/content", bookings.SubmitContent)
		creator.POST("/:id/publish", bookings.PublishContent)
	}
}
