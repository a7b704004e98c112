package routes

import (
	"github.com/mazza92/creator-dashboard-backend-sub000/handlers/subscriptions"
	"github.com/mazza92/creator-dashboard-backend-sub000/middleware"

	"github.com/gin-gonic/gin"
)

func SubscriptionsRoutes(r *gin.Engine) {
	group := r.Group("/subscriptions")
	group.Use(middleware.JWTAuth())
	{
		group.GET("", subscriptions.ListSubscriptions)
		group.GET("/:id", subscriptions.GetSubscription)
	}

	brand := r.Group("/subscriptions")
	brand.Use(middleware.BrandAuth())
	{
		// :id is the package id here; gin requires one wildcard name per
		// segment.
		brand.POST("/:id/subscribe", subscriptions.Subscribe)
		brand.POST("/:id/approve-deliverables", subscriptions.ApproveDeliverables)
		brand.DELETE("/:id", subscriptions.CancelSubscription)
	}

	creator := r.Group("/subscriptions")
	creator.Use(middleware.CreatorAuth())
	{
		creator.POST("/:id/deliverables", subscriptions.SubmitDeliverable)
	}
}
