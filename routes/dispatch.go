package routes

import (
	"fundigo/handlers"
	"fundigo/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterDispatchRoutes registers all endpoints for the dispatch engine.
func RegisterDispatchRoutes(r *gin.Engine, dh *handlers.DispatchHandler, rh *handlers.RatingHandler) {
	api := r.Group("/api/dispatch")
	{
		// Customer surface.
		customer := api.Group("")
		customer.Use(middleware.ActorAuthMiddleware("customer"))
		customer.POST("/bookings", dh.CreateBooking)
		customer.POST("/bookings/:bookingID/complete/customer", dh.CustomerComplete)

		// Provider surface.
		provider := api.Group("")
		provider.Use(middleware.ActorAuthMiddleware("provider"))
		provider.POST("/bookings/:bookingID/accept", dh.Accept)
		provider.POST("/bookings/:bookingID/decline", dh.Decline)
		provider.POST("/bookings/:bookingID/complete/provider", dh.ProviderComplete)

		// Either role.
		actor := api.Group("")
		actor.Use(middleware.ActorAuthMiddleware(""))
		actor.GET("/bookings/:bookingID", dh.GetBooking)
		actor.POST("/bookings/:bookingID/cancel", dh.Cancel)

		// Rating collaborator surface.
		actor.GET("/bookings/:bookingID/reviews/eligibility", rh.Eligibility)
		actor.POST("/bookings/:bookingID/reviews", rh.CreateReview)
		actor.GET("/bookings/:bookingID/reviews", rh.ListReviews)
	}
}
