package router

import (
	"net/http"

	"github.com/emrahsandernet/kasarcim/internal/handlers"
	"github.com/emrahsandernet/kasarcim/internal/middleware"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Services struct {
	Catalog       handlers.CatalogService
	Reviews       handlers.ReviewService
	Coupons       handlers.CouponService
	Orders        handlers.OrderService
	Payments      handlers.PaymentService
	Shipments     handlers.ShipmentService
	Users         handlers.UserService
	Addresses     handlers.AddressService
	Contact       handlers.ContactService
	Announcements handlers.AnnouncementService
	Blog          handlers.BlogService

	Tokens   service.TokenProvider
	Denylist service.CacheClient
}

func Router(s Services, corsOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(log))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
	}
	if len(corsOrigins) == 0 || (len(corsOrigins) == 1 && corsOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	if s.Denylist == nil {
		s.Denylist = service.NopCache()
	}
	api := r.Group("/api", middleware.OptionalAuth(s.Tokens, s.Denylist, log))
	authed := api.Group("", middleware.AuthRequired(s.Tokens, s.Denylist, log))
	staff := authed.Group("", middleware.StaffOnly())

	catalog := handlers.NewCatalogHandler(s.Catalog, log)
	api.GET("/categories", catalog.ListCategories)
	api.GET("/categories/:slug", catalog.GetCategory)
	api.GET("/categories/:slug/products", catalog.CategoryProducts)
	staff.POST("/categories", catalog.CreateCategory)
	staff.PUT("/categories/:slug", catalog.UpdateCategory)
	staff.DELETE("/categories/:slug", catalog.DeleteCategory)

	api.GET("/products", catalog.ListProducts)
	api.GET("/products/:slug", catalog.GetProduct)
	staff.POST("/products", catalog.CreateProduct)
	staff.PATCH("/products/:slug", catalog.UpdateProduct)
	staff.DELETE("/products/:slug", catalog.DeleteProduct)
	staff.POST("/products/:slug/discounts", catalog.AddDiscount)
	staff.DELETE("/products/:slug/discounts/:id", catalog.DeleteDiscount)

	reviews := handlers.NewReviewHandler(s.Reviews, log)
	api.GET("/products/:slug/reviews", reviews.ListReviews)
	api.GET("/products/:slug/ratings", reviews.ListRatings)
	api.GET("/products/:slug/feedback", reviews.Feedback)
	authed.POST("/products/:slug/reviews", reviews.AddReview)
	authed.POST("/products/:slug/ratings", reviews.AddRating)
	authed.GET("/products/:slug/has-reviewed", reviews.HasReviewed)
	authed.POST("/reviews/:id/like", reviews.Like)
	authed.POST("/reviews/:id/dislike", reviews.Dislike)

	coupons := handlers.NewCouponHandler(s.Coupons, log)
	api.POST("/coupons/apply", coupons.Apply)
	authed.POST("/coupons/check", coupons.Check)
	staff.GET("/coupons", coupons.List)
	staff.POST("/coupons", coupons.Create)
	staff.GET("/coupons/:id", coupons.Get)
	staff.PUT("/coupons/:id", coupons.Update)
	staff.DELETE("/coupons/:id", coupons.Delete)

	orders := handlers.NewOrderHandler(s.Orders, log)
	api.POST("/orders", orders.CreateOrder)
	authed.GET("/orders", orders.ListOrders)
	authed.GET("/orders/:id", orders.GetOrder)
	authed.POST("/orders/:id/items", orders.AddItem)
	authed.POST("/orders/:id/apply-coupon", orders.ApplyCoupon)
	authed.POST("/orders/:id/cancel", orders.CancelOrder)
	staff.POST("/orders/:id/mark-paid", orders.MarkPaid)

	fulfillment := handlers.NewFulfillmentHandler(s.Payments, s.Shipments, log)
	authed.GET("/payments", fulfillment.ListPayments)
	authed.POST("/payments", fulfillment.CreatePayment)
	authed.GET("/payments/:id", fulfillment.GetPayment)
	staff.POST("/payments/:id/process", fulfillment.ProcessPayment)

	authed.GET("/shipments", fulfillment.ListShipments)
	authed.GET("/shipments/:id", fulfillment.GetShipment)
	staff.POST("/shipments", fulfillment.CreateShipment)
	staff.PATCH("/shipments/:id", fulfillment.UpdateShipment)
	staff.POST("/shipments/:id/mark-shipped", fulfillment.MarkShipped)
	staff.POST("/shipments/:id/mark-delivered", fulfillment.MarkDelivered)

	auth := handlers.NewAuthHandler(s.Users, s.Addresses, log)
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)
	api.POST("/password-reset", auth.RequestPasswordReset)
	api.POST("/password-reset-confirm", auth.ConfirmPasswordReset)
	authed.POST("/logout", auth.Logout)
	authed.GET("/user", auth.Me)
	authed.PATCH("/user", auth.UpdateMe)

	authed.GET("/addresses", auth.ListAddresses)
	authed.POST("/addresses", auth.CreateAddress)
	authed.GET("/addresses/:id", auth.GetAddress)
	authed.PUT("/addresses/:id", auth.UpdateAddress)
	authed.DELETE("/addresses/:id", auth.DeleteAddress)
	authed.POST("/addresses/:id/set-default", auth.SetDefaultAddress)

	content := handlers.NewContentHandler(s.Contact, s.Announcements, log)
	api.POST("/contact", content.SubmitContact)
	staff.GET("/contact", content.ListContact)
	staff.POST("/contact/:id/read", content.MarkContactRead)

	api.GET("/announcements", content.ActiveAnnouncements)
	staff.GET("/announcements/all", content.ListAnnouncements)
	staff.GET("/announcements/:id", content.GetAnnouncement)
	staff.POST("/announcements", content.CreateAnnouncement)
	staff.PUT("/announcements/:id", content.UpdateAnnouncement)
	staff.DELETE("/announcements/:id", content.DeleteAnnouncement)

	blog := handlers.NewBlogHandler(s.Blog, log)
	b := api.Group("/blog")
	b.GET("/posts", blog.ListPosts)
	b.GET("/posts/featured", blog.Featured)
	b.GET("/posts/featured-single", blog.SingleFeatured)
	b.GET("/posts/popular", blog.Popular)
	b.GET("/posts/archive", blog.Archive)
	b.GET("/posts/:slug", blog.GetPost)
	b.GET("/categories", blog.Categories)
	b.GET("/categories/:slug", blog.Category)
	b.GET("/tags", blog.Tags)
	b.GET("/tags/:slug", blog.Tag)

	admin := staff.Group("/blog/admin")
	admin.POST("/posts", blog.CreatePost)
	admin.PUT("/posts/:id", blog.UpdatePost)
	admin.DELETE("/posts/:id", blog.DeletePost)
	admin.POST("/categories", blog.CreateCategory)
	admin.DELETE("/categories/:id", blog.DeleteCategory)
	admin.POST("/tags", blog.CreateTag)
	admin.DELETE("/tags/:id", blog.DeleteTag)

	return r
}
