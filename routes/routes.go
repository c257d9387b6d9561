package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"diploma360/config"
	"diploma360/media"
	"diploma360/middlewares"
	"diploma360/models"
	"diploma360/utils"
)

type deps struct {
	users    models.UserRepository
	events   models.EventRepository
	uploader media.Uploader
	inv      *utils.CacheInvalidator
	cfg      config.Config
}

// RegisterRoutes wires middleware and mounts the user and event resources.
func RegisterRoutes(
	server *gin.Engine,
	users models.UserRepository,
	events models.EventRepository,
	uploader media.Uploader,
	rdb *redis.Client,
	inv *utils.CacheInvalidator,
	cfg config.Config,
) {
	d := &deps{users: users, events: events, uploader: uploader, inv: inv, cfg: cfg}

	// Global per-IP limiter.
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// Stricter limiter on the login paths.
	loginLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})

	user := server.Group("/api/user")
	user.POST("",
		loginLimiter.Middleware(func(c *gin.Context) string { return "user:" + c.ClientIP() }),
		d.createOrFetchUser,
	)
	user.POST("/jwt",
		loginLimiter.Middleware(func(c *gin.Context) string { return "jwt:" + c.ClientIP() }),
		d.issueJWT,
	)
	user.DELETE("/logout", d.logout)

	authn := middlewares.Authenticate(users, cfg.CookieName)

	userAuth := server.Group("/api/user")
	userAuth.Use(authn)
	userAuth.GET("/me", d.whoAmI)
	userAuth.GET("/is-admin", d.isAdmin)
	userAuth.GET("/all", middlewares.RequireRoles(models.RoleSuperAdmin), d.listUsers)
	userAuth.PATCH("/:id/role", middlewares.RequireRoles(models.RoleSuperAdmin), d.updateUserRole)

	// Public event reads.
	server.GET("/api/events", d.listEvents)
	server.GET("/api/events/featured", d.featuredEvents)
	server.GET("/api/events/categories", d.eventCategories)
	server.GET("/api/events/recent-reviews", d.recentReviews)
	server.GET("/api/events/:id", d.getEvent)

	// Authenticated event routes: per-email limiter plus a daily quota on top
	// of the global IP limiter.
	emailLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	evAuth := server.Group("/api/events")
	evAuth.Use(authn)
	evAuth.Use(emailLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + c.GetString(middlewares.CtxEmail)
	}))
	evAuth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
		Limit:  cfg.QuotaLimit,
		Window: cfg.QuotaWindow,
		KeyFn: func(c *gin.Context) string {
			email := c.GetString(middlewares.CtxEmail)
			if email == "" {
				return ""
			}
			return "quota:user:" + email + ":day"
		},
	}))

	organizer := middlewares.RequireRoles(models.RoleOrganizer, models.RoleSuperAdmin)

	evAuth.POST("", organizer, d.createEvent)
	evAuth.PUT("/:id", organizer, d.updateEvent)
	evAuth.DELETE("/:id", organizer, d.deleteEvent)

	evAuth.POST("/:id/registration", d.bookEvent)
	evAuth.DELETE("/:id/registration", d.cancelBooking)
	// The path parameter is the attendee email here; gin requires one
	// wildcard name per segment across the tree, so it rides on :id.
	evAuth.GET("/:id/my-bookings", d.myBookings)
	evAuth.GET("/my-tickets", d.myTickets)
	evAuth.POST("/validate-ticket", organizer, d.validateTicket)

	evAuth.GET("/payment/requests", organizer, d.paymentRequests)
	evAuth.PUT("/payment/:registrationId", organizer, d.setPaymentStatus)

	evAuth.POST("/:id/review", d.addReview)
}

// fail translates the error taxonomy at the boundary; anything unknown stays
// a generic 500 so internals never leak.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied."})
	case errors.Is(err, models.ErrTicketUsed):
		c.JSON(http.StatusConflict, gin.H{"message": "Ticket has already been used."})
	case errors.Is(err, models.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"message": "Already exists."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong. Try again later."})
	}
}

func (d *deps) setSessionCookie(c *gin.Context, token string) {
	if d.cfg.CookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(d.cfg.CookieName, token, d.cfg.CookieMaxAge, "/", d.cfg.CookieDomain, d.cfg.CookieSecure, true)
}

func (d *deps) clearSessionCookie(c *gin.Context) {
	c.SetCookie(d.cfg.CookieName, "", -1, "/", d.cfg.CookieDomain, d.cfg.CookieSecure, true)
}
