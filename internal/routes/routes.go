package routes

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	"github.com/BruksfildServices01/slot-booking/internal/auth"
	"github.com/BruksfildServices01/slot-booking/internal/config"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/handlers"
	"github.com/BruksfildServices01/slot-booking/internal/metrics"
	"github.com/BruksfildServices01/slot-booking/internal/middleware"
	"github.com/BruksfildServices01/slot-booking/internal/models"
	ucAuth "github.com/BruksfildServices01/slot-booking/internal/usecase/auth"
	ucBooking "github.com/BruksfildServices01/slot-booking/internal/usecase/booking"
	"github.com/BruksfildServices01/slot-booking/internal/validators"
)

// Deps are the storage and infrastructure singletons built by main.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Bookings domain.Repository
	Users    domain.UserRepository
	Audit    *audit.Dispatcher
	AuditLog audit.Store
	Cache    ucBooking.SlotCache // nil disables caching
	Clock    domain.Clock
	Registry *prometheus.Registry // nil disables metrics
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	var recorder ucBooking.Recorder
	if d.Registry != nil {
		m := metrics.New(d.Registry)
		recorder = m
		r.Use(middleware.MetricsMiddleware(m))
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// INFRA
	// ======================================================
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst, d.Log)

	var verify ucAuth.EmailVerifier
	if cfg.VerifyEmailDomain {
		verify = validators.EmailDomainVerifier(net.DefaultResolver)
	}

	// ======================================================
	// USE CASES
	// ======================================================
	registerUC := ucAuth.NewRegister(d.Users, tokens, verify, d.Audit)
	loginUC := ucAuth.NewLogin(d.Users, tokens)

	listSlotsUC := ucBooking.NewListSlots(d.Bookings, d.Cache, d.Clock, d.Log)
	bookSlotUC := ucBooking.NewBookSlot(d.Bookings, d.Cache, d.Clock, d.Audit, recorder, d.Log)
	setStatusUC := ucBooking.NewSetStatus(d.Bookings, d.Cache, d.Clock, d.Audit, recorder, d.Log)
	listMyBookingsUC := ucBooking.NewListMyBookings(d.Bookings)
	listAllBookingsUC := ucBooking.NewListAllBookings(d.Bookings)
	getBookingUC := ucBooking.NewGetBooking(d.Bookings)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(registerUC, loginUC, d.Log)
	meHandler := handlers.NewMeHandler()
	slotHandler := handlers.NewSlotHandler(listSlotsUC, d.Log)
	bookingHandler := handlers.NewBookingHandler(
		bookSlotUC,
		setStatusUC,
		listMyBookingsUC,
		listAllBookingsUC,
		getBookingUC,
		d.Clock.Location(),
		d.Log,
	)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditLog, d.Clock.Location(), d.Log)

	// ======================================================
	// PUBLIC
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(authLimiter.Middleware())
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
	}

	// ======================================================
	// AUTHENTICATED
	// ======================================================
	secured := r.Group("/")
	secured.Use(middleware.AuthMiddleware(tokens, d.Users))
	{
		secured.GET("/me", meHandler.GetMe)
		secured.GET("/slots", slotHandler.List)
		secured.POST("/book", bookingHandler.Book)
		secured.GET("/my-bookings", bookingHandler.MyBookings)
		secured.GET("/bookings/:id", bookingHandler.Get)
	}

	// ======================================================
	// ADMIN
	// ======================================================
	admin := r.Group("/")
	admin.Use(
		middleware.AuthMiddleware(tokens, d.Users),
		middleware.RequireRole(models.RoleAdmin),
	)
	{
		admin.GET("/all-bookings", bookingHandler.AllBookings)
		admin.PATCH("/bookings/:id/status", bookingHandler.SetStatus)
		admin.GET("/audit-logs", auditLogsHandler.List)
	}
}
