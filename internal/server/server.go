package server

import (
	"context"
	"net/http"

	"orchid-shop/internal/auth"
	"orchid-shop/internal/config"
	"orchid-shop/internal/handler"
	"orchid-shop/internal/metrics"
	authmw "orchid-shop/internal/middleware"
	"orchid-shop/internal/model"
	"orchid-shop/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Account     service.AccountService
	Role        service.RoleService
	Category    service.CategoryService
	Orchid      service.OrchidService
	Order       service.OrderService
	OrderDetail service.OrderDetailService
	Payment     service.PaymentService
}

type Server struct {
	echo    *echo.Echo
	log     *zap.Logger
	metrics *metrics.Metrics

	authHandler        *handler.AuthHandler
	accountHandler     *handler.AccountHandler
	roleHandler        *handler.RoleHandler
	categoryHandler    *handler.CategoryHandler
	orchidHandler      *handler.OrchidHandler
	orderHandler       *handler.OrderHandler
	adminOrderHandler  *handler.AdminOrderHandler
	orderDetailHandler *handler.OrderDetailHandler
	paymentHandler     *handler.PaymentHandler
}

func NewServer(cfg *config.Config, log *zap.Logger, tokens *auth.TokenIssuer, m *metrics.Metrics, svc Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(log)))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(m.Middleware())
	e.Use(authmw.AuthMiddleware(tokens, log.Named("auth")))
	e.Use(authmw.Policy(accessRules()))

	s := &Server{
		echo:    e,
		log:     log,
		metrics: m,

		authHandler:        handler.NewAuthHandler(svc.Auth, cfg.IsProduction()),
		accountHandler:     handler.NewAccountHandler(svc.Account),
		roleHandler:        handler.NewRoleHandler(svc.Role),
		categoryHandler:    handler.NewCategoryHandler(svc.Category),
		orchidHandler:      handler.NewOrchidHandler(svc.Orchid),
		orderHandler:       handler.NewOrderHandler(svc.Order),
		adminOrderHandler:  handler.NewAdminOrderHandler(svc.Order),
		orderDetailHandler: handler.NewOrderDetailHandler(svc.OrderDetail),
		paymentHandler:     handler.NewPaymentHandler(svc.Payment),
	}

	s.setupRoutes()
	return s
}

func requestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				log.Error("request", fields...)
			case v.Status >= http.StatusBadRequest:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		},
	}
}

// accessRules is evaluated top to bottom; the first match decides.
func accessRules() []authmw.Rule {
	admin := model.RoleAdmin
	return []authmw.Rule{
		authmw.Allow(http.MethodPost, "/api/auth/**"),
		authmw.Allow(http.MethodGet, "/api/health"),
		authmw.Allow(http.MethodGet, "/metrics"),
		authmw.Allow(http.MethodPost, "/api/payments/handle-payment"),
		authmw.Allow(http.MethodGet, "/api/orchids/**"),
		authmw.Allow(http.MethodGet, "/api/categories/**"),

		authmw.RequireRole("", "/api/admin/**", admin),
		authmw.RequireRole("", "/api/orchids/**", admin),
		authmw.RequireRole("", "/api/categories/**", admin),
		authmw.RequireRole("", "/api/roles/**", admin),

		authmw.RequireLogin(http.MethodGet, "/api/accounts/me"),
		authmw.RequireRole("", "/api/accounts/**", admin),

		authmw.RequireLogin(http.MethodGet, "/api/order-details/order/*"),
		authmw.RequireLogin(http.MethodGet, "/api/order-details/total-amount/order/*"),
		authmw.RequireRole("", "/api/order-details/**", admin),
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.authHandler.Register)
	authGroup.POST("/login", s.authHandler.Login)
	authGroup.POST("/logout", s.authHandler.Logout)

	// -------- accounts --------
	accounts := api.Group("/accounts")
	accounts.GET("/me", s.accountHandler.Me)
	accounts.GET("", s.accountHandler.List)
	accounts.GET("/:id", s.accountHandler.Get)
	accounts.PUT("/:id/role", s.accountHandler.ChangeRole)

	// -------- roles --------
	roles := api.Group("/roles")
	roles.GET("", s.roleHandler.List)
	roles.GET("/:id", s.roleHandler.Get)
	roles.GET("/name/:name", s.roleHandler.GetByName)
	roles.GET("/search", s.roleHandler.Search)
	roles.GET("/exists/:name", s.roleHandler.Exists)
	roles.POST("", s.roleHandler.Create)
	roles.PUT("/:id", s.roleHandler.Update)
	roles.DELETE("/:id", s.roleHandler.Delete)

	// -------- catalog --------
	categories := api.Group("/categories")
	categories.GET("", s.categoryHandler.List)
	categories.GET("/:id", s.categoryHandler.Get)
	categories.GET("/name/:name", s.categoryHandler.GetByName)
	categories.GET("/search", s.categoryHandler.Search)
	categories.GET("/exists/:name", s.categoryHandler.Exists)
	categories.POST("", s.categoryHandler.Create)
	categories.PUT("/:id", s.categoryHandler.Update)
	categories.DELETE("/:id", s.categoryHandler.Delete)

	orchids := api.Group("/orchids")
	orchids.GET("", s.orchidHandler.List)
	orchids.GET("/:id", s.orchidHandler.Get)
	orchids.GET("/name/:name", s.orchidHandler.GetByName)
	orchids.GET("/category/:categoryId", s.orchidHandler.ListByCategory)
	orchids.GET("/natural/:isNatural", s.orchidHandler.ListByNatural)
	orchids.GET("/price-range", s.orchidHandler.ListByPriceRange)
	orchids.GET("/search/name", s.orchidHandler.SearchByName)
	orchids.GET("/search/description", s.orchidHandler.SearchByDescription)
	orchids.GET("/sorted/price-asc", s.orchidHandler.SortedByPriceAsc)
	orchids.GET("/sorted/price-desc", s.orchidHandler.SortedByPriceDesc)
	orchids.GET("/exists/:name", s.orchidHandler.Exists)
	orchids.POST("", s.orchidHandler.Create)
	orchids.PUT("/:id", s.orchidHandler.Update)
	orchids.DELETE("/:id", s.orchidHandler.Delete)

	// -------- orders --------
	orders := api.Group("/orders")
	orders.POST("", s.orderHandler.AddItem)
	orders.GET("", s.orderHandler.ListMine)
	orders.GET("/status/:status", s.orderHandler.ListMineByStatus)
	orders.GET("/:id", s.orderHandler.Get)
	orders.PUT("/:id", s.orderHandler.Update)
	orders.DELETE("/:id", s.orderHandler.Delete)

	adminOrders := api.Group("/admin/orders")
	adminOrders.GET("", s.adminOrderHandler.List)
	adminOrders.GET("/status/:status", s.adminOrderHandler.ListByStatus)
	adminOrders.GET("/date-range", s.adminOrderHandler.ListByDateRange)
	adminOrders.GET("/account/:accountId/status/:status", s.adminOrderHandler.ListByAccountAndStatus)
	adminOrders.GET("/amount-range", s.adminOrderHandler.ListByAmountRange)
	adminOrders.GET("/sorted/date-desc", s.adminOrderHandler.ListNewestFirst)
	adminOrders.GET("/total-amount/status/:status", s.adminOrderHandler.TotalAmountByStatus)
	adminOrders.GET("/count/account/:accountId", s.adminOrderHandler.CountByAccount)
	adminOrders.PUT("/:id/status/:status", s.adminOrderHandler.UpdateStatus)
	adminOrders.DELETE("/:id", s.adminOrderHandler.Delete)

	details := api.Group("/order-details")
	details.GET("", s.orderDetailHandler.List)
	details.GET("/:id", s.orderDetailHandler.Get)
	details.GET("/order/:orderId", s.orderDetailHandler.ListByOrder)
	details.GET("/orchid/:orchidId", s.orderDetailHandler.ListByOrchid)
	details.GET("/order/:orderId/orchid/:orchidId", s.orderDetailHandler.GetByOrderAndOrchid)
	details.GET("/total-quantity/orchid/:orchidId", s.orderDetailHandler.TotalQuantityByOrchid)
	details.GET("/total-amount/order/:orderId", s.orderDetailHandler.TotalAmountByOrder)
	details.GET("/price-range", s.orderDetailHandler.ListByPriceRange)
	details.GET("/min-quantity/:quantity", s.orderDetailHandler.ListByMinQuantity)

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/create-payment-url", s.paymentHandler.CreatePaymentURL)
	payments.POST("/handle-payment", s.paymentHandler.HandlePayment)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	s.log.Info("http server listening", zap.String("addr", address))
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
