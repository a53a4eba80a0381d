package handler

import (
	"net/http"

	"product_api/internal/auth"
	"product_api/internal/config"
	"product_api/internal/middleware"
	"product_api/internal/observability"
	"product_api/internal/product"
	"product_api/internal/queue"
	"product_api/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const rootMessage = "server and database connected!"

// Dependencies are the collaborators the router is built from. Publisher,
// Metrics and Gatherer may be nil.
type Dependencies struct {
	Config    *config.Config
	Stores    *Stores
	Publisher queue.Publisher
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
}

// SetupHandler initializes all services and routes
func SetupHandler(deps Dependencies) *gin.Engine {
	r := gin.New()

	// Recovery wraps everything so a panic still gets the JSON envelope.
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	if deps.Metrics != nil {
		r.Use(middleware.PrometheusMiddleware(deps.Metrics))
	}
	r.Use(middleware.ErrorHandler())

	// Initialize repositories
	productRepo := product.NewInstrumentedRepository(deps.Stores.Products, deps.Metrics)
	userRepo := user.NewInstrumentedRepository(deps.Stores.Users, deps.Metrics)

	// Initialize services
	productService := product.NewProductService(productRepo, deps.Publisher)
	userService := user.NewUserService(userRepo, deps.Publisher, deps.Config.JWT.Secret, deps.Config.JWT.Expiration)

	// Initialize controllers
	productController := product.NewProductController(productService)
	userController := user.NewUserController(userService)

	authGate := middleware.AuthMiddleware(auth.NewVerifier(deps.Config.JWT.Secret))

	setupRoutes(r, productController, userController, authGate, deps.Gatherer)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(
	r *gin.Engine,
	productCtrl *product.ProductController,
	userCtrl *user.UserController,
	authGate gin.HandlerFunc,
	gatherer prometheus.Gatherer,
) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, rootMessage)
	})

	productCtrl.RegisterRoutes(r, authGate)
	userCtrl.RegisterRoutes(r)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
