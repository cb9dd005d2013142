package http

import (
	"net/http"

	_ "github.com/DRSN-tech/shop-orders/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// RouterDeps: всё, что нужно маршрутам.
type RouterDeps struct {
	ProductUC    usecase.ProductUC
	OrderUC      usecase.OrderUC
	MaxImageSize int64
	SwaggerURL   string
}

func (r *Router) Init(deps RouterDeps) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(middleware.Recoverer)
	// Фронтенд магазина живёт на другом порту
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(deps.SwaggerURL), // ссылка на JSON
	))

	r.router.Route("/api", func(api chi.Router) {
		prHandler := NewProductHandler(deps.ProductUC, r.logger, deps.MaxImageSize)
		registerProductRoutes(api, prHandler)

		orHandler := NewOrderHandler(deps.OrderUC, r.logger)
		registerOrderRoutes(api, orHandler)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Post("/", prHandler.createProduct)
		pr.Get("/search", prHandler.searchProducts)
		pr.Get("/{id}", prHandler.getProduct)
		pr.Put("/{id}/stock", prHandler.updateStock)
		pr.Put("/{id}/image", prHandler.uploadImage)
	})
}

func registerOrderRoutes(router chi.Router, orHandler *OrderHandler) {
	router.Route("/orders", func(or chi.Router) {
		or.Post("/", orHandler.createOrder)
		or.Get("/", orHandler.listOrdersByStatus)
		or.Get("/{id}", orHandler.getOrder)
		or.Get("/customer/{email}", orHandler.getOrdersByCustomer)
		or.Put("/{id}/status", orHandler.updateOrderStatus)
	})
}
