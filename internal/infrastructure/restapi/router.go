package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions toggles optional middleware and endpoints.
type RouterOptions struct {
	EnableCORS bool
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// SetupRouter builds the gin engine.
func SetupRouter(networkHandler *NetworkHandler, opts RouterOptions) *gin.Engine {
	router := gin.Default()

	if opts.EnableCORS {
		router.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		}))
	}

	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", networkHandler.ListNetworksHandler)
		v1.GET("/networks/:name", networkHandler.GetNetworkHandler)
		v1.GET("/networks/:name/accounts", networkHandler.GetAccountsHandler)
		v1.GET("/networks/:name/status", networkHandler.GetNetworkStatusHandler)
		v1.GET("/status", networkHandler.GetStatusHandler)
	}

	return router
}
