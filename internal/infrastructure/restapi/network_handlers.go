package restapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"deploy_networks/internal/app/port"
	"deploy_networks/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIErrorResponse is the body of every non-2xx response.
type APIErrorResponse struct {
	Error   string `json:"error"`
	Network string `json:"network,omitempty"`
}

// APIStatusResponse is the body of the aggregated status endpoint.
type APIStatusResponse struct {
	Data struct {
		Networks []entity.NetworkStatus `json:"networks"`
	} `json:"data"`
	ServiceErrors []entity.NetworkError `json:"service_errors,omitempty"`
	StatusMessage string                `json:"status_message"`
}

// NetworkHandler serves the network endpoints.
type NetworkHandler struct {
	networkService port.NetworkService
	logger         port.Logger
	checkTimeout   time.Duration
}

// NewNetworkHandler creates a new instance of NetworkHandler.
func NewNetworkHandler(ns port.NetworkService, l port.Logger, checkTimeout time.Duration) *NetworkHandler {
	return &NetworkHandler{
		networkService: ns,
		logger:         l,
		checkTimeout:   checkTimeout,
	}
}

// statusCode maps service errors onto HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnknownNetwork):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrProviderConstruction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (h *NetworkHandler) fail(c *gin.Context, name string, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "network", name, "error", err)
	}
	c.AbortWithStatusJSON(code, APIErrorResponse{Error: err.Error(), Network: name})
}

func (h *NetworkHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.checkTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.checkTimeout)
}

// ListNetworksHandler returns all configured networks.
func (h *NetworkHandler) ListNetworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"networks": h.networkService.ListNetworks()})
}

// GetNetworkHandler returns one network.
func (h *NetworkHandler) GetNetworkHandler(c *gin.Context) {
	name := c.Param("name")
	summary, err := h.networkService.Describe(name)
	if err != nil {
		h.fail(c, name, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAccountsHandler returns the accounts derived for a network.
func (h *NetworkHandler) GetAccountsHandler(c *gin.Context) {
	name := c.Param("name")
	accounts, err := h.networkService.Accounts(name)
	if err != nil {
		h.fail(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"network": name, "accounts": accounts})
}

// GetNetworkStatusHandler checks one network against its node.
func (h *NetworkHandler) GetNetworkStatusHandler(c *gin.Context) {
	name := c.Param("name")
	ctx, cancel := h.requestContext(c)
	defer cancel()

	status, err := h.networkService.Check(ctx, name)
	if err != nil {
		if errors.Is(err, entity.ErrUnknownNetwork) || errors.Is(err, entity.ErrProviderConstruction) {
			h.fail(c, name, err)
			return
		}
		h.logger.Warn("Network check failed", "network", name, "error", err)
		c.JSON(http.StatusBadGateway, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetStatusHandler checks every network, or those named by repeated ?network= parameters.
func (h *NetworkHandler) GetStatusHandler(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	statuses, serviceErrors := h.networkService.CheckAll(ctx, c.QueryArray("network"))

	response := APIStatusResponse{ServiceErrors: serviceErrors}
	response.Data.Networks = statuses

	switch {
	case len(statuses) == 0:
		response.StatusMessage = "No networks configured."
	case len(serviceErrors) == len(statuses):
		response.StatusMessage = "All network checks failed."
	case len(serviceErrors) > 0:
		response.StatusMessage = "Some network checks failed."
	default:
		response.StatusMessage = "All networks are reachable."
	}

	c.JSON(http.StatusOK, response)
}
