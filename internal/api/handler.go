// Package api exposes the pricing service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"OptionPrisma/internal/metrics"
	"OptionPrisma/internal/model"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Pricer is the part of pricing.Service the handlers use.
type Pricer interface {
	Run(ctx context.Context, in model.PricingInputs, seed *uint64) (*model.SimulationRecord, error)
	Get(ctx context.Context, id string) (*model.SimulationRecord, error)
	List(ctx context.Context) ([]*model.SimulationRecord, error)
	Delete(ctx context.Context, id string) error
}

// pricingRequest is the body of POST /simulations. Binding tags reject
// malformed bodies early; the domain validator stays authoritative.
// Volatility and rate are pointers so that an absent key fails "required"
// while an explicit 0 still binds.
type pricingRequest struct {
	SpotPrice      float64  `json:"spot_price" binding:"required,gt=0"`
	StrikePrice    float64  `json:"strike_price" binding:"required,gt=0"`
	TimeToMaturity float64  `json:"time_to_maturity" binding:"required,gt=0,lte=10"`
	Volatility     *float64 `json:"volatility" binding:"required,gte=0,lte=5"`
	RiskFreeRate   *float64 `json:"risk_free_rate" binding:"required,gte=-0.1,lte=0.3"`
	OptionType     string   `json:"option_type" binding:"required,oneof=call put"`
	NumSimulations int      `json:"num_simulations" binding:"omitempty,gte=1000,lte=1000000"`
	Seed           *uint64  `json:"seed"`
}

func (r pricingRequest) inputs() model.PricingInputs {
	return model.PricingInputs{
		SpotPrice:      r.SpotPrice,
		StrikePrice:    r.StrikePrice,
		TimeToMaturity: r.TimeToMaturity,
		Volatility:     *r.Volatility,
		RiskFreeRate:   *r.RiskFreeRate,
		OptionType:     model.OptionType(r.OptionType),
		NumSimulations: r.NumSimulations,
	}
}

// Handler serves the simulation endpoints.
type Handler struct {
	pricer Pricer
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(pricer Pricer, logger *zap.Logger) *Handler {
	return &Handler{pricer: pricer, logger: logger}
}

var registerTagNames sync.Once

// NewRouter builds the gin engine with every route. m may be nil, which
// leaves out request metrics and /metrics.
func NewRouter(pricer Pricer, logger *zap.Logger, m *metrics.Metrics) *gin.Engine {
	registerTagNames.Do(useJSONFieldNames)

	r := gin.New()
	r.Use(requestLogger(logger, m), recovery(logger))

	h := NewHandler(pricer, logger)
	r.GET("/", h.Health)
	r.GET("/health", h.Health)
	r.POST("/simulations", h.Create)
	r.GET("/simulations", h.List)
	r.GET("/simulations/:id", h.Get)
	r.DELETE("/simulations/:id", h.Delete)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	return r
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"version":   Version,
	})
}

// Create runs and stores a new simulation.
func (h *Handler) Create(c *gin.Context) {
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": bindingDetail(err)})
		return
	}

	rec, err := h.pricer.Run(c.Request.Context(), req.inputs(), req.Seed)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": ve.Reason})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "simulation failed"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// List returns every stored simulation in creation order.
func (h *Handler) List(c *gin.Context) {
	recs, err := h.pricer.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list simulations"})
		return
	}
	if recs == nil {
		recs = []*model.SimulationRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

// Get returns one stored simulation.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.pricer.Get(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes one stored simulation.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.pricer.Delete(c.Request.Context(), id); err != nil {
		h.lookupError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) lookupError(c *gin.Context, id string, err error) {
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Simulation %s not found", id)})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "storage failure"})
}

// bindingDetail renders a bind failure as one line naming the JSON fields.
func bindingDetail(err error) string {
	var verrs govalidator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body: " + err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}
