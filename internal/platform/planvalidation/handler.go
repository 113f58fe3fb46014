package planvalidation

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carehome/medplan/internal/platform/auth"
)

// Recorder receives validation telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveValidation(operation string, diags []Diagnostic)
	ObserveQuality(score int, level string)
}

// ValidateResponse is the body returned by the validate endpoint.
type ValidateResponse struct {
	Valid       bool             `json:"valid"`
	Counts      map[Severity]int `json:"counts"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
}

// Handler exposes the validator over HTTP.
type Handler struct {
	validator *Validator
	recorder  Recorder
}

// NewHandler creates a Handler. recorder may be nil.
func NewHandler(v *Validator, recorder Recorder) *Handler {
	return &Handler{validator: v, recorder: recorder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff, auth.RoleFamily))
	g.GET("/medical-services", h.ListServices)
	g.POST("/medical-plans/validate", h.Validate)
	g.POST("/medical-plans/quality", h.Quality)
}

func (h *Handler) ListServices(c echo.Context) error {
	return c.JSON(http.StatusOK, MedicalServices())
}

// Validate runs all plan rules. With ?sort=severity the diagnostics are
// returned errors first; otherwise in rule order.
func (h *Handler) Validate(c echo.Context) error {
	var p MedicalPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	diags := h.validator.Validate(p)
	if h.recorder != nil {
		h.recorder.ObserveValidation("validate", diags)
	}
	if c.QueryParam("sort") == "severity" {
		diags = SortBySeverity(diags)
	}
	if diags == nil {
		diags = []Diagnostic{}
	}
	return c.JSON(http.StatusOK, ValidateResponse{
		Valid:       !HasErrors(diags),
		Counts:      CountBySeverity(diags),
		Diagnostics: diags,
	})
}

func (h *Handler) Quality(c echo.Context) error {
	var p MedicalPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	q := h.validator.CalculatePlanQuality(p.Title, p.Appointments, p.Notes)
	if h.recorder != nil {
		h.recorder.ObserveQuality(q.Score, string(q.Level))
	}
	return c.JSON(http.StatusOK, q)
}
