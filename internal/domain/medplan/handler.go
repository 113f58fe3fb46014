package medplan

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carehome/medplan/internal/platform/auth"
	"github.com/carehome/medplan/internal/platform/planvalidation"
	"github.com/carehome/medplan/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff, auth.RoleFamily))
	read.GET("/medical-plans", h.ListPlans)
	read.GET("/medical-plans/:id", h.GetPlan)

	write := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff))
	write.POST("/medical-plans", h.CreatePlan)
	write.PUT("/medical-plans/:id", h.UpdatePlan)
	write.DELETE("/medical-plans/:id", h.DeletePlan)
}

// RejectionBody is the 422 payload for a plan that failed validation.
type RejectionBody struct {
	Message     string                      `json:"message"`
	Diagnostics []planvalidation.Diagnostic `json:"diagnostics"`
}

func httpError(err error) error {
	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, RejectionBody{
			Message:     rejected.Error(),
			Diagnostics: rejected.Diagnostics,
		})
	case errors.Is(err, ErrPlanNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "medical plan not found")
	case errors.Is(err, ErrResidentRequired), errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var p Plan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p.CreatedBy = auth.UserIDFromContext(ctx)
	if err := h.svc.CreatePlan(ctx, &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	var (
		items []*Plan
		total int
		err   error
	)
	if residentID := c.QueryParam("resident_id"); residentID != "" {
		rid, perr := uuid.Parse(residentID)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid resident_id")
		}
		items, total, err = h.svc.ListPlansByResident(ctx, rid, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.ListPlans(ctx, pg.Limit, pg.Offset)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var p Plan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePlan(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePlan(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePlan(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
