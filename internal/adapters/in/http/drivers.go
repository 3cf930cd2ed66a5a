package http

import (
	"net/http"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// RegisterDriver creates an active driver profile that is off shift.
//
//	@Summary	Register a driver
//	@Tags		drivers
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RegisterDriverRequest	true	"driver profile"
//	@Success	201		{object}	DriverResponse
//	@Failure	400		{object}	ErrorResponse
//	@Security	bearerAuth
//	@Router		/api/v1/drivers [post]
func (s *Server) RegisterDriver(c echo.Context) error {
	var req RegisterDriverRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	vehicle, err := driver.ParseVehicleType(req.VehicleType)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRegisterDriverCommand(principalFrom(c), kernel.NewUUID(),
		kernel.UUIDFromGoogle(req.UserID), vehicle, req.LicensePlate)
	if err != nil {
		return err
	}
	if err = s.handlers.RegisterDriver.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, DriverResponse{
		ID:           cmd.DriverID().String(),
		UserID:       cmd.UserID().String(),
		IsActive:     true,
		VehicleType:  cmd.VehicleType().String(),
		LicensePlate: cmd.LicensePlate(),
	})
}

// ListDrivers
//
//	@Summary	List drivers
//	@Tags		drivers
//	@Produce	json
//	@Param		limit	query		int	false	"page size"
//	@Success	200		{object}	DriverListResponse
//	@Security	bearerAuth
//	@Router		/api/v1/drivers [get]
func (s *Server) ListDrivers(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}

	query, err := queries.NewListDriversQuery(principalFrom(c), limit)
	if err != nil {
		return err
	}
	seq, err := s.handlers.ListDrivers.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	resp := DriverListResponse{Items: make([]DriverResponse, 0, query.PageSize())}
	for view, iterErr := range seq {
		if iterErr != nil {
			return iterErr
		}
		resp.Items = append(resp.Items, driverResponseOf(view))
		if len(resp.Items) == query.PageSize() {
			break
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// SetAvailability records the calling driver going on or off shift. Going on
// shift triggers a matching pass.
//
//	@Summary	Set own availability
//	@Tags		drivers
//	@Accept		json
//	@Param		body	body	AvailabilityRequest	true	"availability"
//	@Success	204
//	@Security	bearerAuth
//	@Router		/api/v1/drivers/me/availability [put]
func (s *Server) SetAvailability(c echo.Context) error {
	var req AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Available == nil {
		return errs.NewValueIsRequiredError("available")
	}

	cmd, err := commands.NewSetDriverAvailabilityCommand(principalFrom(c), *req.Available)
	if err != nil {
		return err
	}
	if err = s.handlers.SetAvailability.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetActivation
//
//	@Summary	Activate or deactivate a driver
//	@Tags		drivers
//	@Accept		json
//	@Param		id		path	string				true	"driver id"
//	@Param		body	body	ActivationRequest	true	"activation"
//	@Success	204
//	@Security	bearerAuth
//	@Router		/api/v1/drivers/{id}/activation [put]
func (s *Server) SetActivation(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req ActivationRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	if req.Active == nil {
		return errs.NewValueIsRequiredError("active")
	}

	cmd, err := commands.NewSetDriverActivationCommand(principalFrom(c), id, *req.Active)
	if err != nil {
		return err
	}
	if err = s.handlers.SetActivation.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
