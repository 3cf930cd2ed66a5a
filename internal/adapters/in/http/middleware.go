package http

import (
	"context"
	"net/http"
	"strings"

	"fooddispatch/internal/core/application/auth"
	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const principalKey = "principal"

// authorize resolves the bearer token through the guard and requires one of
// caps. The principal is stored on the echo context.
func authorize(guard *auth.Guard, caps ...access.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := guard.Authorize(c.Request().Context(), bearerToken(c.Request()), caps...)
			if err != nil {
				return err
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return token
}

func principalFrom(c echo.Context) access.Principal {
	p, _ := c.Get(principalKey).(access.Principal)
	return p
}

// validateRequest checks parameters and bodies against the API contract.
// Requests without a matching operation are left to the echo router.
func validateRequest(spec *Spec) echo.MiddlewareFunc {
	options := &openapi3filter.Options{
		// credentials are checked by authorize
		AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := spec.router.FindRoute(req)
			if err != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err = openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, firstLine(err.Error()))
			}
			return next(c)
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// pathUUID binds a uuid path parameter the way generated servers do.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromGoogle(id), nil
}

// queryLimit binds the optional limit query parameter; 0 means the default.
func queryLimit(c echo.Context) (int, error) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &limit); err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("limit", err)
	}
	if limit == nil {
		return 0, nil
	}
	return *limit, nil
}
