package http

import (
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// pathID binds the `id` path parameter.
func pathID(c echo.Context) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}
	return kernel.UUIDFromGoogle(id)
}

// queryUUID binds an optional uuid query parameter.
func queryUUID(c echo.Context, name string) (*kernel.UUID, error) {
	var raw *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &raw); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.OptionalUUID(raw)
}

// queryString binds an optional string query parameter; "" when absent.
func queryString(c echo.Context, name string) (string, error) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &raw); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	if raw == nil {
		return "", nil
	}
	return *raw, nil
}

// queryInt binds an optional integer query parameter.
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	var raw *int
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &raw); err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	if raw == nil {
		return fallback, nil
	}
	return *raw, nil
}
