package http

import (
	_ "ordering/docs" // registers the OpenAPI document

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterDocs serves the Swagger UI and doc.json under /swagger.
func RegisterDocs(e *echo.Echo) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
