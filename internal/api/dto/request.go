package dto

import "github.com/labstack/echo/v4"

// HeaderIdempotencyKey carries the client key that makes task creation safe
// to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// Bind decodes the body into req and validates it. Undecodable bodies are a
// 400; rule violations surface as domain.ErrValidation (422).
func Bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
