package shared

import "github.com/labstack/echo/v4"

const userIDHeader = "X-User-ID"

// RequireUser returns the caller identity the fronting gateway attached to
// the request. Authentication itself happens upstream; a request without the
// header never passed the gateway.
func RequireUser(c echo.Context) (string, error) {
	userID := c.Request().Header.Get(userIDHeader)
	if userID == "" {
		userID = c.QueryParam("user_id")
	}
	if userID == "" {
		return "", Unauthorized("missing_identity", "caller identity not provided")
	}
	return userID, nil
}
