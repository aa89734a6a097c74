package handler // handler defines the HTTP handlers of the consultation API

import (
	"errors"
	"strconv"

	"github.com/iliyamo/consultant-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user's id from the echo context.
// JWTAuth stores the raw "sub" claim, which arrives as float64 from
// JSON decoding but may be other numeric types in tests.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the caller carries the ADMIN role. Admins are
// exempt from ownership checks on slots and bookings.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}
