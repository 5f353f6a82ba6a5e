package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) listNotifications(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := s.store.ListNotifications(c.Request().Context(), userID(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": list})
}

func (s *Server) readNotification(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.store.MarkNotificationRead(ctx, userID(c), c.Param("id")); err != nil {
		return fail(c, err)
	}
	n, err := s.store.GetNotification(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, n)
}
