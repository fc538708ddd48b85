package controller

import "github.com/labstack/echo/v4"

type PaymentMethodController interface {
	List(c echo.Context) error
	Detail(c echo.Context) error
	New(c echo.Context) error
	Create(c echo.Context) error
	Edit(c echo.Context) error
	Update(c echo.Context) error
	Toggle(c echo.Context) error
	Delete(c echo.Context) error
	Move(c echo.Context) error
}
