package controller

import "github.com/labstack/echo/v4"

type HarvestController interface {
	List(c echo.Context) error
	Detail(c echo.Context) error
	New(c echo.Context) error
	Create(c echo.Context) error
	Edit(c echo.Context) error
	Update(c echo.Context) error
	Sell(c echo.Context) error
	ChangeStatus(c echo.Context) error
	Delete(c echo.Context) error
	Export(c echo.Context) error
	Report(c echo.Context) error
}
