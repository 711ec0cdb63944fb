package response

import (
	"github.com/gofiber/fiber/v2"
)

type ResponseOKWithDataModel struct {
	Code         int         `json:"code"`
	Data         interface{} `json:"data"`
	ErrorMessage string      `json:"errorMessage"`
}

type ResponseOKModel struct {
	Code         int    `json:"code"`
	ErrorMessage string `json:"errorMessage"`
}

type ResponseErrorModel struct {
	Code         int         `json:"code"`
	ErrorMessage interface{} `json:"errorMessage"`
}

type PageModel struct {
	Count      int         `json:"count"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Results    interface{} `json:"results"`
}

func ResponseOKWithData(c *fiber.Ctx, data interface{}) error {
	response := ResponseOKWithDataModel{
		Code:         fiber.StatusOK,
		Data:         data,
		ErrorMessage: "",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func ResponseOKWithPage(c *fiber.Ctx, count int, page int, totalPages int, results interface{}) error {
	return ResponseOKWithData(c, PageModel{
		Count:      count,
		Page:       page,
		TotalPages: totalPages,
		Results:    results,
	})
}

func ResponseOK(c *fiber.Ctx, message string) error {
	response := ResponseOKModel{
		Code:         fiber.StatusOK,
		ErrorMessage: message,
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func ResponseCreated(c *fiber.Ctx, data interface{}) error {
	response := ResponseOKWithDataModel{
		Code:         fiber.StatusCreated,
		Data:         data,
		ErrorMessage: "",
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

func ResponseNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func ResponseError(c *fiber.Ctx, err interface{}, code int) error {
	response := ResponseErrorModel{
		Code:         code,
		ErrorMessage: err,
	}

	return c.Status(code).JSON(response)
}
