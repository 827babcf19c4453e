package handlers

import (
	"database/sql"
	"strconv"

	"stash/internal/models"

	"github.com/gofiber/fiber/v2"
)

const perPage = 50

func ListItems(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}

		total, _ := models.CountItems(db)
		offset := (page - 1) * perPage

		items, err := models.GetItemsPaginated(db, perPage, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load items",
			})
		}
		if items == nil {
			items = []models.Item{}
		}

		return c.JSON(fiber.Map{
			"items": items,
			"page":  page,
			"total": total,
		})
	}
}

func CreateItem(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item := &models.Item{}
		if err := c.BodyParser(item); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if item.Kind != "note" && item.Kind != "link" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Kind must be note or link",
			})
		}
		if item.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Title is required",
			})
		}
		if !validateBody(item.Body) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Body is too long",
			})
		}

		if err := models.CreateItem(db, item); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create item",
			})
		}

		created, err := models.GetItemByID(db, item.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to reload item",
			})
		}

		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func DeleteItem(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid item ID",
			})
		}

		if _, err := models.GetItemByID(db, id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Item not found",
			})
		}

		if err := models.DeleteItem(db, id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to delete item",
			})
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
