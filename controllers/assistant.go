package controllers

import (
	"errors"

	"educators_academy_go/middleware"
	"educators_academy_go/services"
	"educators_academy_go/services/ai"
	"educators_academy_go/utils"

	"github.com/gofiber/fiber/v2"
)

// AssistantController carries the voice editing surface: the dashboard sends
// transcribed speech, the language model turns it into structured records.
type AssistantController struct {
	Academy *services.Academy
}

func NewAssistantController(academy *services.Academy) *AssistantController {
	return &AssistantController{Academy: academy}
}

// ScheduleRequest carries a spoken schedule description for one grade.
type ScheduleRequest struct {
	GradeID string `json:"grade_id" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

// TeachersRequest carries a spoken description of one or more new teachers.
type TeachersRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateSchedule parses spoken text into a full weekly schedule and applies it
// to the target grade. A parse failure leaves the grade untouched.
func (ac *AssistantController) UpdateSchedule(c *fiber.Ctx) error {
	var req ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "grade_id and text are required",
		})
	}

	week, err := ac.Academy.UpdateScheduleFromText(c.Context(), req.GradeID, req.Text)
	if err != nil {
		return assistantError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "schedules", req.GradeID, fiber.Map{"via": "assistant"})
	return c.JSON(fiber.Map{"schedule": week})
}

// AddTeachers parses spoken text into teacher records and appends them to the
// collection. Generated fields (id, avatar URL) are filled in server side.
func (ac *AssistantController) AddTeachers(c *fiber.Ctx) error {
	var req TeachersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	added, err := ac.Academy.AddTeachersFromText(c.Context(), req.Text)
	if err != nil {
		return assistantError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "teachers", "", fiber.Map{
		"via":   "assistant",
		"count": len(added),
	})
	return c.JSON(fiber.Map{"teachers": added})
}

func assistantError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAssistantDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ai.ErrSchema):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "The assistant could not produce a valid result, nothing was changed",
		})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
}
