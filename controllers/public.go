package controllers

import (
	"educators_academy_go/models"
	"educators_academy_go/services"

	"github.com/gofiber/fiber/v2"
)

// PublicController serves the read-only browsing surface. Everything comes
// out of the in-memory snapshot, so there is no database round trip.
type PublicController struct {
	Academy *services.Academy
}

func NewPublicController(academy *services.Academy) *PublicController {
	return &PublicController{Academy: academy}
}

// GetStages returns the fixed stage catalog.
func (pc *PublicController) GetStages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"stages": models.StageCatalog()})
}

// GetGrades returns all grades, optionally filtered by ?stage=.
func (pc *PublicController) GetGrades(c *fiber.Ctx) error {
	grades := pc.Academy.Grades()

	if stage := c.Query("stage"); stage != "" {
		if !models.IsValidStage(models.Stage(stage)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown stage",
			})
		}
		filtered := make([]models.GradeData, 0, len(grades))
		for _, g := range grades {
			if g.Stage == models.Stage(stage) {
				filtered = append(filtered, g)
			}
		}
		grades = filtered
	}

	return c.JSON(fiber.Map{"grades": grades})
}

// GetGrade returns one grade by id.
func (pc *PublicController) GetGrade(c *fiber.Ctx) error {
	grade, ok := pc.Academy.Grade(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Grade not found",
		})
	}
	return c.JSON(fiber.Map{"grade": grade})
}

// GetTeachers returns all teachers.
func (pc *PublicController) GetTeachers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"teachers": pc.Academy.Teachers()})
}

// GetCourses returns all courses, optionally filtered by ?grade_id=.
func (pc *PublicController) GetCourses(c *fiber.Ctx) error {
	courses := pc.Academy.Courses()

	if gradeID := c.Query("grade_id"); gradeID != "" {
		filtered := make([]models.Course, 0, len(courses))
		for _, course := range courses {
			if course.GradeID == gradeID {
				filtered = append(filtered, course)
			}
		}
		courses = filtered
	}

	return c.JSON(fiber.Map{"courses": courses})
}

// GetData returns all three collections in one payload, the shape the
// dashboard bootstraps from.
func (pc *PublicController) GetData(c *fiber.Ctx) error {
	snap := pc.Academy.Snapshot()
	return c.JSON(fiber.Map{
		"grades":   snap.Grades,
		"teachers": snap.Teachers,
		"courses":  snap.Courses,
	})
}
