package controllers

import (
	"errors"
	"strings"

	"educators_academy_go/config"
	"educators_academy_go/middleware"
	"educators_academy_go/models"
	"educators_academy_go/services"
	"educators_academy_go/storage"
	"educators_academy_go/utils"

	"github.com/gofiber/fiber/v2"
)

// AdminController carries the dashboard's editing surface. Every mutation is
// whole-entity: the client sends the complete record and it replaces whatever
// was stored under that id.
type AdminController struct {
	Academy *services.Academy
	Storage *storage.StorageService
}

// NewAdminController creates the controller. storageService may be nil, which
// disables the upload endpoints.
func NewAdminController(academy *services.Academy, storageService *storage.StorageService) *AdminController {
	return &AdminController{Academy: academy, Storage: storageService}
}

func mutationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// UpsertGrade creates or replaces one grade.
func (ac *AdminController) UpsertGrade(c *fiber.Ctx) error {
	var grade models.GradeData
	if err := c.BodyParser(&grade); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if grade.Name == "" || !models.IsValidStage(grade.Stage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Grade needs a name and a valid stage",
		})
	}

	saved, err := ac.Academy.UpsertGrade(grade)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "UPSERT", "grades", saved.ID, nil)
	return c.JSON(fiber.Map{"grade": saved})
}

// DeleteGrade removes one grade.
func (ac *AdminController) DeleteGrade(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ac.Academy.DeleteGrade(id); err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "grades", id, nil)
	return c.JSON(fiber.Map{"message": "Grade deleted"})
}

// ReplaceGrades swaps the whole grade collection.
func (ac *AdminController) ReplaceGrades(c *fiber.Ctx) error {
	var grades []models.GradeData
	if err := c.BodyParser(&grades); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ac.Academy.ReplaceGrades(grades); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "REPLACE", "grades", "", fiber.Map{"count": len(grades)})
	return c.JSON(fiber.Map{"grades": ac.Academy.Grades()})
}

// UpdateGradeSchedule replaces one grade's weekly schedule.
func (ac *AdminController) UpdateGradeSchedule(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Schedule []models.DaySchedule `json:"schedule"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ac.Academy.ApplyScheduleUpdate(id, req.Schedule); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	grade, _ := ac.Academy.Grade(id)
	middleware.LogActivity(c, "UPDATE", "schedules", id, nil)
	return c.JSON(fiber.Map{"grade": grade})
}

// UpsertTeacher creates or replaces one teacher.
func (ac *AdminController) UpsertTeacher(c *fiber.Ctx) error {
	var teacher models.Teacher
	if err := c.BodyParser(&teacher); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if teacher.Name == "" || teacher.Subject == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Teacher needs a name and a subject",
		})
	}

	saved, err := ac.Academy.UpsertTeacher(teacher)
	if err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "UPSERT", "teachers", saved.ID, nil)
	return c.JSON(fiber.Map{"teacher": saved})
}

// DeleteTeacher removes one teacher. Schedule slots and courses that point at
// the removed id keep their dangling reference.
func (ac *AdminController) DeleteTeacher(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ac.Academy.DeleteTeacher(id); err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "teachers", id, nil)
	return c.JSON(fiber.Map{"message": "Teacher deleted"})
}

// ReplaceTeachers swaps the whole teacher collection.
func (ac *AdminController) ReplaceTeachers(c *fiber.Ctx) error {
	var teachers []models.Teacher
	if err := c.BodyParser(&teachers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ac.Academy.ReplaceTeachers(teachers); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "REPLACE", "teachers", "", fiber.Map{"count": len(teachers)})
	return c.JSON(fiber.Map{"teachers": ac.Academy.Teachers()})
}

// UpsertCourse creates or replaces one course.
func (ac *AdminController) UpsertCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if course.Title == "" || !models.IsValidStage(course.Stage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course needs a title and a valid stage",
		})
	}

	saved, err := ac.Academy.UpsertCourse(course)
	if err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "UPSERT", "courses", saved.ID, nil)
	return c.JSON(fiber.Map{"course": saved})
}

// DeleteCourse removes one course together with its owned media entries.
func (ac *AdminController) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ac.Academy.DeleteCourse(id); err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "courses", id, nil)
	return c.JSON(fiber.Map{"message": "Course deleted"})
}

// ReplaceCourses swaps the whole course collection.
func (ac *AdminController) ReplaceCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := c.BodyParser(&courses); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ac.Academy.ReplaceCourses(courses); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "REPLACE", "courses", "", fiber.Map{"count": len(courses)})
	return c.JSON(fiber.Map{"courses": ac.Academy.Courses()})
}

// receiveImage validates and uploads the "file" form field into the given S3
// folder, returning the public URL.
func (ac *AdminController) receiveImage(c *fiber.Ctx, folder string) (string, error) {
	if ac.Storage == nil {
		return "", fiber.NewError(fiber.StatusServiceUnavailable, "File storage is not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Missing file")
	}
	if file.Size > config.AppConfig.MaxFileSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}
	if !utils.IsValidFileExtension(file.Filename, strings.Split(config.AppConfig.AllowedExtensions, ",")) {
		return "", fiber.NewError(fiber.StatusBadRequest, "File type not allowed")
	}

	url, err := ac.Storage.UploadFile(file, folder)
	if err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Upload failed")
	}
	return url, nil
}

// UploadTeacherAvatar uploads a photo for one teacher and stores its URL on
// the record.
func (ac *AdminController) UploadTeacherAvatar(c *fiber.Ctx) error {
	id := c.Params("id")

	var teacher models.Teacher
	found := false
	for _, t := range ac.Academy.Teachers() {
		if t.ID == id {
			teacher = t
			found = true
			break
		}
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}

	url, err := ac.receiveImage(c, "avatars")
	if err != nil {
		return err
	}

	teacher.ImageURL = url
	saved, err := ac.Academy.UpsertTeacher(teacher)
	if err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "UPLOAD", "teachers", id, fiber.Map{"field": "imageUrl"})
	return c.JSON(fiber.Map{"teacher": saved})
}

// UploadCourseThumbnail uploads a thumbnail image for one course and stores
// its URL on the record.
func (ac *AdminController) UploadCourseThumbnail(c *fiber.Ctx) error {
	id := c.Params("id")

	var course models.Course
	found := false
	for _, co := range ac.Academy.Courses() {
		if co.ID == id {
			course = co
			found = true
			break
		}
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	url, err := ac.receiveImage(c, "thumbnails")
	if err != nil {
		return err
	}

	course.ThumbnailURL = url
	saved, err := ac.Academy.UpsertCourse(course)
	if err != nil {
		return mutationError(c, err)
	}

	middleware.LogActivity(c, "UPLOAD", "courses", id, fiber.Map{"field": "thumbnailUrl"})
	return c.JSON(fiber.Map{"course": saved})
}
