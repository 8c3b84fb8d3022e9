package controllers

import (
	"fmt"

	"educators_academy_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ExportController renders a grade's weekly schedule as an xlsx download for
// printing and sharing outside the dashboard.
type ExportController struct {
	Academy *services.Academy
}

func NewExportController(academy *services.Academy) *ExportController {
	return &ExportController{Academy: academy}
}

// GET /api/admin/grades/:id/schedule/export
func (ec *ExportController) ExportGradeSchedule(c *fiber.Ctx) error {
	grade, ok := ec.Academy.Grade(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Grade not found",
		})
	}

	teachers := ec.Academy.Teachers()
	teacherNames := make(map[string]string, len(teachers))
	for _, t := range teachers {
		teacherNames[t.ID] = t.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", grade.Name)
	f.SetCellValue(sheet, "A2", "اليوم")
	f.SetCellValue(sheet, "B2", "المادة")
	f.SetCellValue(sheet, "C2", "الوقت")
	f.SetCellValue(sheet, "D2", "المدرس")

	row := 3
	for _, day := range grade.Schedule {
		if len(day.Slots) == 0 {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), day.Day)
			row++
			continue
		}
		for _, slot := range day.Slots {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), day.Day)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), slot.Subject)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), slot.Time)
			if name, ok := teacherNames[slot.TeacherID]; ok {
				f.SetCellValue(sheet, fmt.Sprintf("D%d", row), name)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build workbook",
		})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="schedule-%s.xlsx"`, grade.ID))
	return c.Send(buf.Bytes())
}
