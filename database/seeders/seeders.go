package seeders

import (
	"educators_academy_go/models"
)

// Built-in seed collections. The coordinator falls back to these per-collection
// whenever the remote store comes back empty; they are never merged field-by-field
// with stored data.

// DefaultTeachers returns the seed teacher collection.
func DefaultTeachers() []models.Teacher {
	return []models.Teacher{
		{
			ID:            "t1",
			Name:          "أ. محمد أحمد",
			Subject:       "اللغة العربية",
			ImageURL:      "https://picsum.photos/seed/t1/400",
			WhatsApp:      "01011828609",
			Availability:  "السبت، الإثنين، الأربعاء",
			TeachingHours: "4:00 - 8:00 مساءً",
			Bio:           "خبير في تدريس اللغة العربية للمرحلة الابتدائية والإعدادية.",
			Grades:        models.StringList{"الرابع الابتدائي", "الخامس الابتدائي"},
			Stages:        models.StageList{models.StagePrimary},
		},
	}
}

// DefaultCourses returns the seed course collection.
func DefaultCourses() []models.Course {
	return []models.Course{
		{
			ID:          "c1",
			Title:       "دورة تأسيس النحو",
			Description: "تأسيس شامل في قواعد النحو من الصفر للمرحلة الابتدائية.",
			Stage:       models.StagePrimary,
			Grade:       "الرابع الابتدائي",
			GradeID:     "p4",
			TeacherID:   "t1",
			Media: models.MediaList{
				{ID: "m1", Title: "مقدمة الكورس", URL: "https://www.w3schools.com/html/mov_bbb.mp4", Type: "video"},
				{ID: "m2", Title: "ملزمة النحو الأساسية", URL: "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf", Type: "pdf"},
			},
		},
	}
}

// DefaultGrades returns the seed grade collection, each with an empty 7-day week.
func DefaultGrades() []models.GradeData {
	grades := []struct {
		id    string
		name  string
		stage models.Stage
	}{
		{"p1", "الصف الأول الابتدائي", models.StagePrimary},
		{"p2", "الصف الثاني الابتدائي", models.StagePrimary},
		{"p3", "الصف الثالث الابتدائي", models.StagePrimary},
		{"p4", "الصف الرابع الابتدائي", models.StagePrimary},
		{"p5", "الصف الخامس الابتدائي", models.StagePrimary},
		{"p6", "الصف السادس الابتدائي", models.StagePrimary},
		{"pr1", "الصف الأول الإعدادي", models.StagePreparatory},
		{"pr2", "الصف الثاني الإعدادي", models.StagePreparatory},
		{"pr3", "الصف الثالث الإعدادي", models.StagePreparatory},
		{"s1", "الصف الأول الثانوي", models.StageSecondary},
		{"s2", "الصف الثاني الثانوي", models.StageSecondary},
		{"s3", "الصف الثالث الثانوي", models.StageSecondary},
		{"l1", "Primary 1 (Languages)", models.StageLanguages},
		{"l2", "Primary 2 (Languages)", models.StageLanguages},
		{"l3", "Prep 1 (Languages)", models.StageLanguages},
		{"l4", "Secondary 1 (Languages)", models.StageLanguages},
	}

	out := make([]models.GradeData, 0, len(grades))
	for _, g := range grades {
		teachers := models.StringList{}
		courses := models.StringList{}
		// Seed associations mirror the seed teacher/course records.
		switch g.id {
		case "p4":
			teachers = models.StringList{"t1"}
			courses = models.StringList{"c1"}
		case "p5":
			teachers = models.StringList{"t1"}
		}
		out = append(out, models.GradeData{
			ID:       g.id,
			Name:     g.name,
			Stage:    g.stage,
			Schedule: models.EmptyWeek(),
			Teachers: teachers,
			Courses:  courses,
		})
	}
	return out
}
