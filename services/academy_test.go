package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"educators_academy_go/database/seeders"
	"educators_academy_go/models"
	"educators_academy_go/store"
)

type fakeGateway struct {
	snap    store.Snapshot
	loadErr error
	saveErr error

	savedGrades   [][]models.GradeData
	savedTeachers [][]models.Teacher
	savedCourses  [][]models.Course
}

func (f *fakeGateway) LoadData() (store.Snapshot, error) {
	return f.snap, f.loadErr
}

func (f *fakeGateway) SaveGrades(grades []models.GradeData) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedGrades = append(f.savedGrades, grades)
	return nil
}

func (f *fakeGateway) SaveTeachers(teachers []models.Teacher) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedTeachers = append(f.savedTeachers, teachers)
	return nil
}

func (f *fakeGateway) SaveCourses(courses []models.Course) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedCourses = append(f.savedCourses, courses)
	return nil
}

type fakeParser struct {
	week     []models.DaySchedule
	teachers []models.Teacher
	err      error
}

func (f *fakeParser) ParseSchedule(ctx context.Context, text string) ([]models.DaySchedule, error) {
	return f.week, f.err
}

func (f *fakeParser) ParseTeachers(ctx context.Context, text string) ([]models.Teacher, error) {
	return f.teachers, f.err
}

func newTestAcademy(t *testing.T, gw *fakeGateway, parser *fakeParser) *Academy {
	t.Helper()
	var a *Academy
	if parser == nil {
		a = NewAcademy(gw, nil)
	} else {
		a = NewAcademy(gw, parser)
	}
	a.Bootstrap()
	return a
}

func TestBootstrapSeedFallback(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	snap := a.Snapshot()
	if got, want := len(snap.Grades), len(seeders.DefaultGrades()); got != want {
		t.Fatalf("expected %d seed grades, got %d", want, got)
	}
	if got, want := len(snap.Teachers), len(seeders.DefaultTeachers()); got != want {
		t.Fatalf("expected %d seed teachers, got %d", want, got)
	}
	if got, want := len(snap.Courses), len(seeders.DefaultCourses()); got != want {
		t.Fatalf("expected %d seed courses, got %d", want, got)
	}
}

func TestBootstrapKeepsStoredCollections(t *testing.T) {
	stored := []models.GradeData{
		{ID: "g-custom", Name: "صف مخصص", Stage: models.StagePrimary, Schedule: models.EmptyWeek()},
	}
	gw := &fakeGateway{snap: store.Snapshot{Grades: stored}}
	a := newTestAcademy(t, gw, nil)

	snap := a.Snapshot()
	if len(snap.Grades) != 1 || snap.Grades[0].ID != "g-custom" {
		t.Fatalf("expected stored grades to win over seeds, got %d grades", len(snap.Grades))
	}
	// Empty stored collections still fall back to seeds, per collection.
	if len(snap.Teachers) != len(seeders.DefaultTeachers()) {
		t.Fatalf("expected seed teachers for empty stored collection")
	}
}

func TestBootstrapLoadErrorServesSeeds(t *testing.T) {
	gw := &fakeGateway{loadErr: errors.New("db down")}
	a := newTestAcademy(t, gw, nil)

	if len(a.Grades()) != len(seeders.DefaultGrades()) {
		t.Fatalf("expected seed grades when load fails")
	}
}

func TestApplyScheduleUpdateCanonicalizes(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAcademy(t, gw, nil)

	// Only one day supplied; the rest must come back empty, in fixed order.
	week := []models.DaySchedule{
		{Day: "الأحد", Slots: []models.ScheduleSlot{{ID: "s1", Subject: "رياضيات", Time: "4:00 - 6:00", Color: "#ff0000"}}},
	}
	if err := a.ApplyScheduleUpdate("p4", week); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	grade, ok := a.Grade("p4")
	if !ok {
		t.Fatalf("grade p4 missing")
	}
	if len(grade.Schedule) != 7 {
		t.Fatalf("expected 7 days, got %d", len(grade.Schedule))
	}
	for i, day := range grade.Schedule {
		if day.Day != models.Weekdays[i] {
			t.Fatalf("day %d: expected %q, got %q", i, models.Weekdays[i], day.Day)
		}
		if day.Slots == nil {
			t.Fatalf("day %q: slots must not be nil", day.Day)
		}
	}
	if len(grade.Schedule[1].Slots) != 1 || grade.Schedule[1].Slots[0].Subject != "رياضيات" {
		t.Fatalf("expected the supplied slot under الأحد")
	}
}

func TestApplyScheduleUpdateTouchesOnlyTargetGrade(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAcademy(t, gw, nil)

	before := a.Grades()
	week := []models.DaySchedule{
		{Day: "السبت", Slots: []models.ScheduleSlot{{ID: "s1", Subject: "علوم", Time: "10:00", Color: "#00ff00"}}},
	}
	if err := a.ApplyScheduleUpdate("p4", week); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := a.Grades()
	for i := range before {
		if before[i].ID == "p4" {
			continue
		}
		if len(after[i].Schedule[0].Slots) != len(before[i].Schedule[0].Slots) {
			t.Fatalf("grade %q changed by an update targeting p4", before[i].ID)
		}
	}

	// The whole collection is persisted, not just the one grade.
	if len(gw.savedGrades) != 1 {
		t.Fatalf("expected one save, got %d", len(gw.savedGrades))
	}
	if len(gw.savedGrades[0]) != len(before) {
		t.Fatalf("expected full collection persisted, got %d grades", len(gw.savedGrades[0]))
	}
}

func TestApplyScheduleUpdateUnknownGrade(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	err := a.ApplyScheduleUpdate("nope", models.EmptyWeek())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyScheduleUpdateRejectsUnknownDay(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAcademy(t, gw, nil)

	week := []models.DaySchedule{{Day: "Monday", Slots: []models.ScheduleSlot{}}}
	if err := a.ApplyScheduleUpdate("p4", week); err == nil {
		t.Fatalf("expected error for unknown day name")
	}
	if len(gw.savedGrades) != 0 {
		t.Fatalf("rejected update must not persist")
	}
}

var teacherIDPattern = regexp.MustCompile(`^t-\d+-[a-z0-9]+$`)

func TestApplyNewTeachersFillsGeneratedFields(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAcademy(t, gw, nil)

	added, err := a.ApplyNewTeachers([]models.Teacher{{Name: "أحمد", Subject: "الرياضيات"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("expected 1 teacher added, got %d", len(added))
	}

	got := added[0]
	if !teacherIDPattern.MatchString(got.ID) {
		t.Fatalf("generated id %q does not match t-<millis>-<alnum>", got.ID)
	}
	if got.Name != "أحمد" || got.Subject != "الرياضيات" {
		t.Fatalf("fragment fields must be stored as-is, got %+v", got)
	}
	// The avatar URL carries the URL-encoded name.
	if got.ImageURL != "https://ui-avatars.com/api/?name=%D8%A3%D8%AD%D9%85%D8%AF&background=random" {
		t.Fatalf("unexpected avatar URL %q", got.ImageURL)
	}

	teachers := a.Teachers()
	if len(teachers) != len(seeders.DefaultTeachers())+1 {
		t.Fatalf("teacher was not appended to the collection")
	}
}

func TestApplyNewTeachersKeepsExplicitImage(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	added, err := a.ApplyNewTeachers([]models.Teacher{
		{Name: "سارة", Subject: "لغة إنجليزية", ImageURL: "https://example.com/sara.jpg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added[0].ImageURL != "https://example.com/sara.jpg" {
		t.Fatalf("explicit image URL was overwritten: %q", added[0].ImageURL)
	}
}

func TestApplyNewTeachersRegeneratesCollidingID(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	// "t1" is taken by the seed teacher.
	added, err := a.ApplyNewTeachers([]models.Teacher{{ID: "t1", Name: "خالد", Subject: "فيزياء"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added[0].ID == "t1" {
		t.Fatalf("colliding id must be regenerated")
	}

	seen := map[string]bool{}
	for _, tc := range a.Teachers() {
		if seen[tc.ID] {
			t.Fatalf("duplicate teacher id %q", tc.ID)
		}
		seen[tc.ID] = true
	}
}

func TestApplyNewTeachersEmptyInputIsNoOp(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAcademy(t, gw, nil)

	added, err := a.ApplyNewTeachers(nil)
	if err != nil || added != nil {
		t.Fatalf("expected no-op, got %v, %v", added, err)
	}
	if len(gw.savedTeachers) != 0 {
		t.Fatalf("no-op must not persist")
	}
}

func TestAddTeachersFromText(t *testing.T) {
	parser := &fakeParser{teachers: []models.Teacher{{Name: "أحمد", Subject: "الرياضيات"}}}
	a := newTestAcademy(t, &fakeGateway{}, parser)

	added, err := a.AddTeachersFromText(context.Background(), "أضف مدرس اسمه أحمد يدرس الرياضيات")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(added) != 1 || added[0].Name != "أحمد" || added[0].Subject != "الرياضيات" {
		t.Fatalf("unexpected result %+v", added)
	}
}

func TestUpdateScheduleFromTextParserFailureLeavesState(t *testing.T) {
	gw := &fakeGateway{}
	parser := &fakeParser{err: errors.New("model unavailable")}
	a := newTestAcademy(t, gw, parser)

	before := a.Grades()
	if _, err := a.UpdateScheduleFromText(context.Background(), "p4", "whatever"); err == nil {
		t.Fatalf("expected error from parser")
	}

	after := a.Grades()
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("grade order changed")
		}
	}
	if len(gw.savedGrades) != 0 {
		t.Fatalf("failed parse must not persist anything")
	}
}

func TestAssistantDisabledWithoutParser(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	if a.AssistantEnabled() {
		t.Fatalf("assistant should be disabled without a parser")
	}
	if _, err := a.UpdateScheduleFromText(context.Background(), "p4", "x"); !errors.Is(err, ErrAssistantDisabled) {
		t.Fatalf("expected ErrAssistantDisabled, got %v", err)
	}
	if _, err := a.AddTeachersFromText(context.Background(), "x"); !errors.Is(err, ErrAssistantDisabled) {
		t.Fatalf("expected ErrAssistantDisabled, got %v", err)
	}
}

func TestUpsertGradeReplacesById(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	count := len(a.Grades())
	saved, err := a.UpsertGrade(models.GradeData{ID: "p4", Name: "الصف الرابع المطور", Stage: models.StagePrimary})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Name != "الصف الرابع المطور" {
		t.Fatalf("unexpected saved grade %+v", saved)
	}
	if len(a.Grades()) != count {
		t.Fatalf("upsert on existing id must not grow the collection")
	}

	grade, _ := a.Grade("p4")
	if len(grade.Schedule) != 7 {
		t.Fatalf("upserted grade must carry a full 7-day schedule")
	}
}

func TestUpsertGradeGeneratesID(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	saved, err := a.UpsertGrade(models.GradeData{Name: "صف جديد", Stage: models.StageLanguages})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated grade id")
	}
}

func TestDeleteGrade(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	if err := a.DeleteGrade("p4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.Grade("p4"); ok {
		t.Fatalf("grade still present after delete")
	}
	if err := a.DeleteGrade("p4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteTeacherLeavesReferencesDangling(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	if err := a.DeleteTeacher("t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// p4 references t1 in its teacher list; the soft reference survives.
	grade, _ := a.Grade("p4")
	found := false
	for _, id := range grade.Teachers {
		if id == "t1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("soft reference should not be cleaned up on teacher delete")
	}
}

func TestReplaceTeachersRejectsDuplicateIDs(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestAcademy(t, gw, nil)

	err := a.ReplaceTeachers([]models.Teacher{
		{ID: "x", Name: "أ", Subject: "ب"},
		{ID: "x", Name: "ج", Subject: "د"},
	})
	if err == nil {
		t.Fatalf("expected duplicate id rejection")
	}
	if len(gw.savedTeachers) != 0 {
		t.Fatalf("rejected replace must not persist")
	}
}

func TestMutationKeepsMemoryOnSaveError(t *testing.T) {
	gw := &fakeGateway{saveErr: errors.New("disk full")}
	a := newTestAcademy(t, gw, nil)

	week := []models.DaySchedule{
		{Day: "السبت", Slots: []models.ScheduleSlot{{ID: "s1", Subject: "كيمياء", Time: "9:00", Color: "#123456"}}},
	}
	if err := a.ApplyScheduleUpdate("p4", week); err == nil {
		t.Fatalf("expected save error to surface")
	}

	// Memory-first: the update is visible even though persistence failed.
	grade, _ := a.Grade("p4")
	if len(grade.Schedule[0].Slots) != 1 {
		t.Fatalf("in-memory state should keep the update on save failure")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	a := newTestAcademy(t, &fakeGateway{}, nil)

	snap := a.Snapshot()
	snap.Grades[0].Name = "mutated"
	snap.Grades[0].Schedule[0].Slots = append(snap.Grades[0].Schedule[0].Slots, models.ScheduleSlot{ID: "rogue"})

	fresh := a.Snapshot()
	if fresh.Grades[0].Name == "mutated" {
		t.Fatalf("snapshot aliases internal state")
	}
	if len(fresh.Grades[0].Schedule[0].Slots) != 0 {
		t.Fatalf("snapshot aliases nested slices")
	}
}
