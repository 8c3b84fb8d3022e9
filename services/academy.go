package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"educators_academy_go/database/seeders"
	"educators_academy_go/models"
	"educators_academy_go/services/ai"
	"educators_academy_go/services/websocket"
	"educators_academy_go/store"
	"educators_academy_go/utils"

	"github.com/sirupsen/logrus"
)

// ErrAssistantDisabled is returned by the voice paths when no language-model
// credential is configured.
var ErrAssistantDisabled = errors.New("voice assistant is disabled: no API key configured")

// ErrNotFound is returned when a mutation targets an id that is not in the
// collection.
var ErrNotFound = errors.New("record not found")

// Academy owns the in-memory authoritative snapshot of grades, teachers and
// courses and mediates every mutation path. All mutations serialize behind one
// mutex; reads get copies. Each mutation swaps the complete new collection
// into memory first and then persists it whole. If the save fails the
// in-memory state has diverged from storage, which is logged and surfaced but
// not rolled back.
type Academy struct {
	mu       sync.RWMutex
	grades   []models.GradeData
	teachers []models.Teacher
	courses  []models.Course

	store  store.Gateway
	parser ai.Parser
	hub    *websocket.Hub
}

// NewAcademy creates a coordinator over the given gateway. parser may be nil,
// which disables the assistant paths.
func NewAcademy(gateway store.Gateway, parser ai.Parser) *Academy {
	return &Academy{
		store:  gateway,
		parser: parser,
	}
}

// SetWebSocketHub wires the hub that gets data-changed events after
// successful mutations.
func (a *Academy) SetWebSocketHub(hub *websocket.Hub) {
	a.hub = hub
}

// AssistantEnabled reports whether the voice paths are usable.
func (a *Academy) AssistantEnabled() bool {
	return a.parser != nil
}

// Bootstrap loads the three collections from storage. Any collection that
// comes back empty keeps the built-in seed collection for that slot; the
// substitution is always whole-collection, never field-by-field. A load
// failure falls back to all seed data.
func (a *Academy) Bootstrap() {
	grades := seeders.DefaultGrades()
	teachers := seeders.DefaultTeachers()
	courses := seeders.DefaultCourses()

	snap, err := a.store.LoadData()
	if err != nil {
		logrus.WithError(err).Warn("Failed to load academy data, serving seed data")
	} else {
		if len(snap.Grades) > 0 {
			grades = snap.Grades
		}
		if len(snap.Teachers) > 0 {
			teachers = snap.Teachers
		}
		if len(snap.Courses) > 0 {
			courses = snap.Courses
		}
	}

	a.mu.Lock()
	a.grades = grades
	a.teachers = teachers
	a.courses = courses
	a.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"grades":   len(grades),
		"teachers": len(teachers),
		"courses":  len(courses),
	}).Info("Academy data ready")
}

// Snapshot returns a copy of all three collections.
func (a *Academy) Snapshot() store.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return store.Snapshot{
		Grades:   cloneGrades(a.grades),
		Teachers: cloneTeachers(a.teachers),
		Courses:  cloneCourses(a.courses),
	}
}

// Grades returns a copy of the grade collection.
func (a *Academy) Grades() []models.GradeData {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneGrades(a.grades)
}

// Teachers returns a copy of the teacher collection.
func (a *Academy) Teachers() []models.Teacher {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneTeachers(a.teachers)
}

// Courses returns a copy of the course collection.
func (a *Academy) Courses() []models.Course {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneCourses(a.courses)
}

// Grade looks up one grade by id. A miss is a normal outcome, not an error.
func (a *Academy) Grade(id string) (models.GradeData, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for i := range a.grades {
		if a.grades[i].ID == id {
			return cloneGrade(a.grades[i]), true
		}
	}
	return models.GradeData{}, false
}

// UpdateScheduleFromText runs the AI adapter over spoken text and applies the
// parsed week to the target grade. Adapter failure leaves state untouched.
func (a *Academy) UpdateScheduleFromText(ctx context.Context, gradeID, text string) ([]models.DaySchedule, error) {
	if a.parser == nil {
		return nil, ErrAssistantDisabled
	}
	if _, ok := a.Grade(gradeID); !ok {
		return nil, fmt.Errorf("grade %q: %w", gradeID, ErrNotFound)
	}

	week, err := a.parser.ParseSchedule(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	if err := a.ApplyScheduleUpdate(gradeID, week); err != nil {
		return nil, err
	}
	return week, nil
}

// ApplyScheduleUpdate replaces only the target grade's schedule, leaving every
// other grade untouched, then persists the full grade collection.
func (a *Academy) ApplyScheduleUpdate(gradeID string, week []models.DaySchedule) error {
	canonical, err := models.CanonicalWeek(week)
	if err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	a.mu.Lock()
	idx := -1
	for i := range a.grades {
		if a.grades[i].ID == gradeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		a.mu.Unlock()
		return fmt.Errorf("grade %q: %w", gradeID, ErrNotFound)
	}

	updated := cloneGrades(a.grades)
	updated[idx].Schedule = canonical
	a.grades = updated
	toSave := cloneGrades(updated)
	a.mu.Unlock()

	return a.persistGrades(toSave)
}

// AddTeachersFromText runs the AI adapter over spoken text and appends the
// extracted teachers.
func (a *Academy) AddTeachersFromText(ctx context.Context, text string) ([]models.Teacher, error) {
	if a.parser == nil {
		return nil, ErrAssistantDisabled
	}

	fragments, err := a.parser.ParseTeachers(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse teachers: %w", err)
	}
	return a.ApplyNewTeachers(fragments)
}

// ApplyNewTeachers completes each fragment (generated id, default avatar URL)
// and appends it to the teacher collection, then persists the full collection.
// Fragment fields are untrusted strings and are stored as-is.
func (a *Academy) ApplyNewTeachers(fragments []models.Teacher) ([]models.Teacher, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	a.mu.Lock()
	taken := make(map[string]bool, len(a.teachers)+len(fragments))
	for i := range a.teachers {
		taken[a.teachers[i].ID] = true
	}

	added := make([]models.Teacher, 0, len(fragments))
	for _, t := range fragments {
		for t.ID == "" || taken[t.ID] {
			t.ID = utils.NewTeacherID()
		}
		taken[t.ID] = true
		if t.ImageURL == "" {
			t.ImageURL = utils.DefaultAvatarURL(t.Name)
		}
		added = append(added, t)
	}

	updated := append(cloneTeachers(a.teachers), added...)
	a.teachers = updated
	toSave := cloneTeachers(updated)
	a.mu.Unlock()

	if err := a.persistTeachers(toSave); err != nil {
		return added, err
	}
	return added, nil
}

// UpsertGrade replaces the grade with the same id, or appends it. The
// schedule is canonicalized to the fixed 7-day shape.
func (a *Academy) UpsertGrade(grade models.GradeData) (models.GradeData, error) {
	if grade.ID == "" {
		grade.ID = utils.NewEntityID("g")
	}
	canonical, err := models.CanonicalWeek(grade.Schedule)
	if err != nil {
		return models.GradeData{}, fmt.Errorf("invalid schedule: %w", err)
	}
	grade.Schedule = canonical
	if grade.Teachers == nil {
		grade.Teachers = models.StringList{}
	}
	if grade.Courses == nil {
		grade.Courses = models.StringList{}
	}

	a.mu.Lock()
	updated := cloneGrades(a.grades)
	replaced := false
	for i := range updated {
		if updated[i].ID == grade.ID {
			updated[i] = grade
			replaced = true
			break
		}
	}
	if !replaced {
		updated = append(updated, grade)
	}
	a.grades = updated
	toSave := cloneGrades(updated)
	a.mu.Unlock()

	return grade, a.persistGrades(toSave)
}

// DeleteGrade removes a grade and re-saves the full collection.
func (a *Academy) DeleteGrade(id string) error {
	a.mu.Lock()
	updated := make([]models.GradeData, 0, len(a.grades))
	found := false
	for i := range a.grades {
		if a.grades[i].ID == id {
			found = true
			continue
		}
		updated = append(updated, cloneGrade(a.grades[i]))
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("grade %q: %w", id, ErrNotFound)
	}
	a.grades = updated
	toSave := cloneGrades(updated)
	a.mu.Unlock()

	return a.persistGrades(toSave)
}

// UpsertTeacher replaces the teacher with the same id, or appends it.
func (a *Academy) UpsertTeacher(teacher models.Teacher) (models.Teacher, error) {
	if teacher.ID == "" {
		teacher.ID = utils.NewTeacherID()
	}
	if teacher.ImageURL == "" {
		teacher.ImageURL = utils.DefaultAvatarURL(teacher.Name)
	}

	a.mu.Lock()
	updated := cloneTeachers(a.teachers)
	replaced := false
	for i := range updated {
		if updated[i].ID == teacher.ID {
			updated[i] = teacher
			replaced = true
			break
		}
	}
	if !replaced {
		updated = append(updated, teacher)
	}
	a.teachers = updated
	toSave := cloneTeachers(updated)
	a.mu.Unlock()

	return teacher, a.persistTeachers(toSave)
}

// DeleteTeacher removes a teacher and re-saves the full collection. Soft
// references to the removed id elsewhere are not cleaned up.
func (a *Academy) DeleteTeacher(id string) error {
	a.mu.Lock()
	updated := make([]models.Teacher, 0, len(a.teachers))
	found := false
	for i := range a.teachers {
		if a.teachers[i].ID == id {
			found = true
			continue
		}
		updated = append(updated, cloneTeacher(a.teachers[i]))
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("teacher %q: %w", id, ErrNotFound)
	}
	a.teachers = updated
	toSave := cloneTeachers(updated)
	a.mu.Unlock()

	return a.persistTeachers(toSave)
}

// UpsertCourse replaces the course with the same id, or appends it. Media
// entries missing an id get one generated.
func (a *Academy) UpsertCourse(course models.Course) (models.Course, error) {
	if course.ID == "" {
		course.ID = utils.NewEntityID("c")
	}
	if course.Media == nil {
		course.Media = models.MediaList{}
	}
	for i := range course.Media {
		if course.Media[i].ID == "" {
			course.Media[i].ID = utils.NewEntityID("m")
		}
	}

	a.mu.Lock()
	updated := cloneCourses(a.courses)
	replaced := false
	for i := range updated {
		if updated[i].ID == course.ID {
			updated[i] = course
			replaced = true
			break
		}
	}
	if !replaced {
		updated = append(updated, course)
	}
	a.courses = updated
	toSave := cloneCourses(updated)
	a.mu.Unlock()

	return course, a.persistCourses(toSave)
}

// DeleteCourse removes a course and re-saves the full collection.
func (a *Academy) DeleteCourse(id string) error {
	a.mu.Lock()
	updated := make([]models.Course, 0, len(a.courses))
	found := false
	for i := range a.courses {
		if a.courses[i].ID == id {
			found = true
			continue
		}
		updated = append(updated, cloneCourse(a.courses[i]))
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	a.courses = updated
	toSave := cloneCourses(updated)
	a.mu.Unlock()

	return a.persistCourses(toSave)
}

// ReplaceGrades swaps the whole grade collection, canonicalizing every
// schedule and rejecting duplicate ids.
func (a *Academy) ReplaceGrades(grades []models.GradeData) error {
	seen := make(map[string]bool, len(grades))
	for i := range grades {
		if grades[i].ID == "" {
			return fmt.Errorf("grade at index %d has no id", i)
		}
		if seen[grades[i].ID] {
			return fmt.Errorf("duplicate grade id %q", grades[i].ID)
		}
		seen[grades[i].ID] = true
		canonical, err := models.CanonicalWeek(grades[i].Schedule)
		if err != nil {
			return fmt.Errorf("grade %q: invalid schedule: %w", grades[i].ID, err)
		}
		grades[i].Schedule = canonical
	}

	a.mu.Lock()
	a.grades = cloneGrades(grades)
	toSave := cloneGrades(grades)
	a.mu.Unlock()

	return a.persistGrades(toSave)
}

// ReplaceTeachers swaps the whole teacher collection, rejecting duplicate ids.
func (a *Academy) ReplaceTeachers(teachers []models.Teacher) error {
	seen := make(map[string]bool, len(teachers))
	for i := range teachers {
		if teachers[i].ID == "" {
			return fmt.Errorf("teacher at index %d has no id", i)
		}
		if seen[teachers[i].ID] {
			return fmt.Errorf("duplicate teacher id %q", teachers[i].ID)
		}
		seen[teachers[i].ID] = true
	}

	a.mu.Lock()
	a.teachers = cloneTeachers(teachers)
	toSave := cloneTeachers(teachers)
	a.mu.Unlock()

	return a.persistTeachers(toSave)
}

// ReplaceCourses swaps the whole course collection, rejecting duplicate ids.
func (a *Academy) ReplaceCourses(courses []models.Course) error {
	seen := make(map[string]bool, len(courses))
	for i := range courses {
		if courses[i].ID == "" {
			return fmt.Errorf("course at index %d has no id", i)
		}
		if seen[courses[i].ID] {
			return fmt.Errorf("duplicate course id %q", courses[i].ID)
		}
		seen[courses[i].ID] = true
	}

	a.mu.Lock()
	a.courses = cloneCourses(courses)
	toSave := cloneCourses(courses)
	a.mu.Unlock()

	return a.persistCourses(toSave)
}

func (a *Academy) persistGrades(grades []models.GradeData) error {
	if err := a.store.SaveGrades(grades); err != nil {
		logrus.WithError(err).Error("Failed to persist grades; in-memory state has diverged from storage")
		return fmt.Errorf("save grades: %w", err)
	}
	a.notify("grades")
	return nil
}

func (a *Academy) persistTeachers(teachers []models.Teacher) error {
	if err := a.store.SaveTeachers(teachers); err != nil {
		logrus.WithError(err).Error("Failed to persist teachers; in-memory state has diverged from storage")
		return fmt.Errorf("save teachers: %w", err)
	}
	a.notify("teachers")
	return nil
}

func (a *Academy) persistCourses(courses []models.Course) error {
	if err := a.store.SaveCourses(courses); err != nil {
		logrus.WithError(err).Error("Failed to persist courses; in-memory state has diverged from storage")
		return fmt.Errorf("save courses: %w", err)
	}
	a.notify("courses")
	return nil
}

func (a *Academy) notify(resource string) {
	if a.hub == nil {
		return
	}
	a.hub.Broadcast(websocket.Message{
		Type: "collection_updated",
		Data: map[string]string{"resource": resource},
	})
}

// Clone helpers keep callers from aliasing the snapshot's nested slices.

func cloneGrade(g models.GradeData) models.GradeData {
	out := g
	out.Schedule = make(models.ScheduleWeek, len(g.Schedule))
	for i, day := range g.Schedule {
		slots := make([]models.ScheduleSlot, len(day.Slots))
		copy(slots, day.Slots)
		out.Schedule[i] = models.DaySchedule{Day: day.Day, Slots: slots}
	}
	out.Teachers = append(models.StringList{}, g.Teachers...)
	out.Courses = append(models.StringList{}, g.Courses...)
	return out
}

func cloneGrades(grades []models.GradeData) []models.GradeData {
	out := make([]models.GradeData, len(grades))
	for i := range grades {
		out[i] = cloneGrade(grades[i])
	}
	return out
}

func cloneTeacher(t models.Teacher) models.Teacher {
	out := t
	if t.Grades != nil {
		out.Grades = append(models.StringList{}, t.Grades...)
	}
	if t.Stages != nil {
		out.Stages = append(models.StageList{}, t.Stages...)
	}
	if t.HourlyRates != nil {
		out.HourlyRates = make(models.RateMap, len(t.HourlyRates))
		for k, v := range t.HourlyRates {
			out.HourlyRates[k] = v
		}
	}
	return out
}

func cloneTeachers(teachers []models.Teacher) []models.Teacher {
	out := make([]models.Teacher, len(teachers))
	for i := range teachers {
		out[i] = cloneTeacher(teachers[i])
	}
	return out
}

func cloneCourse(c models.Course) models.Course {
	out := c
	out.Media = append(models.MediaList{}, c.Media...)
	return out
}

func cloneCourses(courses []models.Course) []models.Course {
	out := make([]models.Course, len(courses))
	for i := range courses {
		out[i] = cloneCourse(courses[i])
	}
	return out
}
