package ai

import (
	"context"
	"errors"

	"educators_academy_go/models"
)

var (
	// ErrNoCredential means no language-model API key is configured. The
	// assistant degrades to disabled; nothing else in the system is affected.
	ErrNoCredential = errors.New("ai: no API key configured")

	// ErrSchema means the model's response could not be accepted into the
	// domain model. The attempted mutation must not be applied, not even
	// partially.
	ErrSchema = errors.New("ai: response violates the expected schema")
)

// Parser turns free-form transcribed speech into structured records.
//
// ParseSchedule returns a full week: exactly 7 days in fixed Saturday-first
// order, every slot carrying an id and a color. ParseTeachers returns teacher
// fragments; the caller completes missing mandatory fields. All fragment
// fields are untrusted strings.
type Parser interface {
	ParseSchedule(ctx context.Context, text string) ([]models.DaySchedule, error)
	ParseTeachers(ctx context.Context, text string) ([]models.Teacher, error)
}
