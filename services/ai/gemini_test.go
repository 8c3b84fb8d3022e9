package ai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"educators_academy_go/models"
)

func fullWeekJSON(t *testing.T, slotsFor map[string][]models.ScheduleSlot) []byte {
	t.Helper()
	week := make([]models.DaySchedule, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		slots := slotsFor[day]
		if slots == nil {
			slots = []models.ScheduleSlot{}
		}
		week = append(week, models.DaySchedule{Day: day, Slots: slots})
	}
	raw, err := json.Marshal(week)
	if err != nil {
		t.Fatalf("marshal week: %v", err)
	}
	return raw
}

func TestDecodeScheduleRoundTrip(t *testing.T) {
	raw := fullWeekJSON(t, map[string][]models.ScheduleSlot{
		"الأحد": {{ID: "s1", Subject: "رياضيات", Time: "4:00 - 6:00 مساءً", Color: "#ff0000", TeacherID: "t1"}},
	})

	week, err := DecodeSchedule(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	slot := week[1].Slots[0]
	if slot.ID != "s1" || slot.Color != "#ff0000" || slot.Time != "4:00 - 6:00 مساءً" {
		t.Fatalf("explicit slot fields were modified: %+v", slot)
	}
}

func TestDecodeScheduleFillsSlotDefaults(t *testing.T) {
	raw := fullWeekJSON(t, map[string][]models.ScheduleSlot{
		"السبت": {{Subject: "علوم", Time: "10:00"}},
	})

	week, err := DecodeSchedule(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slot := week[0].Slots[0]
	if !strings.HasPrefix(slot.ID, "s-") {
		t.Fatalf("missing slot id should be generated, got %q", slot.ID)
	}
	if slot.Color != defaultSlotColor {
		t.Fatalf("missing color should default to %s, got %q", defaultSlotColor, slot.Color)
	}
}

func TestDecodeScheduleRejectsWrongDayCount(t *testing.T) {
	var week []models.DaySchedule
	for _, day := range models.Weekdays[:6] {
		week = append(week, models.DaySchedule{Day: day, Slots: []models.ScheduleSlot{}})
	}
	raw, _ := json.Marshal(week)

	if _, err := DecodeSchedule(raw); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for 6-day week, got %v", err)
	}
}

func TestDecodeScheduleRejectsUnknownDay(t *testing.T) {
	raw := []byte(`[
		{"day":"Monday","slots":[]},
		{"day":"الأحد","slots":[]},
		{"day":"الاثنين","slots":[]},
		{"day":"الثلاثاء","slots":[]},
		{"day":"الأربعاء","slots":[]},
		{"day":"الخميس","slots":[]},
		{"day":"الجمعة","slots":[]}
	]`)

	if _, err := DecodeSchedule(raw); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for unknown day, got %v", err)
	}
}

func TestDecodeScheduleRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeSchedule([]byte(`{"not":"an array"}`)); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestDecodeTeachers(t *testing.T) {
	raw := []byte(`[{"name":"أحمد","subject":"الرياضيات"}]`)

	teachers, err := DecodeTeachers(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teachers) != 1 {
		t.Fatalf("expected 1 teacher, got %d", len(teachers))
	}
	if teachers[0].Name != "أحمد" || teachers[0].Subject != "الرياضيات" {
		t.Fatalf("unexpected fragment %+v", teachers[0])
	}
	if teachers[0].ID != "" || teachers[0].ImageURL != "" {
		t.Fatalf("decode must leave generated fields to the coordinator")
	}
}

func TestDecodeTeachersDropsInvalidStages(t *testing.T) {
	raw := []byte(`[{"name":"سارة","subject":"فرنسي","stages":["languages","kindergarten","primary"]}]`)

	teachers, err := DecodeTeachers(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teachers[0].Stages) != 2 {
		t.Fatalf("expected invalid stage dropped, got %v", teachers[0].Stages)
	}
	for _, s := range teachers[0].Stages {
		if !models.IsValidStage(s) {
			t.Fatalf("invalid stage %q survived", s)
		}
	}
}

func TestDecodeTeachersRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeTeachers([]byte(`not json`)); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare array",
			input: `[{"a":1}]`,
			want:  `[{"a":1}]`,
		},
		{
			name:  "json fence",
			input: "Here you go:\n```json\n[1,2,3]\n```\nDone.",
			want:  "[1,2,3]",
		},
		{
			name:  "plain fence",
			input: "```\n[true]\n```",
			want:  "[true]",
		},
		{
			name:  "surrounding chatter",
			input: `The result is [ "x" ] as requested`,
			want:  `[ "x" ]`,
		},
		{
			name:  "no array",
			input: "sorry, I cannot help with that",
			want:  "",
		},
		{
			name:  "invalid json",
			input: `[{"unclosed":]`,
			want:  "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := extractJSONArray(tc.input)
			if strings.TrimSpace(got) != strings.TrimSpace(tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
