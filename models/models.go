package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Stage is one of the four fixed educational levels offered by the academy.
type Stage string

const (
	StagePrimary     Stage = "primary"
	StagePreparatory Stage = "preparatory"
	StageSecondary   Stage = "secondary"
	StageLanguages   Stage = "languages"
)

// Stages is the closed set of valid stage values.
var Stages = []Stage{StagePrimary, StagePreparatory, StageSecondary, StageLanguages}

// IsValidStage reports whether s is a member of the Stage enum.
func IsValidStage(s Stage) bool {
	for _, v := range Stages {
		if s == v {
			return true
		}
	}
	return false
}

// StageInfo carries the display metadata the site renders for a stage.
type StageInfo struct {
	ID   Stage  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// StageCatalog returns the fixed stage list in display order.
func StageCatalog() []StageInfo {
	return []StageInfo{
		{ID: StagePrimary, Name: "المرحلة الابتدائية", Icon: "🧒"},
		{ID: StagePreparatory, Name: "المرحلة الإعدادية", Icon: "👦"},
		{ID: StageSecondary, Name: "المرحلة الثانوية", Icon: "🎓"},
		{ID: StageLanguages, Name: "قسم اللغات", Icon: "🌍"},
	}
}

// Weekdays is the fixed Saturday-first weekday order every schedule follows.
var Weekdays = [7]string{"السبت", "الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة"}

// ScheduleSlot is a single timetable entry. Time is free text as spoken by the
// admin ("4:00 - 6:00 مساءً"), TeacherID is a soft reference.
type ScheduleSlot struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Time      string `json:"time"`
	Color     string `json:"color"`
	Icon      string `json:"icon,omitempty"`
	TeacherID string `json:"teacherId,omitempty"`
}

// DaySchedule is one weekday's slot list.
type DaySchedule struct {
	Day   string         `json:"day"`
	Slots []ScheduleSlot `json:"slots"`
}

// EmptyWeek returns a 7-day schedule with no slots, in fixed weekday order.
func EmptyWeek() []DaySchedule {
	week := make([]DaySchedule, len(Weekdays))
	for i, day := range Weekdays {
		week[i] = DaySchedule{Day: day, Slots: []ScheduleSlot{}}
	}
	return week
}

// CanonicalWeek reorders week into the fixed Saturday-first weekday order.
// Days absent from the input come back with empty slot lists; an unknown or
// duplicated day name is an error.
func CanonicalWeek(week []DaySchedule) ([]DaySchedule, error) {
	byDay := make(map[string][]ScheduleSlot, len(week))
	for _, d := range week {
		if _, dup := byDay[d.Day]; dup {
			return nil, fmt.Errorf("duplicated day %q", d.Day)
		}
		known := false
		for _, name := range Weekdays {
			if d.Day == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown day %q", d.Day)
		}
		byDay[d.Day] = d.Slots
	}

	out := make([]DaySchedule, len(Weekdays))
	for i, day := range Weekdays {
		slots := byDay[day]
		if slots == nil {
			slots = []ScheduleSlot{}
		}
		out[i] = DaySchedule{Day: day, Slots: slots}
	}
	return out, nil
}

// Teacher profile. Only id, name, subject and imageUrl are required; everything
// else is informational. Grades/Stages do not have to match GradeData records.
type Teacher struct {
	ID            string     `json:"id" gorm:"primaryKey;size:64"`
	Name          string     `json:"name" gorm:"size:255;not null"`
	Subject       string     `json:"subject" gorm:"size:255;not null"`
	ImageURL      string     `json:"imageUrl" gorm:"size:500;not null"`
	WhatsApp      string     `json:"whatsapp,omitempty" gorm:"size:30"`
	Availability  string     `json:"availability,omitempty" gorm:"size:255"`
	TeachingHours string     `json:"teachingHours,omitempty" gorm:"size:255"`
	Bio           string     `json:"bio,omitempty" gorm:"type:text"`
	Grades        StringList `json:"grades,omitempty" gorm:"type:json"`
	Stages        StageList  `json:"stages,omitempty" gorm:"type:json"`
	HourlyRates   RateMap    `json:"hourlyRates,omitempty" gorm:"type:json"`
}

// CourseMedia is owned exclusively by one Course.
type CourseMedia struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"` // video, pdf, image
}

// Course. GradeID is the only real foreign key in the model, and even that is
// not enforced at write time. TeacherID is a soft reference.
type Course struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Stage        Stage     `json:"stage" gorm:"size:20;not null"`
	Grade        string    `json:"grade" gorm:"size:255"`
	GradeID      string    `json:"gradeId" gorm:"size:64;index"`
	Price        string    `json:"price,omitempty" gorm:"size:50"`
	TeacherID    string    `json:"teacherId,omitempty" gorm:"size:64"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" gorm:"size:500"`
	Media        MediaList `json:"media" gorm:"type:json"`
}

// GradeData is a year-group within a stage: the unit schedules and course
// enrollment are keyed to. Schedule always holds exactly 7 days in fixed
// order; Teachers and Courses are soft id references.
type GradeData struct {
	ID       string       `json:"id" gorm:"primaryKey;size:64"`
	Name     string       `json:"name" gorm:"size:255;not null"`
	Stage    Stage        `json:"stage" gorm:"size:20;not null;index"`
	Schedule ScheduleWeek `json:"schedule" gorm:"type:json"`
	Teachers StringList   `json:"teachers" gorm:"type:json"`
	Courses  StringList   `json:"courses" gorm:"type:json"`
}

// ActivityLog tracks admin mutations.
type ActivityLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	Action     string    `json:"action" gorm:"size:100;not null"`
	Resource   string    `json:"resource" gorm:"size:100;not null"`
	ResourceID string    `json:"resource_id" gorm:"size:64"`
	Details    JSON      `json:"details" gorm:"type:json"`
	IPAddress  string    `json:"ip_address" gorm:"size:45"`
	UserAgent  string    `json:"user_agent" gorm:"size:500"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Typed JSON columns. MySQL stores the nested values as json; the Go side keeps
// them fully typed.

type ScheduleWeek []DaySchedule

func (w ScheduleWeek) Value() (driver.Value, error)  { return jsonValue(w) }
func (w *ScheduleWeek) Scan(value interface{}) error { return jsonScan(value, w) }

type StringList []string

func (l StringList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *StringList) Scan(value interface{}) error { return jsonScan(value, l) }

type StageList []Stage

func (l StageList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *StageList) Scan(value interface{}) error { return jsonScan(value, l) }

type RateMap map[string]float64

func (m RateMap) Value() (driver.Value, error)  { return jsonValue(m) }
func (m *RateMap) Scan(value interface{}) error { return jsonScan(value, m) }

type MediaList []CourseMedia

func (l MediaList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *MediaList) Scan(value interface{}) error { return jsonScan(value, l) }

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
