package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"educators_academy_go/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// defaultSlotColor is used when the model omits a slot color.
const defaultSlotColor = "#10b981"

// GeminiParser implements Parser against the Gemini API. Both parse paths run
// in structured-output mode: the response schema is enforced by the service so
// free text never leaks into a structural field.
type GeminiParser struct {
	client        *genai.Client
	scheduleModel *genai.GenerativeModel
	teachersModel *genai.GenerativeModel
}

// NewGeminiParser creates a parser bound to the given API key and model name.
func NewGeminiParser(ctx context.Context, apiKey, modelName string) (*GeminiParser, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	scheduleModel := client.GenerativeModel(modelName)
	scheduleModel.GenerationConfig.ResponseMIMEType = "application/json"
	scheduleModel.GenerationConfig.ResponseSchema = scheduleSchema()

	teachersModel := client.GenerativeModel(modelName)
	teachersModel.GenerationConfig.ResponseMIMEType = "application/json"
	teachersModel.GenerationConfig.ResponseSchema = teachersSchema()

	return &GeminiParser{
		client:        client,
		scheduleModel: scheduleModel,
		teachersModel: teachersModel,
	}, nil
}

// Close releases the underlying API client.
func (p *GeminiParser) Close() error {
	return p.client.Close()
}

// ParseSchedule turns a spoken timetable description into a canonical week.
func (p *GeminiParser) ParseSchedule(ctx context.Context, text string) ([]models.DaySchedule, error) {
	raw, err := p.generate(ctx, p.scheduleModel, schedulePrompt(text))
	if err != nil {
		return nil, err
	}
	week, err := DecodeSchedule(raw)
	if err != nil {
		logrus.WithError(err).WithField("response", truncate(string(raw), 500)).Warn("Rejected AI schedule response")
		return nil, err
	}
	return week, nil
}

// ParseTeachers turns prose describing one or more teachers into fragments.
func (p *GeminiParser) ParseTeachers(ctx context.Context, text string) ([]models.Teacher, error) {
	raw, err := p.generate(ctx, p.teachersModel, teachersPrompt(text))
	if err != nil {
		return nil, err
	}
	teachers, err := DecodeTeachers(raw)
	if err != nil {
		logrus.WithError(err).WithField("response", truncate(string(raw), 500)).Warn("Rejected AI teachers response")
		return nil, err
	}
	return teachers, nil
}

func (p *GeminiParser) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) ([]byte, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	var full strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				full.WriteString(string(txt))
			}
		}
	}

	raw := extractJSONArray(full.String())
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON array in response", ErrSchema)
	}
	return []byte(raw), nil
}

// DecodeSchedule validates a raw model response into a canonical week. The
// only coercions performed are the per-slot defaults (missing id, missing
// color); every other shape violation is rejected.
func DecodeSchedule(raw []byte) ([]models.DaySchedule, error) {
	var week []models.DaySchedule
	if err := json.Unmarshal(raw, &week); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if len(week) != len(models.Weekdays) {
		return nil, fmt.Errorf("%w: got %d days, want %d", ErrSchema, len(week), len(models.Weekdays))
	}

	canonical, err := models.CanonicalWeek(week)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	for di := range canonical {
		for si := range canonical[di].Slots {
			slot := &canonical[di].Slots[si]
			if slot.ID == "" {
				slot.ID = "s-" + uuid.New().String()[:8]
			}
			if slot.Color == "" {
				slot.Color = defaultSlotColor
			}
		}
	}
	return canonical, nil
}

// DecodeTeachers validates a raw model response into teacher fragments. The
// fields stay untrusted strings; only stages outside the fixed enum are
// dropped.
func DecodeTeachers(raw []byte) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := json.Unmarshal(raw, &teachers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	for i := range teachers {
		if len(teachers[i].Stages) == 0 {
			continue
		}
		kept := teachers[i].Stages[:0]
		for _, s := range teachers[i].Stages {
			if models.IsValidStage(s) {
				kept = append(kept, s)
			}
		}
		teachers[i].Stages = kept
	}
	return teachers, nil
}

func scheduleSchema() *genai.Schema {
	dayNames := make([]string, len(models.Weekdays))
	copy(dayNames, models.Weekdays[:])

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"day": {Type: genai.TypeString, Enum: dayNames},
				"slots": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"id":        {Type: genai.TypeString},
							"subject":   {Type: genai.TypeString},
							"time":      {Type: genai.TypeString},
							"color":     {Type: genai.TypeString},
							"icon":      {Type: genai.TypeString},
							"teacherId": {Type: genai.TypeString},
						},
						Required: []string{"subject", "time"},
					},
				},
			},
			Required: []string{"day", "slots"},
		},
	}
}

func teachersSchema() *genai.Schema {
	stageNames := make([]string, len(models.Stages))
	for i, s := range models.Stages {
		stageNames[i] = string(s)
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":          {Type: genai.TypeString},
				"subject":       {Type: genai.TypeString},
				"whatsapp":      {Type: genai.TypeString},
				"availability":  {Type: genai.TypeString},
				"teachingHours": {Type: genai.TypeString},
				"bio":           {Type: genai.TypeString},
				"grades":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"stages":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString, Enum: stageNames}},
			},
			Required: []string{"name", "subject"},
		},
	}
}

func schedulePrompt(text string) string {
	return fmt.Sprintf(`You convert a spoken description of a weekly school timetable into JSON.

Rules:
1. Output a JSON array with EXACTLY 7 entries, one per day, in this order: %s.
2. Every day mentioned in the description gets its slots; days that are not mentioned get an empty "slots" array.
3. "time" is kept exactly as spoken (e.g. "4:00 - 6:00 مساءً").
4. "subject" values stay in the language they were spoken in.
5. Leave "id", "color", "icon" and "teacherId" out unless the description names them.
6. Output ONLY the JSON array, nothing else.

Description:
%s`, strings.Join(models.Weekdays[:], "، "), text)
}

func teachersPrompt(text string) string {
	return fmt.Sprintf(`You extract teacher records from a spoken description.

Rules:
1. Output a JSON array with one object per teacher mentioned.
2. Fill only the fields the description actually states; never invent values.
3. Names and subjects stay in the language they were spoken in.
4. "stages" values must be: primary, preparatory, secondary or languages.
5. Output ONLY the JSON array, nothing else.

Description:
%s`, text)
}

// extractJSONArray cuts the first complete JSON array out of a model response,
// tolerating markdown fences and surrounding chatter.
func extractJSONArray(raw string) string {
	if blockStart := strings.Index(raw, "```json"); blockStart != -1 {
		raw = raw[blockStart+7:]
		if blockEnd := strings.Index(raw, "```"); blockEnd != -1 {
			raw = raw[:blockEnd]
		}
	} else if blockStart := strings.Index(raw, "```"); blockStart != -1 {
		raw = raw[blockStart+3:]
		if blockEnd := strings.Index(raw, "```"); blockEnd != -1 {
			raw = raw[:blockEnd]
		}
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}

	candidate := raw[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return ""
	}
	return candidate
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
