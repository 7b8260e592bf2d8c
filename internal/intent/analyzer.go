package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/recruitkit/talent-scout/internal/ai"
	"github.com/recruitkit/talent-scout/internal/logger"
)

const analysisPrompt = `Analyze the job requirements and extract key information. Return a JSON object with the following structure:
{
  "job_type": "video_editor|tiktok_creator|operations_manager|other",
  "experience_level": "entry|mid|senior|executive",
  "work_type": "full_time|part_time|contract|freelance",
  "location_preference": "remote|onsite|hybrid|any",
  "urgency": "low|medium|high",
  "key_skills": ["skill1", "skill2", "skill3"],
  "company_culture": "startup|corporate|creative|traditional",
  "confidence": 0.0-1.0
}
Answer with the JSON object only.

Analyze this job requirement: %s`

// Analyzer classifies job requirements through a text-completion provider.
type Analyzer struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(generator ai.Generator, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{generator: generator, logger: log, maxLogLen: 200}
}

// Analyze classifies the requirement text. It never fails: on provider or
// parse failure the default Intent is returned.
func (a *Analyzer) Analyze(ctx context.Context, text string) Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return Default()
	}

	raw, err := a.generator.GenerateContent(ctx, fmt.Sprintf(analysisPrompt, text))
	if err != nil {
		a.logger.Debug("intent analysis failed, using defaults", zap.Error(err))
		return Default()
	}

	parsed, err := parseIntent(raw)
	if err != nil {
		a.logger.Debug("intent response unparseable, using defaults",
			zap.Error(err),
			zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
		)
		return Default()
	}

	return parsed
}

// parseIntent extracts the first JSON object from the model response,
// tolerating code fences and conversational text around it. Missing or
// malformed fields fall back to their defaults.
func parseIntent(raw string) (Intent, error) {
	block := extractJSON(raw)
	if block == "" {
		return Intent{}, fmt.Errorf("no JSON object in response")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(block), &data); err != nil {
		return Intent{}, fmt.Errorf("parse intent response: %w", err)
	}

	result := Default()
	if v := coerceString(data["job_type"]); v != "" {
		result.JobType = v
	}
	if v := coerceString(data["experience_level"]); v != "" {
		result.ExperienceLevel = v
	}
	if v := coerceString(data["work_type"]); v != "" {
		result.WorkType = v
	}
	if v := coerceString(data["location_preference"]); v != "" {
		result.LocationPreference = v
	}
	if v := coerceString(data["urgency"]); v != "" {
		result.Urgency = v
	}
	if v := coerceString(data["company_culture"]); v != "" {
		result.CompanyCulture = v
	}
	if skills := coerceStrings(data["key_skills"]); skills != nil {
		result.KeySkills = skills
	}
	if confidence, ok := coerceFloat(data["confidence"]); ok {
		result.Confidence = clamp01(confidence)
	}

	return result, nil
}

// extractJSON locates the first well-formed JSON object within raw.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return ""
	}

	return strings.TrimSpace(raw[start : end+1])
}

func coerceString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
	}
	return result
}

func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(val), "%g", &f); err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
