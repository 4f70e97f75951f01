package bot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"study-buddy/internal/model"
)

// splitArgs splits "a; b; c" command arguments, trimming each part.
func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseID(raw string) (uint, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if raw == "" {
		return 0, &model.ValidationError{Field: "id", Reason: "is required"}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &model.ValidationError{Field: "id", Reason: "must be a positive number"}
	}
	return uint(id), nil
}

func parseDays(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 || days > 3650 {
		return 0, &model.ValidationError{Field: "days", Reason: "must be a number between 1 and 3650"}
	}
	return days, nil
}

// parseScoreArgs reads "subject; test; score[; max[; YYYY-MM-DD]]".
func parseScoreArgs(raw string, today model.Date) (model.TestScoreInput, error) {
	parts := splitArgs(raw)
	if len(parts) < 3 {
		return model.TestScoreInput{}, &model.ValidationError{Field: "score", Reason: "use subject; test; score[; max[; date]]"}
	}
	input := model.TestScoreInput{Subject: parts[0], TestName: parts[1], Date: today}

	score, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return input, &model.ValidationError{Field: "score", Reason: "must be a number"}
	}
	input.Score = score

	if len(parts) > 3 && parts[3] != "" {
		maxScore, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return input, &model.ValidationError{Field: "max_score", Reason: "must be a number"}
		}
		input.MaxScore = maxScore
	}
	if len(parts) > 4 && parts[4] != "" {
		date, err := model.ParseDate(parts[4])
		if err != nil {
			return input, err
		}
		input.Date = date
	}
	return input, nil
}

// parseStudyArgs reads "subject; minutes[; topic]".
func parseStudyArgs(raw string, today model.Date) (model.StudySessionInput, error) {
	parts := splitArgs(raw)
	if len(parts) < 2 {
		return model.StudySessionInput{}, &model.ValidationError{Field: "session", Reason: "use subject; minutes[; topic]"}
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.StudySessionInput{}, &model.ValidationError{Field: "duration_minutes", Reason: "must be a whole number"}
	}
	input := model.StudySessionInput{Subject: parts[0], DurationMinutes: minutes, Date: today}
	if len(parts) > 2 {
		input.Topic = parts[2]
	}
	return input, nil
}

// parsePlanArgs reads "YYYY-MM-DD; slot; title".
func parsePlanArgs(raw string) (model.PlanEntryInput, error) {
	parts := splitArgs(raw)
	if len(parts) < 3 {
		return model.PlanEntryInput{}, &model.ValidationError{Field: "plan", Reason: "use YYYY-MM-DD; time slot; title"}
	}
	date, err := model.ParseDate(parts[0])
	if err != nil {
		return model.PlanEntryInput{}, err
	}
	return model.PlanEntryInput{
		Date:      date,
		TimeSlot:  parts[1],
		TaskTitle: strings.Join(parts[2:], "; "),
	}, nil
}

// parseProgressArgs reads "<id> <percent>".
func parseProgressArgs(raw string) (uint, int, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return 0, 0, &model.ValidationError{Field: "progress", Reason: "use /progress <id> <0-100>"}
	}
	id, err := parseID(fields[0])
	if err != nil {
		return 0, 0, err
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(fields[1], "%"))
	if err != nil {
		return 0, 0, &model.ValidationError{Field: "progress", Reason: "must be a whole number"}
	}
	return id, pct, nil
}

// parseSetArgs reads "<key> <value>". The value is decoded as JSON when it
// parses, so true, 45 and {"a":1} keep their types; anything else is a string.
func parseSetArgs(raw string) (string, any, error) {
	key, rest, ok := strings.Cut(strings.TrimSpace(raw), " ")
	rest = strings.TrimSpace(rest)
	if !ok || key == "" || rest == "" {
		return "", nil, &model.ValidationError{Field: "setting", Reason: "use /set <key> <value>"}
	}
	var value any
	if err := json.Unmarshal([]byte(rest), &value); err != nil {
		value = rest
	}
	return key, value, nil
}

// userMessage turns an error into text for the chat. Storage failures get a
// generic message; the caller logs the detail.
func userMessage(err error) string {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return fmt.Sprintf("⚠️ %s %s.", escape(ve.Field), escape(ve.Reason))
	case errors.Is(err, model.ErrNotFound):
		return "🔎 Not found. It may have been removed already, check /tasks."
	case errors.Is(err, model.ErrConfigWrite):
		return "💾 Setting applied but could not be saved to disk."
	default:
		return "💥 Could not save or load data."
	}
}
