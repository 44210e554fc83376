// Package labelreader reads printed expiry dates from product label photos.
package labelreader

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/pkg/gemini"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const prompt = "Read the printed expiry, use-by or best-before date on this product label. " +
	"Respond ONLY with a JSON object with exactly these fields: " +
	"'expiry_date' (string in YYYY-MM-DD format, or null when no date is visible), " +
	"'confidence' (number between 0 and 1) and 'detected_text' (the text you read around the date). " +
	"Do not include any explanations or markdown."

var (
	ymdPattern   = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	dmyPattern   = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{2}|\d{4})\b`)
	monthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*(\d{2}|\d{4})\b`)

	months = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
		"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
		"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
	}
)

type (
	GeminiLabelReader struct {
		client *gemini.Client
	}

	detectionPayload struct {
		ExpiryDate   *string `json:"expiry_date"`
		Confidence   float64 `json:"confidence"`
		DetectedText string  `json:"detected_text"`
	}
)

func NewGeminiLabelReader(client *gemini.Client) *GeminiLabelReader {
	return &GeminiLabelReader{client: client}
}

func (r *GeminiLabelReader) Detect(ctx context.Context, image []byte, mimeType string) (domain.LabelDetection, error) {
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	text, err := r.client.GenerateContent(ctx, 0.1, gemini.TextPart(prompt), gemini.ImagePart(mimeType, image))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.LabelDetection{}, err
		}
		return domain.LabelDetection{}, fmt.Errorf("%w: %v", domain.ErrLabelReaderUnavailable, err)
	}
	return ParseDetection(text)
}

// ParseDetection decodes a model answer. When the model returns no usable
// date but its detected text contains one, the date is taken from the text.
func ParseDetection(text string) (domain.LabelDetection, error) {
	var payload detectionPayload
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(text)), &payload); err != nil {
		return domain.LabelDetection{}, fmt.Errorf("%w: unreadable answer: %v", domain.ErrLabelReaderUnavailable, err)
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	detection := domain.LabelDetection{
		Confidence:   confidence,
		DetectedText: payload.DetectedText,
	}
	if payload.ExpiryDate != nil {
		if expiry, err := domain.ParseDate(strings.TrimSpace(*payload.ExpiryDate)); err == nil {
			detection.ExpiryDate = &expiry
		}
	}
	if detection.ExpiryDate == nil {
		detection.ExpiryDate = ParseExpiryDate(payload.DetectedText)
	}
	return detection, nil
}

// ParseExpiryDate finds dates printed in label text and returns the latest
// one, since labels often also carry a production date.
func ParseExpiryDate(text string) *time.Time {
	var latest *time.Time
	consider := func(year, month, day int) {
		if year < 100 {
			year += 2000
		}
		if month < 1 || month > 12 {
			return
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month {
			return
		}
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}

	for _, m := range ymdPattern.FindAllStringSubmatch(text, -1) {
		consider(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	for _, m := range dmyPattern.FindAllStringSubmatch(text, -1) {
		consider(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	for _, m := range monthPattern.FindAllStringSubmatch(text, -1) {
		consider(atoi(m[3]), int(months[strings.ToLower(m[2][:3])]), atoi(m[1]))
	}
	return latest
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
