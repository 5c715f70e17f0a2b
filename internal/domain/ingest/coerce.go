package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultSentinels are cell texts meaning "no data" in the source sheets.
var DefaultSentinels = []string{"", "0", "-", "s/d", "sin dato", "sin datos", "na", "n/a", "nan"}

var europeanGrouped = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$`)

var plainDecimal = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)$`)

// Day-first layouts come before ISO variants so 03/04/2022 reads as 3 April.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"15:04:05.000",
}

// Coercion is the outcome of converting one cell. Reason is set only when
// a non-empty cell could not be converted.
type Coercion struct {
	Value  any
	OK     bool
	Reason string
}

type Coercer struct {
	sentinels map[string]struct{}
}

func NewCoercer(sentinels []string) Coercer {
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return Coercer{sentinels: set}
}

var defaultCoercer = NewCoercer(DefaultSentinels)

// Coerce converts raw into dataType using the default sentinel set. ok is
// false when the field must be left out of the record.
func Coerce(raw any, dataType DataType) (any, bool) {
	c := defaultCoercer.Coerce(raw, dataType)
	return c.Value, c.OK
}

// IsSentinel reports whether text means "no data".
func (c Coercer) IsSentinel(text string) bool {
	_, ok := c.sentinels[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

func (c Coercer) Coerce(raw any, dataType DataType) Coercion {
	if raw == nil {
		return Coercion{}
	}
	switch dataType {
	case DataTypeNumber:
		return coerceNumber(raw)
	case DataTypeDate:
		return c.coerceDate(raw)
	case DataTypeTime:
		return c.coerceTime(raw)
	default:
		return c.coerceString(raw)
	}
}

func (c Coercer) coerceString(raw any) Coercion {
	text := strings.TrimSpace(CellText(raw))
	if c.IsSentinel(text) {
		return Coercion{}
	}
	return Coercion{Value: text, OK: true}
}

func coerceNumber(raw any) Coercion {
	if v, ok := numericValue(raw); ok {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Coercion{Reason: "not a finite number"}
		}
		return Coercion{Value: v, OK: true}
	}

	text := strings.TrimSpace(CellText(raw))
	text = strings.TrimSpace(strings.ReplaceAll(text, "%", ""))
	if text == "" {
		return Coercion{}
	}
	if europeanGrouped.MatchString(text) {
		text = strings.ReplaceAll(text, ".", "")
	}
	text = strings.ReplaceAll(text, ",", ".")
	if !plainDecimal.MatchString(text) {
		return Coercion{Reason: fmt.Sprintf("%q is not a number", CellText(raw))}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Coercion{Reason: fmt.Sprintf("%q is not a number", CellText(raw))}
	}
	return Coercion{Value: v, OK: true}
}

// coerceDate reads serials only from numeric cells. Text always goes
// through the calendar layouts, so "2022" is not day 2022 of 1900.
func (c Coercer) coerceDate(raw any) Coercion {
	if c.IsSentinel(CellText(raw)) {
		return Coercion{}
	}
	if serial, ok := serialValue(raw); ok {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return Coercion{Reason: fmt.Sprintf("serial %v is not a date", serial)}
		}
		return Coercion{Value: localMidnight(t), OK: true}
	}

	text := strings.TrimSpace(CellText(raw))
	if text == "" {
		return Coercion{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return Coercion{Value: localMidnight(t), OK: true}
		}
	}
	return Coercion{Reason: fmt.Sprintf("%q is not a date", text)}
}

// coerceTime keeps a numeric zero as midnight; sentinel text is absent.
func (c Coercer) coerceTime(raw any) Coercion {
	if text, ok := raw.(string); ok && c.IsSentinel(text) {
		return Coercion{}
	}
	if serial, ok := serialValue(raw); ok {
		frac := serial - math.Floor(serial)
		secs := int(math.Round(frac*86400)) % 86400
		return Coercion{Value: formatClock(secs/3600, secs/60%60, secs%60), OK: true}
	}

	text := strings.TrimSpace(CellText(raw))
	if text == "" {
		return Coercion{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(text)); err == nil {
			return Coercion{Value: formatClock(t.Hour(), t.Minute(), t.Second()), OK: true}
		}
	}
	return Coercion{Reason: fmt.Sprintf("%q is not a time of day", text)}
}

func serialValue(raw any) (float64, bool) {
	v, ok := numericValue(raw)
	if !ok {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	}
	return 0, false
}

// CellText renders a type-loose cell as text.
func CellText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	}
	return fmt.Sprint(raw)
}

func localMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func formatClock(h, m, s int) string {
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
