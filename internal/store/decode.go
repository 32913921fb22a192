package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dori/timelog/internal/model"
)

var (
	// ErrUnsupportedSchema is returned for records written by a newer build
	ErrUnsupportedSchema = errors.New("unsupported entry schema")
	// ErrMalformedRecord is returned for records that cannot be mapped to an entry
	ErrMalformedRecord = errors.New("malformed entry record")
)

// rawDuration accepts both the full duration object and the minutes-only form
// of the earliest documents.
type rawDuration struct {
	TotalSeconds *float64 `json:"totalSeconds"`
	TotalMinutes *float64 `json:"totalMinutes"`
}

func (d *rawDuration) seconds() int {
	switch {
	case d == nil:
		return 0
	case d.TotalSeconds != nil:
		return int(*d.TotalSeconds)
	case d.TotalMinutes != nil:
		return int(*d.TotalMinutes) * 60
	default:
		return 0
	}
}

// rawRecord is the union of every entry shape the document has had
type rawRecord struct {
	Schema               *int                `json:"schema"`
	ID                   json.RawMessage     `json:"id"`
	Date                 string              `json:"date"`
	Day                  string              `json:"day"`
	TimePeriods          *[]model.TimePeriod `json:"timePeriods"`
	Duration             *rawDuration        `json:"duration"`
	Description          string              `json:"description"`
	Completed            *bool               `json:"completed"`
	TimerState           *string             `json:"timerState"`
	TimerElapsed         *float64            `json:"timerElapsed"`
	TimerStartTime       *float64            `json:"timerStartTime"`
	TimerActualStartTime *string             `json:"timerActualStartTime"`
	TimerActualStartDate *string             `json:"timerActualStartDate"`
	BaseDurationMinutes  *float64            `json:"baseDurationMinutes"`
	StopwatchPeriodIndex *int                `json:"stopwatchPeriodIndex"`

	// Before multi-period entries
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DecodeRecord maps one stored or imported record of any known schema to the
// current Entry. The second result reports whether the record was upgraded.
func DecodeRecord(data []byte) (model.Entry, bool, error) {
	var r rawRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Entry{}, false, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	if r.Schema != nil && *r.Schema > model.SchemaVersion {
		return model.Entry{}, false, fmt.Errorf("%w: version %d", ErrUnsupportedSchema, *r.Schema)
	}
	upgraded := r.Schema == nil || *r.Schema != model.SchemaVersion

	id, err := decodeID(r.ID)
	if err != nil {
		return model.Entry{}, false, err
	}

	e := model.Entry{
		Schema:               model.SchemaVersion,
		ID:                   id,
		Date:                 r.Date,
		Day:                  r.Day,
		Description:          r.Description,
		StopwatchPeriodIndex: r.StopwatchPeriodIndex,
	}
	if e.Day == "" {
		e.Day = model.WeekdayName(e.Date)
	}
	if r.Completed != nil {
		e.Completed = *r.Completed
	}

	// Timer fields: a record without a timer state never had a timer
	if r.TimerState == nil || *r.TimerState == "" {
		e.TimerState = model.TimerStopped
	} else {
		switch state := model.TimerState(*r.TimerState); state {
		case model.TimerStopped, model.TimerRunning, model.TimerPaused:
			e.TimerState = state
		default:
			return model.Entry{}, false, fmt.Errorf("%w: unknown timer state %q", ErrMalformedRecord, state)
		}
		if r.TimerElapsed != nil {
			e.TimerElapsed = int64(*r.TimerElapsed)
		}
		if r.TimerStartTime != nil {
			v := int64(*r.TimerStartTime)
			e.TimerStartTime = &v
		}
		if r.TimerActualStartTime != nil && *r.TimerActualStartTime != "" {
			v := *r.TimerActualStartTime
			e.TimerActualStartTime = &v
		}
		if r.TimerActualStartDate != nil && *r.TimerActualStartDate != "" {
			v := *r.TimerActualStartDate
			e.TimerActualStartDate = &v
		}
	}

	switch {
	case r.TimePeriods != nil:
		e.TimePeriods = *r.TimePeriods
	case r.StartTime != "" && r.EndTime != "":
		e.TimePeriods = []model.TimePeriod{{StartTime: r.StartTime, EndTime: r.EndTime}}
	}
	if e.TimePeriods == nil {
		e.TimePeriods = []model.TimePeriod{}
	}

	if len(e.TimePeriods) > 0 {
		e.RecomputeDuration()
	} else {
		e.Duration = model.NewDuration(r.Duration.seconds())
	}

	if r.BaseDurationMinutes != nil {
		e.BaseDurationMinutes = int(*r.BaseDurationMinutes)
	} else if r.Duration != nil {
		if r.Duration.TotalSeconds != nil {
			e.BaseDurationMinutes = int(math.Floor(*r.Duration.TotalSeconds / 60))
		} else if r.Duration.TotalMinutes != nil {
			e.BaseDurationMinutes = int(*r.Duration.TotalMinutes)
		}
	}

	return e, upgraded, nil
}

// DecodeRecords decodes a JSON array of records. Records that cannot be mapped
// are returned separately so the caller can keep them aside; a record from a
// newer schema aborts the whole decode.
func DecodeRecords(data []byte) (entries []model.Entry, rejected []json.RawMessage, upgraded bool, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, false, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	entries = make([]model.Entry, 0, len(raws))
	for _, raw := range raws {
		e, up, err := DecodeRecord(raw)
		if errors.Is(err, ErrUnsupportedSchema) {
			return nil, nil, false, err
		}
		if err != nil {
			rejected = append(rejected, raw)
			continue
		}
		upgraded = upgraded || up
		entries = append(entries, e)
	}
	return entries, rejected, upgraded, nil
}

// EncodeRecords serializes entries as the current schema
func EncodeRecords(entries []model.Entry) ([]byte, error) {
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].Schema = model.SchemaVersion
		if out[i].TimePeriods == nil {
			out[i].TimePeriods = []model.TimePeriod{}
		}
	}
	return json.Marshal(out)
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: bad id: %v", ErrMalformedRecord, err)
		}
		return s, nil
	}
	// Older documents used the creation timestamp in milliseconds
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return "", fmt.Errorf("%w: bad id %s", ErrMalformedRecord, raw)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
