package logging

import (
	"encoding/json"
	"fmt"
)

// JsonFormatter renders one JSON object per entry. Field values that
// cannot be marshalled are rendered with %v.
type JsonFormatter struct {
	TimestampFormat string
}

func NewJsonFormatter() *JsonFormatter {
	return &JsonFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

func (f *JsonFormatter) Format(entry *LogEntry) ([]byte, error) {
	data := map[string]any{
		"time":  entry.Time.Format(f.TimestampFormat),
		"level": entry.Level.String(),
		"msg":   entry.Message,
	}
	if entry.Category != "" {
		data["category"] = entry.Category
	}

	if len(entry.Fields) > 0 {
		fields := make(map[string]any, len(entry.Fields))
		for _, field := range entry.Fields {
			if _, err := json.Marshal(field.Value); err != nil {
				fields[field.Key] = fmt.Sprintf("%v", field.Value)
				continue
			}
			fields[field.Key] = field.Value
		}
		data["fields"] = fields
	}

	return json.Marshal(data)
}
