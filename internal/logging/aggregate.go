package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// LogEntry is one parsed line of a run's JSON log.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	Car       string         `json:"car,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects entries. Criteria combine with AND; zero values
// mean "no filtering on this field".
type LogFilter struct {
	// Level keeps entries at or above this level (DEBUG < INFO < WARN < ERROR).
	Level string
	// Since keeps entries at or after this time.
	Since time.Time
	// Until keeps entries at or before this time.
	Until time.Time
	// Component keeps entries from one component ("bridge", "sim", ...).
	Component string
	// Car keeps entries about one car label.
	Car string
	// MessageContains keeps entries whose message contains the substring.
	MessageContains string
}

// levelOrder ranks levels for the minimum-level filter.
var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ReadLogFile parses every JSON line of a log file, skipping blank and
// corrupted lines, and returns the entries sorted by timestamp.
func ReadLogFile(path string) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)

	// Long attr values can push a line past the default token size.
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			// A torn write at the end of a crashed run should not hide
			// the rest of the log.
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// ParseEntry decodes one slog JSON line.
func ParseEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := LogEntry{Attrs: make(map[string]any)}

	if s, ok := raw["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			entry.Timestamp = t
		}
	}
	if s, ok := raw["level"].(string); ok {
		entry.Level = s
	}
	if s, ok := raw["msg"].(string); ok {
		entry.Message = s
	}
	if s, ok := raw["component"].(string); ok {
		entry.Component = s
	}
	if s, ok := raw["car"].(string); ok {
		entry.Car = s
	}

	known := map[string]bool{
		"time": true, "level": true, "msg": true,
		"component": true, "car": true,
	}
	for k, v := range raw {
		if !known[k] {
			entry.Attrs[k] = v
		}
	}
	return entry, nil
}

// FilterEntries returns the entries matching every set criterion.
func FilterEntries(entries []LogEntry, filter LogFilter) []LogEntry {
	if filter == (LogFilter{}) {
		return entries
	}

	var kept []LogEntry
	for _, entry := range entries {
		if filter.Matches(entry) {
			kept = append(kept, entry)
		}
	}
	return kept
}

// Matches reports whether the entry satisfies every set criterion.
func (f LogFilter) Matches(entry LogEntry) bool {
	if f.Level != "" {
		floor, floorOk := levelOrder[strings.ToUpper(f.Level)]
		have, haveOk := levelOrder[entry.Level]
		if floorOk && haveOk && have < floor {
			return false
		}
	}
	if !f.Since.IsZero() && entry.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && entry.Timestamp.After(f.Until) {
		return false
	}
	if f.Component != "" && entry.Component != f.Component {
		return false
	}
	if f.Car != "" && entry.Car != f.Car {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(entry.Message, f.MessageContains) {
		return false
	}
	return true
}

// ExportEntries writes entries to path in the given format: "json" (an
// indented array), "text" (one readable line per entry), or "csv".
func ExportEntries(entries []LogEntry, path string, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "text":
		return exportText(file, entries)
	case "csv":
		return exportCSV(file, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, text, csv)", format)
	}
}

func exportText(file *os.File, entries []LogEntry) error {
	for _, entry := range entries {
		if _, err := file.WriteString(FormatEntry(entry) + "\n"); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}
	return nil
}

// FormatEntry renders one entry the way `onelane logs` prints it:
// [timestamp] LEVEL - message (component, car) {attrs}.
func FormatEntry(entry LogEntry) string {
	parts := []string{
		fmt.Sprintf("[%s]", entry.Timestamp.Format("2006-01-02 15:04:05.000")),
		entry.Level,
		"-",
		entry.Message,
	}

	var context []string
	if entry.Component != "" {
		context = append(context, "component="+entry.Component)
	}
	if entry.Car != "" {
		context = append(context, "car="+entry.Car)
	}
	if len(context) > 0 {
		parts = append(parts, "("+strings.Join(context, ", ")+")")
	}

	if len(entry.Attrs) > 0 {
		if b, err := json.Marshal(entry.Attrs); err == nil {
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, " ")
}

func exportCSV(file *os.File, entries []LogEntry) error {
	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"timestamp", "level", "message", "component", "car", "attrs"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		attrs := ""
		if len(entry.Attrs) > 0 {
			if b, err := json.Marshal(entry.Attrs); err == nil {
				attrs = string(b)
			}
		}
		record := []string{
			entry.Timestamp.Format(time.RFC3339Nano),
			entry.Level,
			entry.Message,
			entry.Component,
			entry.Car,
			attrs,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
