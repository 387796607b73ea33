// Package report provides the JSONL audit event log and the markdown
// summary report the CLI writes alongside each plan/apply run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event recorded during a
// scan/plan/apply run.
type EventType string

const (
	EventScan          EventType = "scan"
	EventProbe         EventType = "probe"
	EventFolderPlaced  EventType = "folder-placed"
	EventFolderSkipped EventType = "folder-skipped"
	EventFilePlaced    EventType = "file-placed"
	EventFileSkipped   EventType = "file-skipped"
	EventExecute       EventType = "execute"
	EventConflict      EventType = "conflict"
	EventError         EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in the scan/plan/apply pipeline.
type Event struct {
	RunID        string            `json:"run_id,omitempty"`
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	AbsolutePath string            `json:"absolute_path,omitempty"`
	SourceVolume string            `json:"source_volume,omitempty"`
	TargetVolume string            `json:"target_volume,omitempty"`
	FolderPath   string            `json:"folder_path,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BytesMoved   int64             `json:"bytes_moved,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level.
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug).
// The log file is named with a fresh run ID rather than the timestamp
// alone, so two runs started within the same second do not collide; the
// same ID is stamped on every event. It is independent of the
// audit.Recorder run ID carried by the plan's snapshots.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	runID := uuid.New().String()
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s-%s.jsonl", timestamp, runID[:8])
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    runID,
		minLevel: minLevel,
	}, nil
}

// RunID returns the logger's run identifier, shared by its log
// filename and every event it writes.
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogScan logs a file discovered during the inventory scan.
func (l *EventLogger) LogScan(absPath, sourceVolume string, sizeBytes int64) error {
	return l.Log(&Event{
		Level:        LevelDebug,
		Event:        EventScan,
		AbsolutePath: absPath,
		SourceVolume: sourceVolume,
		Extra: map[string]string{
			"size_bytes": fmt.Sprintf("%d", sizeBytes),
		},
	})
}

// LogProbe logs a volume's free-space probe result.
func (l *EventLogger) LogProbe(volumePath string, totalBytes, freeBytes int64, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:        level,
		Event:        EventProbe,
		SourceVolume: volumePath,
		Error:        errMsg,
		Extra: map[string]string{
			"total_bytes": fmt.Sprintf("%d", totalBytes),
			"free_bytes":  fmt.Sprintf("%d", freeBytes),
		},
	})
}

// LogPlacement logs a folder or file placement/skip decision made by
// the packer. event should be one of EventFolderPlaced,
// EventFolderSkipped, EventFilePlaced, or EventFileSkipped.
func (l *EventLogger) LogPlacement(event EventType, absPath, sourceVolume, targetVolume, folderPath, reason string) error {
	level := LevelInfo
	if event == EventFolderSkipped || event == EventFileSkipped {
		level = LevelWarning
	}
	return l.Log(&Event{
		Level:        level,
		Event:        event,
		AbsolutePath: absPath,
		SourceVolume: sourceVolume,
		TargetVolume: targetVolume,
		FolderPath:   folderPath,
		Reason:       reason,
	})
}

// LogExecute logs a transfer executor move attempt.
func (l *EventLogger) LogExecute(absPath, sourceVolume, targetVolume string, bytesMoved int64, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:        level,
		Event:        EventExecute,
		AbsolutePath: absPath,
		SourceVolume: sourceVolume,
		TargetVolume: targetVolume,
		BytesMoved:   bytesMoved,
		Duration:     duration.Milliseconds(),
		Error:        errMsg,
	})
}

// LogConflict logs a destination-path conflict detected at apply time.
func (l *EventLogger) LogConflict(absPath, targetVolume, reason string) error {
	return l.Log(&Event{
		Level:        LevelWarning,
		Event:        EventConflict,
		AbsolutePath: absPath,
		TargetVolume: targetVolume,
		Reason:       reason,
	})
}

// LogError logs a generic error event.
func (l *EventLogger) LogError(event EventType, absPath string, err error) error {
	return l.Log(&Event{
		Level:        LevelError,
		Event:        event,
		AbsolutePath: absPath,
		Error:        err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
