package security

import "go.uber.org/zap/zapcore"

// Severity is derived from the event type, never supplied by callers.
type Severity string

const (
	SeverityINFO   Severity = "INFO"
	SeverityMEDIUM Severity = "MEDIUM"
	SeverityWARN   Severity = "WARN"
	SeverityHIGH   Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventUserBlocked:        SeverityINFO,
	EventRateLimitTriggered: SeverityWARN,
	EventValidationFailed:   SeverityWARN,
	EventUnauthorizedAccess: SeverityHIGH,
}

// GetSeverity defaults to MEDIUM for unmapped events.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := eventSeverity[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func (s Severity) zapLevel() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
