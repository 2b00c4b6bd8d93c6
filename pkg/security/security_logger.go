package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventUserBlocked        EventType = "user_blocked"
	EventValidationFailed   EventType = "validation_failed"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "ip", "user_id"
	SubjectValue string                 `json:"subject_value,omitempty"` // hashed for user ids
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *SecurityLogger
	defaultOnce   sync.Once
)

// NewSecurityLogger builds a logger around an existing zap logger.
func NewSecurityLogger(zl *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{zapLogger: zl, serviceName: serviceName, environment: environment}
}

// InitSecurityLogger initializes the process-wide security logger with Zap
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	defaultLogger = NewSecurityLogger(logger, serviceName, environment)
	return defaultLogger
}

// DefaultLogger returns the process-wide logger, initializing it on first use.
func DefaultLogger() *SecurityLogger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			InitSecurityLogger("species-social-backend", getEnvironment())
		}
	})
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	severity := GetSeverity(event.Event)
	level := severity.zapLevel()
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogUnauthorized logs a rejected token or missing credentials.
func (sl *SecurityLogger) LogUnauthorized(ctx context.Context, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Details:   map[string]interface{}{"reason": reason},
	})
}

// LogUserBlocked records that one user blocked another. Both ids are hashed.
func (sl *SecurityLogger) LogUserBlocked(ctx context.Context, blockerID, blockedID, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUserBlocked,
		SubjectType:  "user_id",
		SubjectValue: HashValue(blockerID),
		RequestID:    requestID,
		Details:      map[string]interface{}{"blocked": HashValue(blockedID)},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
