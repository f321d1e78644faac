package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TranscriptEntry is one chat exchange as written to the chat log.
type TranscriptEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	SessionId      string    `json:"sessionId"`
	UserQuery      string    `json:"userQuery"`
	AssistantReply string    `json:"assistantReply"`
	Stage          string    `json:"stage,omitempty"`
	Error          *string   `json:"error"`
}

// TranscriptLogger appends one JSON object per line to the chat log file.
// It has no level, message or caller keys: each line is exactly one exchange.
type TranscriptLogger struct {
	logger *zap.Logger
}

func NewTranscriptLogger(logFilePath string) *TranscriptLogger {
	return newTranscriptLogger(zapcore.AddSync(newRotator(logFilePath)))
}

func newTranscriptLogger(ws zapcore.WriteSyncer) *TranscriptLogger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), ws, zap.InfoLevel)
	return &TranscriptLogger{logger: zap.New(core)}
}

func (t *TranscriptLogger) Write(entry TranscriptEntry) {
	fields := []zap.Field{
		zap.String("sessionId", entry.SessionId),
		zap.String("userQuery", entry.UserQuery),
		zap.String("assistantReply", entry.AssistantReply),
		zap.String("stage", entry.Stage),
	}
	if entry.Error != nil {
		fields = append(fields, zap.String("error", *entry.Error))
	} else {
		fields = append(fields, zap.Any("error", nil))
	}

	ce := t.logger.Check(zap.InfoLevel, "")
	if ce == nil {
		return
	}
	if !entry.Timestamp.IsZero() {
		ce.Time = entry.Timestamp
	}
	ce.Write(fields...)
}

func (t *TranscriptLogger) Sync() error {
	return t.logger.Sync()
}
