package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// JSONLJournal writes one JSON object per line. Rotated segments are kept
// forever and never compressed, so no record is lost or rewritten.
type JSONLJournal struct {
	mu    sync.Mutex
	sink  *lumberjack.Logger
	core  zapcore.Core
	clock *clock
}

// NewJSONLJournal appends to the file at path, creating it if needed.
func NewJSONLJournal(path string) (*JSONLJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename: path,
		MaxSize:  100, // MB per segment
	}

	// Only the record fields are written; zap's own keys are disabled.
	encoderConfig := zapcore.EncoderConfig{
		LineEnding: zapcore.DefaultLineEnding,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(sink),
		zap.InfoLevel,
	)

	return &JSONLJournal{
		sink:  sink,
		core:  core,
		clock: newClock(),
	}, nil
}

func (j *JSONLJournal) Record(_ context.Context, userID, userMessage, botReply string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	ts := j.clock.stamp()
	// Writing through the core directly surfaces file errors to the caller.
	err := j.core.Write(zapcore.Entry{Level: zap.InfoLevel, Time: ts}, []zap.Field{
		zap.String("timestamp", ts.Format(TimeFormat)),
		zap.String("user_id", userID),
		zap.String("user_message", userMessage),
		zap.String("bot_reply", botReply),
	})
	if err != nil {
		return fmt.Errorf("journal write: %w", err)
	}
	return nil
}

func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_ = j.core.Sync()
	return j.sink.Close()
}
