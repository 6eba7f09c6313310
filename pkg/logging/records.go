package logging

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RecordTimeLayout is the timestamp layout used inside the leading brackets
// of every record line.
const RecordTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Recorder writes the simulator's line-oriented records:
//
//	[2006-01-02T15:04:05.000Z07:00] message
//
// A supervisor's log capture parses these, so nothing else goes on the
// same stream.
type Recorder struct {
	logger *zap.Logger
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w io.Writer, opts ...zap.Option) *Recorder {
	return NewRecorderWithCore(NewRecordCore(w), opts...)
}

// NewRecorderWithCore wraps an existing core, e.g. an observer core in tests.
func NewRecorderWithCore(core zapcore.Core, opts ...zap.Option) *Recorder {
	return &Recorder{logger: zap.New(core, opts...)}
}

// NewRecordCore returns a console core that emits only "[time] message".
func NewRecordCore(w io.Writer) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "ts",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       bracketedTimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		zapcore.DebugLevel,
	)
}

func bracketedTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(RecordTimeLayout) + "]")
}

// Recordf emits one record line.
func (r *Recorder) Recordf(format string, args ...interface{}) {
	r.logger.Info(fmt.Sprintf(format, args...))
}
