package logger

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDir      = "log"
	logFilename = "ramptrack.log"
)

var Logger zerolog.Logger
var Writer io.Writer
var logFilePath string

func Init(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	Writer = consoleWriter

	level := ParseLevel(logLevel)
	zerolog.SetGlobalLevel(level)
	Logger = zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		Logger = Logger.With().Caller().Logger()
		Logger.Debug().Msg("caller reporting enabled in debug mode")
	}
}

// ParseLevel maps the numeric levels of the config (0 panic .. 6 trace) to
// zerolog levels. Anything else is info.
func ParseLevel(logLevel string) zerolog.Level {
	level, err := strconv.Atoi(logLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	switch level {
	case 6:
		return zerolog.TraceLevel
	case 5:
		return zerolog.DebugLevel
	case 4:
		return zerolog.InfoLevel
	case 3:
		return zerolog.WarnLevel
	case 2:
		return zerolog.ErrorLevel
	case 1:
		return zerolog.FatalLevel
	case 0:
		return zerolog.PanicLevel
	}
	return zerolog.InfoLevel
}

// AddFileLogger tees the log into a rotated file under workdir.
func AddFileLogger(workdir string) {
	logFilePath = filepath.Join(workdir, logDir, logFilename)
	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10,
		MaxAge:     3,
		MaxBackups: 3,
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	Writer = zerolog.MultiLevelWriter(consoleWriter, fileLogger)

	Logger = zerolog.New(Writer).
		Level(Logger.GetLevel()).
		With().
		Timestamp().
		Logger()
}

func GetLogFilePath() string {
	return logFilePath
}
