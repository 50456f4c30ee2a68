package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/harvester/logging/colors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the extraction run is
// configured. Each module/package should create its own sub-logger. This allows to create unique logging instances
// depending on the use case.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Structured events carry pkg/errors stack traces and UNIX timestamps.
func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured
// with colors, and unstructured formats.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// context describes the key-value pairs that every event emitted by this logger is tagged with. Sub-loggers
	// inherit the context of their parent.
	context []contextField

	// structuredLogger describes a logger that will be used to output structured logs to any arbitrary channel.
	structuredLogger zerolog.Logger

	// structuredWriters describes the various channels that the output from the structuredLogger will go to.
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that will be used to stream un-colorized, unstructured output to any
	// arbitrary channel.
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the various channels that the output from the unstructuredLogger will go to.
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that will be used to stream colorized, unstructured output to any
	// arbitrary channel.
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the various channels that the output from the unstructuredColorLogger will
	// go to.
	unstructuredColorWriters []io.Writer
}

// contextField is a single key-value pair attached to every event of a Logger
type contextField struct {
	key   string
	value string
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. By default, a logger that is instantiated
// with this function is not usable until a log channel is added. To add or remove channels that the logger
// streams logs to, call the Logger.AddWriter and Logger.RemoveWriter functions.
func NewLogger(level zerolog.Level) *Logger {
	logger := &Logger{
		level:                    level,
		context:                  make([]contextField, 0),
		structuredWriters:        make([]io.Writer, 0),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorWriters: make([]io.Writer, 0),
	}
	logger.rebuild()
	return logger
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some
// key. The sub-logger copies the writers of its parent at the time of creation.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subLogger := &Logger{
		level:                    l.level,
		context:                  append(append([]contextField{}, l.context...), contextField{key: key, value: value}),
		structuredWriters:        append([]io.Writer{}, l.structuredWriters...),
		unstructuredWriters:      append([]io.Writer{}, l.unstructuredWriters...),
		unstructuredColorWriters: append([]io.Writer{}, l.unstructuredColorWriters...),
	}
	subLogger.rebuild()
	return subLogger
}

// AddWriter will add a writer to which log output will go to. If the format is structured then the writer will
// receive JSON output. If the format is unstructured, then colored determines whether the writer will receive ANSI
// colored output. Adding a writer that already exists for the given format is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for _, w := range *writers {
		if w == writer {
			return
		}
	}
	*writers = append(*writers, writer)
	l.rebuild()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. If the writer does not exist,
// this function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for i, w := range *writers {
		if w == writer {
			*writers = append((*writers)[:i], (*writers)[i+1:]...)
			l.rebuild()
			return
		}
	}
}

// writersFor returns a pointer to the writer list that serves the given format and coloring
func (l *Logger) writersFor(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	}
	if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuild re-creates the underlying zerolog loggers from the current writers, level, and context.
func (l *Logger) rebuild() {
	l.structuredLogger = l.withContext(zerolog.New(zerolog.MultiLevelWriter(l.structuredWriters...)).With().Timestamp(), len(l.structuredWriters))

	unstructuredWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: zerolog.MultiLevelWriter(l.unstructuredWriters...), NoColor: true}, l.level)
	l.unstructuredLogger = l.withContext(zerolog.New(unstructuredWriter).With(), len(l.unstructuredWriters))

	colorWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: zerolog.MultiLevelWriter(l.unstructuredColorWriters...)}, l.level)
	l.unstructuredColorLogger = l.withContext(zerolog.New(colorWriter).With(), len(l.unstructuredColorWriters))
}

// withContext attaches the logger context to the provided zerolog context and returns a leveled logger. Loggers
// without any writers are disabled so that no work is performed for them.
func (l *Logger) withContext(ctx zerolog.Context, writerCount int) zerolog.Logger {
	if writerCount == 0 {
		return ctx.Logger().Level(zerolog.Disabled)
	}
	for _, field := range l.context {
		ctx = ctx.Str(field.key, field.value)
	}
	return ctx.Logger().Level(l.level)
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuild()
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages from the provided arguments and sends an event of the given level to every channel.
func (l *Logger) log(level zerolog.Level, args ...any) {
	// Build the messages and retrieve any error or associated structured log info
	colorMsg, noColorMsg, err, info := buildMsgs(args...)

	// Instantiate log events
	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	colorLog := l.unstructuredColorLogger.WithLevel(level)

	// Chain the error. Stack traces are only added at debug level or below, or when panicking.
	withStack := l.level <= zerolog.DebugLevel || level == zerolog.PanicLevel
	chainError(err, withStack, structuredLog, unstructuredLog, colorLog)

	// Chain the structured log info and send off the logs. The structured log is sent last so that a panic still
	// reaches every other channel first.
	chainStructuredLogInfo(info, structuredLog, unstructuredLog, colorLog)
	colorLog.Msg(colorMsg)
	unstructuredLog.Msg(noColorMsg)
	structuredLog.Msg(noColorMsg)

	if level == zerolog.PanicLevel {
		panic(noColorMsg)
	}
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a colorized-string that can be used for
// console logging while the second string will be a non-colorized one that can be used for file/structured logging.
// The error and the StructuredLogInfo can be used to add additional context to log messages
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", "", nil, nil
	}

	// Initialize the base color context, the string buffers and the structured log info object
	colorCtx := colors.Reset
	colorOutput := make([]string, 0)
	noColorOutput := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// If the argument is a color function, switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case error:
			// Note that only one error can be provided for each log message
			err = t
		case []any:
			// Nested argument lists come from log buffers, flatten them
			colorMsg, noColorMsg, nestedErr, nestedInfo := buildMsgs(t...)
			colorOutput = append(colorOutput, colorMsg)
			noColorOutput = append(noColorOutput, noColorMsg)
			if nestedErr != nil {
				err = nestedErr
			}
			if nestedInfo != nil {
				info = nestedInfo
			}
		default:
			// In the base case, append the object to the two string buffers. The colored string buffer will have the
			// current color context applied to it.
			colorOutput = append(colorOutput, colorCtx(t))
			noColorOutput = append(noColorOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(noColorOutput, ""), err, info
}

// chainError is a helper function that takes in a list of zerolog events and chains an error to each of them. If
// withStack is true, then a stack trace is added to the events as well.
func chainError(err error, withStack bool, events ...*zerolog.Event) {
	if err == nil {
		return
	}
	for _, event := range events {
		if withStack {
			event.Stack()
		}
		event.Err(err)
	}
}

// chainStructuredLogInfo is a helper function that attaches any StructuredLogInfo provided to it to each event.
func chainStructuredLogInfo(info StructuredLogInfo, events ...*zerolog.Event) {
	if info == nil {
		return
	}
	for _, event := range events {
		event.Any("info", info)
	}
}

// setupDefaultFormatting will update the console logger's formatting to the harvester standard
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	// Get rid of the timestamp for console output
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	// Colorization is skipped entirely for writers that disabled it
	colorize := func(color colors.ColorFunc, s string) string {
		if writer.NoColor {
			return s
		}
		return color(s)
	}

	// We will define a custom format for each level
	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsedLevel, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		// Switch on the level and return a custom, colored string
		switch parsedLevel {
		case zerolog.TraceLevel:
			return colorize(colors.CyanBold, zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colorize(colors.BlueBold, zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colorize(colors.GreenBold, colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colorize(colors.YellowBold, zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colorize(colors.RedBold, zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colorize(colors.RedBold, zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colorize(colors.RedBold, zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	// Messages carry their own colors from buildMsgs, so the console writer must not add any
	writer.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%s", i)
	}

	// Field names and errors follow the global color switch instead of the writer defaults
	writer.FormatFieldName = func(i any) string {
		return colorize(colors.Cyan, fmt.Sprintf("%s=", i))
	}
	writer.FormatErrFieldName = func(i any) string {
		return colorize(colors.RedBold, fmt.Sprintf("%s=", i))
	}
	writer.FormatErrFieldValue = func(i any) string {
		return colorize(colors.RedBold, fmt.Sprintf("%v", i))
	}

	// If we are above debug level, we want to get rid of the `module` component when logging to console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}
