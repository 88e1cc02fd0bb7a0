package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	fatalColor = color.New(color.FgRed, color.Bold)
	tagColor   = color.New(color.FgMagenta)
)

// Logger writes timestamped, category-tagged lines to a single sink.
// Safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
}

// New builds a logger writing to out. Debug lines are dropped unless
// debug is true.
func New(out io.Writer, debug bool) *Logger {
	return &Logger{out: out, debug: debug}
}

// NewLogger builds the default stdout logger. Set LOG_LEVEL=debug to
// enable debug output.
func NewLogger() *Logger {
	debug := strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug")
	return New(os.Stdout, debug)
}

func (l *Logger) write(levelColor *color.Color, level, category, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.out, "%s %s %s %s\n",
		ts,
		levelColor.Sprintf("[%-5s]", level),
		tagColor.Sprintf("[%s]", category),
		message)
}

func (l *Logger) Debug(category, message string) {
	if !l.debug {
		return
	}
	l.write(debugColor, "DEBUG", category, message)
}

func (l *Logger) Info(category, message string) {
	l.write(infoColor, "INFO", category, message)
}

func (l *Logger) Warn(category, message string) {
	l.write(warnColor, "WARN", category, message)
}

func (l *Logger) Error(category, message string) {
	l.write(errorColor, "ERROR", category, message)
}

// Fatal logs the message and terminates the process.
func (l *Logger) Fatal(category, message string) {
	l.write(fatalColor, "FATAL", category, message)
	os.Exit(1)
}

// LogProcess records an application lifecycle step.
func (l *Logger) LogProcess(stage, message string) {
	l.Info("PROCESS", fmt.Sprintf("[%s] %s", stage, message))
}

// LogPayment records a payment-level action.
func (l *Logger) LogPayment(action, paymentID, message string) {
	l.Info("PAYMENT", fmt.Sprintf("[%s] [%s] %s", action, paymentID, message))
}

// LogDatabase records a storage operation against a table.
func (l *Logger) LogDatabase(operation, table, message string) {
	l.Info("DATABASE", fmt.Sprintf("[%s] [%s] %s", operation, table, message))
}

// LogCache records a cache operation against a key.
func (l *Logger) LogCache(operation, key, message string) {
	l.Info("CACHE", fmt.Sprintf("[%s] [%s] %s", operation, key, message))
}

// LogKafka records a Kafka operation against a topic.
func (l *Logger) LogKafka(operation, topic, message string) {
	l.Info("KAFKA", fmt.Sprintf("[%s] [%s] %s", operation, topic, message))
}

// LogBatch records a batch-processor operation.
func (l *Logger) LogBatch(operation, message string) {
	l.Info("BATCH", fmt.Sprintf("[%s] %s", operation, message))
}

// Close flushes and releases the underlying sink.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if closer, ok := l.out.(io.Closer); ok && l.out != os.Stdout && l.out != os.Stderr {
		closer.Close()
	}
}
