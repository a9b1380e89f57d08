package edbexport

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// StackTracer is implemented by errors that carry the stack they were
// raised on.
type StackTracer interface {
	StackTrace() string
}

// Panic is a recovered panic, with the stack of the panicking goroutine.
type Panic struct {
	Reason any
	Stack  string
}

func (p *Panic) Error() string {
	return fmt.Sprintf("panic: %v", p.Reason)
}

func (p *Panic) StackTrace() string {
	return p.Stack
}

// Unwrap exposes the panic reason when it is an error.
func (p *Panic) Unwrap() error {
	if err, ok := p.Reason.(error); ok {
		return err
	}
	return nil
}

// Safely calls f, converting a panic into a *Panic error.
func Safely(f func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &Panic{p, string(debug.Stack())}
		}
	}()
	return f()
}

// ReportException writes err as an Exception element carrying its message
// and cleaned stack trace, followed by one nested Exception per cause: every
// joined error of an aggregate in order, or the single wrapped error.
func (e *Exporter) ReportException(err error) error {
	if err == nil {
		return nil
	}
	e.summary.Exceptions++
	return e.reportException(err)
}

func (e *Exporter) reportException(err error) error {
	if err := e.start(elException, attr(attrMessage, errorMessage(err))); err != nil {
		return err
	}
	if err := e.textElement(elStackTrace, CleanStackTrace(stackTraceOf(err))); err != nil {
		return err
	}
	for _, cause := range causesOf(err) {
		if err := e.reportException(cause); err != nil {
			return err
		}
	}
	return e.end()
}

func causesOf(err error) []error {
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		var causes []error
		for _, c := range x.Unwrap() {
			if c != nil {
				causes = append(causes, c)
			}
		}
		return causes
	case interface{ Unwrap() error }:
		if c := x.Unwrap(); c != nil {
			return []error{c}
		}
	}
	return nil
}

// stackTraceOf looks at err itself only; wrapped causes report their own
// stacks in nested Exceptions.
func stackTraceOf(err error) string {
	if st, ok := err.(StackTracer); ok {
		return st.StackTrace()
	}
	return ""
}

// errorMessage never panics, even for errors with a broken Error method.
func errorMessage(err error) (msg string) {
	defer func() {
		if p := recover(); p != nil {
			msg = fmt.Sprintf("%T (Error panicked: %v)", err, p)
		}
	}()
	return err.Error()
}

// CleanStackTrace reduces a Go stack dump to "function\n\tfile:line" pairs,
// dropping the goroutine header, runtime frames, argument values and PC
// offsets.
func CleanStackTrace(stack string) string {
	lines := strings.Split(strings.TrimSpace(stack), "\n")
	var buf strings.Builder
	for i := 0; i < len(lines); i++ {
		fn := strings.TrimSpace(lines[i])
		if fn == "" || strings.HasPrefix(fn, "goroutine ") {
			continue
		}
		var loc string
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
			loc = strings.TrimSpace(lines[i+1])
			i++
		}
		if skipFrame(fn) {
			continue
		}
		if p := strings.LastIndexByte(fn, '('); p > 0 {
			fn = fn[:p]
		}
		if p := strings.LastIndex(loc, " +0x"); p >= 0 {
			loc = loc[:p]
		}
		buf.WriteString(fn)
		if loc != "" {
			buf.WriteString("\n\t")
			buf.WriteString(loc)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

func skipFrame(fn string) bool {
	return strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "runtime/debug.") ||
		strings.HasPrefix(fn, "panic(") ||
		strings.HasPrefix(fn, "created by ")
}
