package util

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// A Simple buffered log. There is one process wide file log and a map from logName -> SimpleLogWrapper, each wrapper
// prints with its own header. For example, `GetLog("plan").DebugF("demoted")` prints
// `2006/01/02 15:04:05.000000 [plan] [DEBUG]: demoted.`
// Usage:
// ```golang
//	InitLogger("/tmp/colsql.log", 4096, time.Second, false)
//	defer CloseLog()
//	GetLog("scan").InfoF("scan %s started", "a.b")
// ```
// Before InitLogger is called every print is dropped, so packages can log freely in tests.

const (
	INFO = iota
	DEBUG
	WARN
	ERROR
	FATAL
)

var (
	logLevelMaps = map[int]string{
		INFO:  "INFO",
		DEBUG: "DEBUG",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}
	fileLog            *SimpleLog
	globalLogLock      sync.RWMutex
	globalLogger       = map[string]SimpleLogWrapper{}
	ErrReInitializeLog = errors.New("log have been initialized")
	ErrClosedLog       = errors.New("log have been closed")
	ErrLogNotInit      = errors.New("log is not initialized")
	logBufChCapacity   = 1 << 16
)

type SimpleLog struct {
	SavePath      string
	BufferSize    int
	flushTime     time.Duration
	lastFlushTime time.Time
	Buf           *bytes.Buffer
	lock          sync.Mutex
	logFlusher    *logFlusher
	logCh         chan *bytes.Buffer
	console       bool
	closed        bool
	done          chan struct{}
}

type SimpleLogWrapper struct {
	header string
}

func GetLog(logName string) SimpleLogWrapper {
	globalLogLock.Lock()
	defer globalLogLock.Unlock()
	log, ok := globalLogger[logName]
	if !ok {
		log = SimpleLogWrapper{logName}
		globalLogger[logName] = log
	}
	return log
}

// CloseLog flushes the remaining buffer and waits until the flusher has written it.
func CloseLog() error {
	globalLogLock.Lock()
	log := fileLog
	fileLog = nil
	globalLogLock.Unlock()
	if log == nil {
		return ErrLogNotInit
	}
	err := log.closeLogger()
	if err != nil {
		return err
	}
	<-log.done
	return nil
}

// InitLogger opens savePath for appending. console echoes every line to stderr as well.
func InitLogger(savePath string, bufSize int, flushTime time.Duration, console bool) error {
	globalLogLock.Lock()
	defer globalLogLock.Unlock()
	if fileLog != nil {
		return ErrReInitializeLog
	}
	logCh := make(chan *bytes.Buffer, logBufChCapacity)
	flusher, err := newLogFlusher(savePath, logCh)
	if err != nil {
		return err
	}
	fileLog = &SimpleLog{
		SavePath:      savePath,
		BufferSize:    bufSize,
		flushTime:     flushTime,
		lastFlushTime: time.Now(),
		Buf:           new(bytes.Buffer),
		logFlusher:    flusher,
		logCh:         logCh,
		console:       console,
		done:          make(chan struct{}),
	}
	go flusher.flushLog(fileLog.done)
	return nil
}

func currentLog() *SimpleLog {
	globalLogLock.RLock()
	defer globalLogLock.RUnlock()
	return fileLog
}

func (log SimpleLogWrapper) InfoF(format string, params ...interface{}) {
	currentLog().printLog(log.header, INFO, format, params...)
}

func (log SimpleLogWrapper) DebugF(format string, params ...interface{}) {
	currentLog().printLog(log.header, DEBUG, format, params...)
}

func (log SimpleLogWrapper) WarnF(format string, params ...interface{}) {
	currentLog().printLog(log.header, WARN, format, params...)
}

func (log SimpleLogWrapper) ErrorF(format string, params ...interface{}) {
	currentLog().printLog(log.header, ERROR, format, params...)
}

func (log SimpleLogWrapper) FatalF(format string, params ...interface{}) {
	currentLog().printLog(log.header, FATAL, format, params...)
}

func (log *SimpleLog) closeLogger() error {
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return ErrClosedLog
	}
	log.doFlushIfNeed(true)
	close(log.logCh)
	log.closed = true
	return nil
}

// printLog print a log with format like:
// 2006/01/02 15:04:05.000000 [header] [INFO]: some thing happened.
func (log *SimpleLog) printLog(header string, level int, format string, a ...interface{}) {
	if log == nil {
		return
	}
	log.lock.Lock()
	defer log.lock.Unlock()
	if log.closed {
		return
	}
	l := fmt.Sprintf("%s [%s] [%s]: ", time.Now().Format("2006/01/02 15:04:05.000000"), header, logLevelMaps[level])
	l = fmt.Sprintf(l+format, a...)
	if log.console {
		fmt.Fprintln(os.Stderr, l)
	}
	log.Buf.WriteString(l)
	log.Buf.WriteByte('\n')
	log.doFlushIfNeed(false)
}

func (log *SimpleLog) doFlushIfNeed(force bool) {
	if log.Buf.Len() == 0 {
		return
	}
	if force || log.Buf.Len() >= log.BufferSize || log.checkFlushTime() {
		buf := log.Buf
		log.Buf = new(bytes.Buffer)
		log.logCh <- buf
		log.lastFlushTime = time.Now()
	}
}

func (log *SimpleLog) checkFlushTime() bool {
	return time.Now().After(log.lastFlushTime.Add(log.flushTime))
}

type logFlusher struct {
	fileName string
	f        *os.File
	logCh    <-chan *bytes.Buffer
}

func newLogFlusher(fileName string, logCh <-chan *bytes.Buffer) (*logFlusher, error) {
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &logFlusher{
		fileName: fileName,
		f:        f,
		logCh:    logCh,
	}, nil
}

func (flusher *logFlusher) close() error {
	return flusher.f.Close()
}

func (flusher *logFlusher) flushLog(done chan<- struct{}) {
	defer close(done)
	for buf := range flusher.logCh {
		// NOTE: We ignore the returned value of writeTo.
		buf.WriteTo(flusher.f)
	}
	flusher.close()
}
