package logger

import "fmt"

// BuzzLogger 为单次呼叫的日志附加关联上下文（call_sid/buzz_id/suite_id），
// 便于在多个无状态webhook回调之间串联同一通电话的日志
type BuzzLogger struct {
	CallSid string
	BuzzID  uint
	SuiteID uint
}

// NewBuzzLogger 创建一个呼叫上下文日志记录器
func NewBuzzLogger(callSid string, buzzID, suiteID uint) *BuzzLogger {
	return &BuzzLogger{CallSid: callSid, BuzzID: buzzID, SuiteID: suiteID}
}

func (l *BuzzLogger) prefix() string {
	return fmt.Sprintf("[call_sid=%s buzz_id=%d suite_id=%d] ", l.CallSid, l.BuzzID, l.SuiteID)
}

// Info 记录带呼叫上下文的信息日志
func (l *BuzzLogger) Info(format string, v ...interface{}) {
	Info(l.prefix()+format, v...)
}

// Error 记录带呼叫上下文的错误日志
func (l *BuzzLogger) Error(format string, v ...interface{}) {
	Error(l.prefix()+format, v...)
}
