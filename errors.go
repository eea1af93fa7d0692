// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var SNMPErrorNames = map[int]string{
	SNMP_ErrNoError:             "Success",
	SNMP_ErrTooBig:              "Too big",
	SNMP_ErrNoSuchName:          "No such name",
	SNMP_ErrBadValue:            "Bad value",
	SNMP_ErrReadOnly:            "Read only",
	SNMP_ErrGenErr:              "General error",
	SNMP_ErrNoAccess:            "No access",
	SNMP_ErrWrongType:           "Wrong type",
	SNMP_ErrWrongLength:         "Wrong length",
	SNMP_ErrWrongEncoding:       "Wrong encoding",
	SNMP_ErrWrongValue:          "Wrong value",
	SNMP_ErrNoCreation:          "No creation",
	SNMP_ErrInconsistentValue:   "Inconsistent value",
	SNMP_ErrResourceUnavailable: "Resource unavailable",
	SNMP_ErrCommitFailed:        "Commit failed",
	SNMP_ErrUndoFailed:          "Undo failed",
	SNMP_ErrAuthorizationError:  "Authorization error",
	SNMP_ErrNotWritable:         "Not writable",
	SNMP_ErrInconsistentName:    "Inconsistent name",
}

// SNMPErrorIntToText returns the text of a PDU error-status.
func SNMPErrorIntToText(code int) string {
	if s, ok := SNMPErrorNames[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown error (%d)", code)
}

// NoResponseError: the agent did not answer within timeout × attempts.
type NoResponseError struct {
	Target   string
	Attempts int
	Timeout  time.Duration
}

func (e NoResponseError) Error() string {
	return fmt.Sprintf("no response from %s after %d attempt(s) of %s", e.Target, e.Attempts, e.Timeout)
}

// TransportError: the socket could not be set up or failed mid-operation.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e TransportError) Unwrap() error { return e.Err }

// TargetError: the call arguments cannot be turned into a request.
type TargetError struct {
	Reason string
}

func (e TargetError) Error() string { return e.Reason }

// DecodeError: a response could not be parsed.
type DecodeError struct {
	Err error
}

func (e DecodeError) Error() string { return e.Err.Error() }
func (e DecodeError) Unwrap() error { return e.Err }

// ProtocolStatusError: the agent answered with a non-zero error-status.
type ProtocolStatusError struct {
	Status int
	Index  int
}

func (e ProtocolStatusError) Error() string {
	return fmt.Sprintf("%s at index %d", SNMPErrorIntToText(e.Status), e.Index)
}

// SecurityError: USM processing failed, either reported by the agent with a
// REPORT PDU or detected locally on the response.
type SecurityError struct {
	ReportOID []int
	Reason    string
}

func (e SecurityError) Error() string { return e.Reason }

// TraversalError: a walk step returned a binding that cannot be used as data.
type TraversalError struct {
	OID    []int
	Reason string
}

func (e TraversalError) Error() string { return e.Reason }

// errorKindName is the <Kind> part of fault entries.
func errorKindName(err error) string {
	var (
		noResp NoResponseError
		trErr  TransportError
		tgErr  TargetError
		decErr DecodeError
		stErr  ProtocolStatusError
		secErr SecurityError
		walErr TraversalError
	)
	switch {
	case errors.As(err, &trErr):
		return "TransportError"
	case errors.As(err, &tgErr):
		return "TargetError"
	case errors.As(err, &decErr):
		return "DecodeError"
	case errors.As(err, &noResp):
		return "NoResponseError"
	case errors.As(err, &stErr):
		return "ProtocolStatusError"
	case errors.As(err, &secErr):
		return "SecurityError"
	case errors.As(err, &walErr):
		return "TraversalError"
	}
	return "Error"
}

// ErrorEntry formats a coded result entry.
func ErrorEntry(code string, detail string) string {
	return "[" + code + "] Error: " + detail
}

// ParseErrorEntry splits a coded entry into code and detail.
func ParseErrorEntry(entry string) (code string, detail string, ok bool) {
	if !strings.HasPrefix(entry, "[") {
		return "", "", false
	}
	end := strings.Index(entry, "] Error: ")
	if end < 2 {
		return "", "", false
	}
	code = entry[1:end]
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", "", false
		}
	}
	return code, entry[end+len("] Error: "):], true
}

// IsErrorEntry reports whether a result entry is a coded error.
func IsErrorEntry(entry string) bool {
	_, _, ok := ParseErrorEntry(entry)
	return ok
}

func faultEntry(code string, err error) string {
	return ErrorEntry(code, errorKindName(err)+": "+err.Error())
}

// v3DebugInfo describes the call in GetV3 error entries.
func v3DebugInfo(t Target) string {
	user, level := "", NoAuthNoPriv
	if us, ok := t.Security.(UserSecurity); ok {
		user, level = us.Username, us.SecurityLevel
	}
	return fmt.Sprintf("Target: %s, Timeout: %d, SecLevel: %d, User: %s", t.Address, t.TimeoutMs, int(level), user)
}

// classifyGet turns a failed GET into its single result entry.
func classifyGet(t Target, err error) string {
	var (
		noResp NoResponseError
		stErr  ProtocolStatusError
		secErr SecurityError
	)
	if t.Version == SNMPVersion3 {
		switch {
		case errors.As(err, &noResp):
			return ErrorEntry(CodeGetV3NoResponse, "No Response ["+v3DebugInfo(t)+"]")
		case errors.As(err, &secErr):
			return ErrorEntry(CodeGetV3Error, secErr.Error()+" ["+v3DebugInfo(t)+"]")
		case errors.As(err, &stErr):
			return ErrorEntry(CodeGetV3Status, stErr.Error())
		}
		return faultEntry(CodeGetV3Fault, err)
	}
	switch {
	case errors.As(err, &noResp):
		return ErrorEntry(CodeGetNoResponse, "No Response from device")
	case errors.As(err, &stErr):
		return ErrorEntry(CodeGetStatus, stErr.Error())
	}
	return faultEntry(CodeGetFault, err)
}

// classifyWalkStep formats the entry of one failed traversal step.
func classifyWalkStep(t Target, err error) string {
	code := CodeWalkStep
	if t.Version == SNMPVersion3 {
		code = CodeWalkV3Step
	}
	var (
		noResp NoResponseError
		stErr  ProtocolStatusError
		secErr SecurityError
		walErr TraversalError
	)
	switch {
	case errors.As(err, &noResp):
		return ErrorEntry(code, walkTimeoutStepMessage)
	case errors.As(err, &stErr), errors.As(err, &secErr), errors.As(err, &walErr):
		return ErrorEntry(code, err.Error())
	}
	return ErrorEntry(code, errorKindName(err)+": "+err.Error())
}

// classifyWalkFault formats a failure that prevented the walk from starting.
func classifyWalkFault(t Target, err error) string {
	if t.Version == SNMPVersion3 {
		return faultEntry(CodeWalkV3Fault, err)
	}
	return faultEntry(CodeWalkFault, err)
}
