// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"fmt"
	"log/slog"
	"time"
)

// Engine runs GET and WALK calls. Every call opens its own session and closes
// it before returning; only the protocol registry is shared between calls.
//
// All methods are synchronous, safe for concurrent use and always return a
// list of strings: values, "<oid> = <value>" walk entries or coded errors of
// the form "[CODE] Error: detail".
//
// Example:
//
//	engine := PowerSNMPQuery.NewEngine()
//	res := engine.Get("192.168.1.1", 161, []string{"1.3.6.1.2.1.1.1.0"}, []string{"public", "timeout=1000"})
//	for _, r := range res {
//	    if PowerSNMPQuery.IsErrorEntry(r) {
//	        log.Println(r)
//	    }
//	}
type Engine struct {
	registry *ProtocolRegistry
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Engine)

// WithRegistry shares a protocol registry between engines.
func WithRegistry(r *ProtocolRegistry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine returns an engine with its own registry and a silent logger
// unless options say otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry: NewProtocolRegistry(),
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *ProtocolRegistry { return e.registry }

// splitCommunityParams takes the community from params[0], the rest are
// overrides. Missing params mean an empty community.
func splitCommunityParams(params []string) (string, []OverrideParam) {
	if len(params) == 0 {
		return "", nil
	}
	return params[0], ParseOverrides(params[1:])
}

// Get fetches oids from a v1/v2c agent. params[0] is the community, the rest
// are version, timeout and retry overrides.
func (e *Engine) Get(address string, port int, oids []string, params []string) []string {
	community, overrides := splitCommunityParams(params)
	target := BuildCommunityTarget(address, community, port, overrides)
	return e.runGet(target, nil, oids)
}

// GetV3 fetches oids with USM.
//
// Parameters:
//
//	securityLevel    - 1 noAuthNoPriv, 2 authNoPriv, 3 authPriv
//	authProtocolCode - 1 MD5, 2 SHA1, 3 SHA224, 4 SHA256, 5 SHA384, 6 SHA512
//	privProtocolCode - 1 DES, 2 AES128, 3 AES192, 4 AES256
//	params           - timeout, retry and privKey overrides
func (e *Engine) GetV3(address string, port int, oids []string, securityLevel int, username string, authPassphrase string, authProtocolCode int, privProtocolCode int, params []string) []string {
	target, identity := e.userTarget(address, port, securityLevel, username, authPassphrase, authProtocolCode, privProtocolCode, params)
	return e.runGet(target, &identity, oids)
}

// Walk enumerates the subtree under startOID on a v1/v2c agent.
func (e *Engine) Walk(address string, port int, startOID string, params []string) []string {
	community, overrides := splitCommunityParams(params)
	target := BuildCommunityTarget(address, community, port, overrides)
	return e.runWalk(target, nil, startOID)
}

// WalkV3 is Walk with USM, parameters as in GetV3.
func (e *Engine) WalkV3(address string, port int, startOID string, securityLevel int, username string, authPassphrase string, authProtocolCode int, privProtocolCode int, params []string) []string {
	target, identity := e.userTarget(address, port, securityLevel, username, authPassphrase, authProtocolCode, privProtocolCode, params)
	return e.runWalk(target, &identity, startOID)
}

func (e *Engine) userTarget(address string, port int, securityLevel int, username string, authPassphrase string, authProtocolCode int, privProtocolCode int, params []string) (Target, UsmIdentity) {
	overrides := ParseOverrides(params)
	target := BuildUserTarget(address, securityLevel, username, port, overrides)
	identity := BuildUsmIdentity(SecurityLevelFromCode(securityLevel), username, authPassphrase, authProtocolCode, privProtocolCode, overrides)
	e.registry.RegisterSelection(authProtocolCode, privProtocolCode)
	return target, identity
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

func (e *Engine) runGet(target Target, identity *UsmIdentity, oids []string) (result []string) {
	started := time.Now()
	var callErr error
	defer func() {
		if r := recover(); r != nil {
			callErr = panicError(r)
			result = []string{classifyGet(target, callErr)}
		}
		e.finish("get", target, callErr, started, result)
	}()

	parsed, err := parseOIDList(oids)
	if err != nil {
		callErr = err
		return []string{classifyGet(target, err)}
	}
	s, err := OpenSession(target, identity, e.registry, e.logger)
	if err != nil {
		callErr = err
		return []string{classifyGet(target, err)}
	}
	defer s.Close()

	vbs, err := executeGet(s, parsed)
	if err != nil {
		callErr = err
		return []string{classifyGet(target, err)}
	}
	result = make([]string, 0, len(vbs))
	for _, vb := range vbs {
		result = append(result, Convert_Variable_To_String(vb.Var))
	}
	return result
}

func (e *Engine) runWalk(target Target, identity *UsmIdentity, startOID string) (result []string) {
	started := time.Now()
	var callErr error
	partial := false
	defer func() {
		if r := recover(); r != nil {
			callErr = panicError(r)
			result = append(result, classifyWalkFault(target, callErr))
		}
		if partial && callErr != nil {
			e.finishOutcome("walk", target, OutcomePartial, callErr, started, result)
			return
		}
		e.finish("walk", target, callErr, started, result)
	}()

	start, err := ParseOID(startOID)
	if err != nil {
		callErr = TargetError{Reason: err.Error()}
		return []string{classifyWalkFault(target, callErr)}
	}
	s, err := OpenSession(target, identity, e.registry, e.logger)
	if err != nil {
		callErr = err
		return []string{classifyWalkFault(target, err)}
	}
	defer s.Close()

	result = make([]string, 0)
	for _, step := range executeWalk(s, start) {
		if step.Err != nil {
			if callErr == nil {
				callErr = step.Err
			}
			result = append(result, classifyWalkStep(target, step.Err))
			continue
		}
		partial = true
		result = append(result, formatVarBind(step.VarBind))
	}
	return result
}

func (e *Engine) finish(operation string, target Target, err error, started time.Time, result []string) {
	e.finishOutcome(operation, target, outcomeOf(err), err, started, result)
}

func (e *Engine) finishOutcome(operation string, target Target, outcome string, err error, started time.Time, result []string) {
	took := time.Since(started)
	e.metrics.observe(operation, target.Version, outcome, took, result)
	if err != nil {
		e.logger.Warn("snmp "+operation+" failed",
			"target", target.Address.String(),
			"version", target.Version.String(),
			"outcome", outcome,
			"error", err)
		return
	}
	e.logger.Debug("snmp "+operation+" done",
		"target", target.Address.String(),
		"version", target.Version.String(),
		"entries", len(result),
		"took", took)
}
