// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"slices"
	"sync"
)

// ProtocolRegistry is the table of auth and privacy implementations available
// to sessions. One registry is shared by all calls of an Engine.
//
// Registration is a set union: adding an algorithm twice is a no-op and
// nothing is ever removed, so concurrent calls only grow the table.
type ProtocolRegistry struct {
	mu   sync.RWMutex
	auth map[int]AuthProtocol
	priv map[int]PrivProtocol
}

// NewProtocolRegistry returns an empty registry. Algorithms are added on
// demand by RegisterSelection and RegisterFor or up front with
// AddDefaultProtocols.
func NewProtocolRegistry() *ProtocolRegistry {
	return &ProtocolRegistry{
		auth: make(map[int]AuthProtocol),
		priv: make(map[int]PrivProtocol),
	}
}

func builtinAuth(code int) (AuthProtocol, bool) {
	for _, a := range defaultAuthProtocols {
		if a.Code == code {
			return a, true
		}
	}
	return AuthProtocol{}, false
}

func builtinPriv(code int) (PrivProtocol, bool) {
	for _, p := range defaultPrivProtocols() {
		if p.Code() == code {
			return p, true
		}
	}
	return nil, false
}

// AddAuthProtocol registers one built-in auth algorithm by code.
// Unknown codes are ignored.
func (r *ProtocolRegistry) AddAuthProtocol(code int) {
	a, ok := builtinAuth(code)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.auth[code]; !exists {
		r.auth[code] = a
	}
}

// AddPrivProtocol registers one built-in privacy cipher by code.
// Unknown codes are ignored.
func (r *ProtocolRegistry) AddPrivProtocol(code int) {
	p, ok := builtinPriv(code)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.priv[code]; !exists {
		r.priv[code] = p
	}
}

// AddDefaultProtocols registers every built-in auth and privacy algorithm.
func (r *ProtocolRegistry) AddDefaultProtocols() {
	privs := defaultPrivProtocols()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range defaultAuthProtocols {
		if _, exists := r.auth[a.Code]; !exists {
			r.auth[a.Code] = a
		}
	}
	for _, p := range privs {
		if _, exists := r.priv[p.Code()]; !exists {
			r.priv[p.Code()] = p
		}
	}
}

// RegisterFor makes the algorithms of an identity available.
// An identity without auth needs nothing.
func (r *ProtocolRegistry) RegisterFor(identity UsmIdentity) {
	if !identity.HasAuth() {
		return
	}
	r.addAuthSelection(identity.AuthProtocol)
	if identity.HasPriv() {
		r.AddPrivProtocol(identity.PrivProtocol)
	}
}

// RegisterSelection registers by the protocol codes a caller selected, whatever
// the security level of the call. Codes are resolved as in BuildUsmIdentity,
// so an out of range auth code pulls the default set.
//
// MD5 and SHA1 register exactly that algorithm. Every other auth selection,
// the SHA-2 family included, registers the full default set. The selected
// privacy cipher is registered on its own.
func (r *ProtocolRegistry) RegisterSelection(authProtocolCode int, privProtocolCode int) {
	r.addAuthSelection(AuthProtocolFromCode(authProtocolCode))
	r.AddPrivProtocol(PrivProtocolFromCode(privProtocolCode))
}

func (r *ProtocolRegistry) addAuthSelection(code int) {
	switch code {
	case AUTH_PROTOCOL_MD5, AUTH_PROTOCOL_SHA:
		r.AddAuthProtocol(code)
	default:
		r.AddDefaultProtocols()
	}
}

// Auth looks up a registered auth algorithm.
func (r *ProtocolRegistry) Auth(code int) (AuthProtocol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.auth[code]
	return a, ok
}

// Priv looks up a registered privacy cipher.
func (r *ProtocolRegistry) Priv(code int) (PrivProtocol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.priv[code]
	return p, ok
}

// AuthCodes returns the registered auth codes in ascending order.
func (r *ProtocolRegistry) AuthCodes() []int {
	r.mu.RLock()
	codes := make([]int, 0, len(r.auth))
	for c := range r.auth {
		codes = append(codes, c)
	}
	r.mu.RUnlock()
	slices.Sort(codes)
	return codes
}

// PrivCodes returns the registered privacy codes in ascending order.
func (r *ProtocolRegistry) PrivCodes() []int {
	r.mu.RLock()
	codes := make([]int, 0, len(r.priv))
	for c := range r.priv {
		codes = append(codes, c)
	}
	r.mu.RUnlock()
	slices.Sort(codes)
	return codes
}
