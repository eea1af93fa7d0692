// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import "strings"

// UsmIdentity holds the USM credentials of one user. A zero protocol code
// means the field is absent for the security level.
type UsmIdentity struct {
	Username       string
	AuthProtocol   int
	AuthPassphrase string
	PrivProtocol   int
	PrivKey        string
}

func (u UsmIdentity) HasAuth() bool { return u.AuthProtocol != AUTH_PROTOCOL_NONE }
func (u UsmIdentity) HasPriv() bool { return u.PrivProtocol != PRIV_PROTOCOL_NONE }

func (u UsmIdentity) SecurityLevel() SecurityLevel {
	switch {
	case u.HasAuth() && u.HasPriv():
		return AuthPriv
	case u.HasAuth():
		return AuthNoPriv
	}
	return NoAuthNoPriv
}

// AuthProtocolFromCode maps 1..6 to MD5, SHA1, SHA224, SHA256, SHA384, SHA512.
// Any other code selects SHA512.
func AuthProtocolFromCode(code int) int {
	if code >= AUTH_PROTOCOL_MD5 && code <= AUTH_PROTOCOL_SHA512 {
		return code
	}
	return AUTH_PROTOCOL_SHA512
}

// PrivProtocolFromCode maps 1..4 to DES, AES128, AES192, AES256.
// Any other code selects AES256.
func PrivProtocolFromCode(code int) int {
	if code >= PRIV_PROTOCOL_DES && code <= PRIV_PROTOCOL_AES256 {
		return code
	}
	return PRIV_PROTOCOL_AES256
}

// AuthProtocolName returns the display name of an auth code, "none" for 0.
func AuthProtocolName(code int) string {
	if a, ok := builtinAuth(code); ok {
		return a.Name
	}
	return "none"
}

// PrivProtocolName returns the display name of a privacy code, "none" for 0.
func PrivProtocolName(code int) string {
	if p, ok := builtinPriv(code); ok {
		return p.Name()
	}
	return "none"
}

// AuthProtocolByName maps MD5, SHA (SHA1), SHA224 ... SHA512 to auth codes,
// ignoring case and dashes. Unknown names give 0, which BuildUsmIdentity
// resolves to SHA512.
func AuthProtocolByName(name string) int {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "")) {
	case "MD5":
		return AUTH_PROTOCOL_MD5
	case "SHA", "SHA1":
		return AUTH_PROTOCOL_SHA
	case "SHA224":
		return AUTH_PROTOCOL_SHA224
	case "SHA256":
		return AUTH_PROTOCOL_SHA256
	case "SHA384":
		return AUTH_PROTOCOL_SHA384
	case "SHA512":
		return AUTH_PROTOCOL_SHA512
	}
	return AUTH_PROTOCOL_NONE
}

// PrivProtocolByName is AuthProtocolByName for ciphers, AES means AES128.
func PrivProtocolByName(name string) int {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "")) {
	case "DES":
		return PRIV_PROTOCOL_DES
	case "AES", "AES128":
		return PRIV_PROTOCOL_AES128
	case "AES192":
		return PRIV_PROTOCOL_AES192
	case "AES256":
		return PRIV_PROTOCOL_AES256
	}
	return PRIV_PROTOCOL_NONE
}

// BuildUsmIdentity derives the identity for a security level.
//
// Parameters:
//
//	level            - security tier, decides which fields are filled
//	authProtocolCode - 1..6, out of range falls back to SHA512
//	privProtocolCode - 1..4, out of range falls back to AES256
//	overrides        - the first "privkey" replaces the privacy key, which
//	                   otherwise equals authPassphrase
func BuildUsmIdentity(level SecurityLevel, username string, authPassphrase string, authProtocolCode int, privProtocolCode int, overrides []OverrideParam) UsmIdentity {
	id := UsmIdentity{Username: username}
	if level != AuthNoPriv && level != AuthPriv {
		return id
	}
	id.AuthProtocol = AuthProtocolFromCode(authProtocolCode)
	id.AuthPassphrase = authPassphrase
	if level == AuthPriv {
		id.PrivProtocol = PrivProtocolFromCode(privProtocolCode)
		id.PrivKey = authPassphrase
		if pk, ok := firstOverrideValue(overrides, "privkey"); ok {
			id.PrivKey = pk
		}
	}
	return id
}
