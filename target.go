// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"fmt"
	"strconv"
	"strings"
)

type SNMPVersion int

const (
	SNMPVersion1  SNMPVersion = 1
	SNMPVersion2c SNMPVersion = 2
	SNMPVersion3  SNMPVersion = 3
)

func (v SNMPVersion) String() string {
	switch v {
	case SNMPVersion1:
		return "v1"
	case SNMPVersion2c:
		return "v2c"
	case SNMPVersion3:
		return "v3"
	}
	return fmt.Sprintf("version(%d)", int(v))
}

// wire returns the msgVersion field value.
func (v SNMPVersion) wire() int {
	switch v {
	case SNMPVersion1:
		return snmpWireVersion1
	case SNMPVersion3:
		return snmpWireVersion3
	}
	return snmpWireVersion2c
}

type SecurityLevel int

const (
	NoAuthNoPriv SecurityLevel = 1
	AuthNoPriv   SecurityLevel = 2
	AuthPriv     SecurityLevel = 3
)

func (l SecurityLevel) String() string {
	switch l {
	case AuthNoPriv:
		return "authNoPriv"
	case AuthPriv:
		return "authPriv"
	}
	return "noAuthNoPriv"
}

// SecurityLevelFromCode maps 3 to AuthPriv, 2 to AuthNoPriv and anything else
// to NoAuthNoPriv.
func SecurityLevelFromCode(code int) SecurityLevel {
	switch code {
	case 3:
		return AuthPriv
	case 2:
		return AuthNoPriv
	}
	return NoAuthNoPriv
}

// TargetAddress is where requests go. Transport is always "udp".
type TargetAddress struct {
	Host      string
	Port      int
	Transport string
}

func (a TargetAddress) String() string {
	return fmt.Sprintf("%s:%s/%d", a.Transport, a.Host, a.Port)
}

// Security is either CommunitySecurity or UserSecurity.
type Security interface {
	securityModel() string
}

type CommunitySecurity struct {
	Community string
}

func (CommunitySecurity) securityModel() string { return "community" }

type UserSecurity struct {
	Username      string
	SecurityLevel SecurityLevel
}

func (UserSecurity) securityModel() string { return "usm" }

// Target is an addressable, versioned request target. It is a value: build a
// new one per call.
type Target struct {
	Address   TargetAddress
	Version   SNMPVersion
	TimeoutMs int
	Retries   int
	Security  Security
}

// OverrideParam is one "key=value" call parameter. Key is lower case.
type OverrideParam struct {
	Key   string
	Value string
}

// ParseOverrides splits "key=value" tokens. Keys are matched case
// insensitively; tokens without '=' are dropped.
func ParseOverrides(params []string) []OverrideParam {
	out := make([]OverrideParam, 0, len(params))
	for _, p := range params {
		key, value, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		out = append(out, OverrideParam{Key: strings.ToLower(strings.TrimSpace(key)), Value: strings.TrimSpace(value)})
	}
	return out
}

// firstOverrideValue returns the first value given for key.
func firstOverrideValue(overrides []OverrideParam, key string) (string, bool) {
	for _, o := range overrides {
		if o.Key == key {
			return o.Value, true
		}
	}
	return "", false
}

func versionFromOverride(value string) SNMPVersion {
	switch strings.ToLower(value) {
	case "1":
		return SNMPVersion1
	case "3":
		return SNMPVersion3
	}
	return SNMPVersion2c
}

// applyOverrides walks overrides in order so that the last one for a key
// wins. Values that are not integers, a timeout <= 0 and retry < 0 leave the
// field unchanged.
func applyOverrides(t *Target, overrides []OverrideParam, allowVersion bool) {
	for _, o := range overrides {
		switch o.Key {
		case "version":
			if allowVersion {
				t.Version = versionFromOverride(o.Value)
			}
		case "timeout":
			if ms, err := strconv.Atoi(o.Value); err == nil && ms > 0 {
				t.TimeoutMs = ms
			}
		case "retry":
			if n, err := strconv.Atoi(o.Value); err == nil && n >= 0 {
				t.Retries = n
			}
		}
	}
}

// BuildCommunityTarget builds a v1/v2c target. Defaults: v2c, 3000 ms, 1 retry.
// Recognised overrides: version, timeout, retry.
func BuildCommunityTarget(address string, community string, port int, overrides []OverrideParam) Target {
	t := Target{
		Address:   TargetAddress{Host: address, Port: port, Transport: "udp"},
		Version:   SNMPVersion2c,
		TimeoutMs: SNMP_DEFAULTTIMEOUT_MS,
		Retries:   SNMP_DEFAULTRETRY,
		Security:  CommunitySecurity{Community: community},
	}
	applyOverrides(&t, overrides, true)
	return t
}

// BuildUserTarget builds a v3 target. The version override does not apply.
func BuildUserTarget(address string, securityLevelCode int, username string, port int, overrides []OverrideParam) Target {
	t := Target{
		Address:   TargetAddress{Host: address, Port: port, Transport: "udp"},
		Version:   SNMPVersion3,
		TimeoutMs: SNMP_DEFAULTTIMEOUT_MS,
		Retries:   SNMP_DEFAULTRETRY,
		Security:  UserSecurity{Username: username, SecurityLevel: SecurityLevelFromCode(securityLevelCode)},
	}
	applyOverrides(&t, overrides, false)
	return t
}
