// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

// Application class tags (RFC 2578)
const (
	SNMP_type_IPADDR    = 0
	SNMP_type_COUNTER32 = 1
	SNMP_type_GAUGE32   = 2
	SNMP_type_TIMETICKS = 3
	SNMP_type_OPAQUE    = 4
	SNMP_type_COUNTER64 = 6
)

const (
	SNMP_MAXIMUMWALK = 1000000
	SNMP_BUFFERSIZE  = 65535
	SNMP_MSGMAXSIZE  = 1360

	SNMP_DEFAULTTIMEOUT_MS = 3000
	SNMP_DEFAULTRETRY      = 1
)

// Varbind exceptions (context-specific, primitive, zero length)
const (
	tagERR_noSuchObject   = 0
	tagERR_noSuchInstance = 1
	tagERR_EndOfMib       = 2
)

const (
	msgFlag_Reportable_Bit    = 2
	msgFlag_Encrypted_Bit     = 1
	msgFlag_Authenticated_Bit = 0
)

const msgSecurityModel_USM = 3

// PDU tags, context-specific class
const (
	SNMP_PDU_GET      = 0
	SNMP_PDU_GETNEXT  = 1
	SNMP_PDU_RESPONSE = 2
	SNMP_PDU_REPORT   = 8
)

// Значения поля version в пакете
const (
	snmpWireVersion1  = 0
	snmpWireVersion2c = 1
	snmpWireVersion3  = 3
)

// Auth protocol codes accepted by GetV3/WalkV3
const (
	AUTH_PROTOCOL_NONE   = 0
	AUTH_PROTOCOL_MD5    = 1
	AUTH_PROTOCOL_SHA    = 2
	AUTH_PROTOCOL_SHA224 = 3
	AUTH_PROTOCOL_SHA256 = 4
	AUTH_PROTOCOL_SHA384 = 5
	AUTH_PROTOCOL_SHA512 = 6
)

// Privacy protocol codes accepted by GetV3/WalkV3
const (
	PRIV_PROTOCOL_NONE   = 0
	PRIV_PROTOCOL_DES    = 1
	PRIV_PROTOCOL_AES128 = 2
	PRIV_PROTOCOL_AES192 = 3
	PRIV_PROTOCOL_AES256 = 4
)

// USM report counters (RFC 3414, RFC 3413)
var (
	oidUsmStatsUnsupportedSecLevels = []int{1, 3, 6, 1, 6, 3, 15, 1, 1, 1, 0}
	oidUsmStatsNotInTimeWindows     = []int{1, 3, 6, 1, 6, 3, 15, 1, 1, 2, 0}
	oidUsmStatsUnknownUserNames     = []int{1, 3, 6, 1, 6, 3, 15, 1, 1, 3, 0}
	oidUsmStatsUnknownEngineIDs     = []int{1, 3, 6, 1, 6, 3, 15, 1, 1, 4, 0}
	oidUsmStatsWrongDigests         = []int{1, 3, 6, 1, 6, 3, 15, 1, 1, 5, 0}
	oidUsmStatsDecryptionErrors     = []int{1, 3, 6, 1, 6, 3, 15, 1, 1, 6, 0}
	oidSnmpUnknownContexts          = []int{1, 3, 6, 1, 6, 3, 12, 1, 5, 0}
	oidSysDescr0                    = []int{1, 3, 6, 1, 2, 1, 1, 1, 0}
)

// PDU error-status (RFC 3416)
const (
	SNMP_ErrNoError             = 0
	SNMP_ErrTooBig              = 1
	SNMP_ErrNoSuchName          = 2
	SNMP_ErrBadValue            = 3
	SNMP_ErrReadOnly            = 4
	SNMP_ErrGenErr              = 5
	SNMP_ErrNoAccess            = 6
	SNMP_ErrWrongType           = 7
	SNMP_ErrWrongLength         = 8
	SNMP_ErrWrongEncoding       = 9
	SNMP_ErrWrongValue          = 10
	SNMP_ErrNoCreation          = 11
	SNMP_ErrInconsistentValue   = 12
	SNMP_ErrResourceUnavailable = 13
	SNMP_ErrCommitFailed        = 14
	SNMP_ErrUndoFailed          = 15
	SNMP_ErrAuthorizationError  = 16
	SNMP_ErrNotWritable         = 17
	SNMP_ErrInconsistentName    = 18
)

// Result codes, see errors.go
const (
	CodeGetNoResponse      = "G001"
	CodeGetFault           = "G002"
	CodeGetStatus          = "G003"
	CodeGetV3Error         = "GV01"
	CodeGetV3NoResponse    = "GV02"
	CodeGetV3Status        = "GV03"
	CodeGetV3Fault         = "GV04"
	CodeWalkStep           = "W001"
	CodeWalkFault          = "W002"
	CodeWalkV3Step         = "WV02"
	CodeWalkV3Fault        = "WV03"
	walkTimeoutStepMessage = "Request timed out."
)
