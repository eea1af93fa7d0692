// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// v3Header is everything outside the PDU that makeV3Message needs.
//
// Fields:
//
//	MsgID           - msgID of the header
//	Flags           - msgFlags octet (auth, priv, reportable bits)
//	EngineID        - msgAuthoritativeEngineID
//	Boots, Time     - msgAuthoritativeEngineBoots / Time
//	User            - msgUserName
//	Salt            - privacy salt counter value for this message
//	ContextEngineID - contextEngineID of the scoped PDU
//	ContextName     - contextName of the scoped PDU
type v3Header struct {
	MsgID           int32
	Flags           byte
	EngineID        []byte
	Boots           int32
	Time            int32
	User            string
	Salt            uint64
	ContextEngineID []byte
	ContextName     string
}

// makeV3Message seals a PDU into a v3 USM message.
//
// The scoped PDU is encrypted when the priv flag is set, then the whole
// message is encoded with zero-filled auth parameters, the HMAC is computed
// over it and the message is encoded again with the digest in place.
func makeV3Message(h v3Header, keys v3Keys, pdu ASNber.RawValue) ([]byte, error) {
	var SNMP_Packet SNMPv3_Packet
	var SNMP_SecuritySequence SNMPv3_SecSeq

	authenticated := h.Flags&(1<<msgFlag_Authenticated_Bit) != 0
	encrypted := h.Flags&(1<<msgFlag_Encrypted_Bit) != 0
	if authenticated && keys.Auth == nil {
		return nil, errors.New("auth flag set but auth protocol is not set")
	}
	if encrypted && (keys.Priv == nil || !authenticated) {
		return nil, errors.New("priv flag set but priv protocol is not set")
	}

	SNMP_Packet.Version = snmpWireVersion3
	GlobalData, err := ASNber.Marshal(SNMPv3_GlobalData{
		MsgID:            h.MsgID,
		MsgMaxSize:       SNMP_MSGMAXSIZE,
		MsgFlag:          []byte{h.Flags},
		MsgSecurityModel: msgSecurityModel_USM,
	})
	if err != nil {
		return nil, err
	}
	SNMP_Packet.GlobalData.FullBytes = GlobalData

	SNMP_SecuritySequence.AuthEng = h.EngineID
	SNMP_SecuritySequence.Boots = h.Boots
	SNMP_SecuritySequence.Time = h.Time
	SNMP_SecuritySequence.User = []byte(h.User)
	if authenticated {
		SNMP_SecuritySequence.AuthParams = make([]byte, keys.Auth.DigestLen)
	}

	V3PduMarshal, err := ASNber.Marshal(SNMPv3_ScopedPDU{h.ContextEngineID, []byte(h.ContextName), pdu})
	if err != nil {
		return nil, err
	}
	if encrypted {
		privParams, EncryptedPdu, encErr := keys.Priv.Encrypt(keys.PrivKey, h.Boots, h.Time, h.Salt, V3PduMarshal)
		if encErr != nil {
			return nil, fmt.Errorf("encryption error: %w", encErr)
		}
		SNMP_SecuritySequence.PrivParams = privParams
		SNMP_Packet.PtData.Bytes = EncryptedPdu
		SNMP_Packet.PtData.Tag = ASNber.TagOctetString
	} else {
		SNMP_Packet.PtData.FullBytes = V3PduMarshal
	}

	if SNMP_Packet.SecuritySettings, err = ASNber.Marshal(SNMP_SecuritySequence); err != nil {
		return nil, err
	}
	SNMPv3Packet, err := ASNber.Marshal(SNMP_Packet)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		return SNMPv3Packet, nil
	}

	SNMP_SecuritySequence.AuthParams = keys.Auth.Digest(SNMPv3Packet, keys.AuthKey)
	if SNMP_Packet.SecuritySettings, err = ASNber.Marshal(SNMP_SecuritySequence); err != nil {
		return nil, err
	}
	return ASNber.Marshal(SNMP_Packet)
}

// usmState is the call-scoped USM instance of a v3 session. It knows exactly
// one user and learns the remote engine on the first exchange.
type usmState struct {
	localEngineID []byte
	users         map[string]UsmIdentity
	user          UsmIdentity
	level         SecurityLevel

	auth *AuthProtocol
	priv PrivProtocol

	discovered bool
	engineID   []byte
	boots      int32
	time       int32
	keys       v3Keys
	msgID      int32
	salt       uint64
}

func newUsmState(localEngineID []byte, level SecurityLevel) *usmState {
	return &usmState{
		localEngineID: localEngineID,
		users:         make(map[string]UsmIdentity),
		level:         level,
		msgID:         rand.Int31n(1 << 30),
	}
}

// addUser registers the identity under its username. A name can be added once.
func (u *usmState) addUser(identity UsmIdentity, registry *ProtocolRegistry) error {
	if _, exists := u.users[identity.Username]; exists {
		return TargetError{Reason: fmt.Sprintf("USM user %q already registered", identity.Username)}
	}
	if u.level >= AuthNoPriv {
		if !identity.HasAuth() {
			return TargetError{Reason: fmt.Sprintf("security level %s needs an auth protocol", u.level)}
		}
		a, ok := registry.Auth(identity.AuthProtocol)
		if !ok {
			return TargetError{Reason: fmt.Sprintf("auth protocol %s is not registered", AuthProtocolName(identity.AuthProtocol))}
		}
		u.auth = &a
	}
	if u.level == AuthPriv {
		if !identity.HasPriv() {
			return TargetError{Reason: fmt.Sprintf("security level %s needs a privacy protocol", u.level)}
		}
		p, ok := registry.Priv(identity.PrivProtocol)
		if !ok {
			return TargetError{Reason: fmt.Sprintf("privacy protocol %s is not registered", PrivProtocolName(identity.PrivProtocol))}
		}
		u.priv = p
	}
	u.users[identity.Username] = identity
	u.user = identity
	return nil
}

func (u *usmState) flags() byte {
	f := byte(1 << msgFlag_Reportable_Bit)
	if u.level >= AuthNoPriv {
		f |= 1 << msgFlag_Authenticated_Bit
	}
	if u.level == AuthPriv {
		f |= 1 << msgFlag_Encrypted_Bit
	}
	return f
}

// localizeKeys binds the passphrases to the discovered engine.
// The privacy key is localized with the auth hash and lengthened when the
// cipher needs more octets than the hash yields.
func (u *usmState) localizeKeys() {
	u.keys = v3Keys{}
	if u.auth == nil {
		return
	}
	u.keys.Auth = u.auth
	u.keys.AuthKey = u.auth.LocalizedKey([]byte(u.user.AuthPassphrase), u.engineID)
	if u.priv == nil {
		return
	}
	Lkey := u.auth.LocalizedKey([]byte(u.user.PrivKey), u.engineID)
	u.keys.Priv = u.priv
	u.keys.PrivKey = u.auth.extendKey(Lkey, u.priv.KeyLen())
	u.salt = rand.Uint64()
}

// reportReason maps a USM report counter to its error text.
func reportReason(oid []int) string {
	switch {
	case slices.Equal(oid, oidUsmStatsUnknownUserNames):
		return "Unknown user name"
	case slices.Equal(oid, oidUsmStatsWrongDigests):
		return "Wrong digest"
	case slices.Equal(oid, oidUsmStatsDecryptionErrors):
		return "Decryption error"
	case slices.Equal(oid, oidSnmpUnknownContexts):
		return "Unknown context"
	case slices.Equal(oid, oidUsmStatsUnsupportedSecLevels):
		return "Unsupported security level"
	case slices.Equal(oid, oidUsmStatsNotInTimeWindows):
		return "Not in time window"
	case slices.Equal(oid, oidUsmStatsUnknownEngineIDs):
		return "Unknown engine ID"
	}
	return "Unknown report " + FormatOID(oid)
}

func reportError(pdu SNMP_DecodedPDU) error {
	if len(pdu.VarBinds) == 0 {
		return SecurityError{Reason: "empty report"}
	}
	oid := pdu.VarBinds[0].OID
	return SecurityError{ReportOID: oid, Reason: reportReason(oid)}
}

func isReportOf(pdu SNMP_DecodedPDU, oid []int) bool {
	return pdu.PDUType == SNMP_PDU_REPORT && len(pdu.VarBinds) > 0 && slices.Equal(pdu.VarBinds[0].OID, oid)
}

// sendV3 seals one request and waits for the answer with the same msgID.
// Boots and time of authenticated answers are taken over.
func (s *Session) sendV3(pduType int, oids [][]int, discovery bool) (SNMP_DecodedPDU, SNMPv3_SecSeq, error) {
	u := s.usm
	u.msgID++
	requestID := s.nextRequestID()
	pdu, err := makePDU(pduType, requestID, 0, 0, nullVarBinds(oids))
	if err != nil {
		return SNMP_DecodedPDU{}, SNMPv3_SecSeq{}, TargetError{Reason: "encode request: " + err.Error()}
	}
	h := v3Header{
		MsgID:           u.msgID,
		Flags:           u.flags(),
		EngineID:        u.engineID,
		Boots:           u.boots,
		Time:            u.time,
		User:            u.user.Username,
		ContextEngineID: u.engineID,
	}
	keys := u.keys
	if discovery {
		// Запрос обнаружения: пустой пользователь, noAuthNoPriv
		h.Flags = 1 << msgFlag_Reportable_Bit
		h.User = ""
		keys = v3Keys{}
	}
	if h.Flags&(1<<msgFlag_Encrypted_Bit) != 0 {
		u.salt++
		h.Salt = u.salt
	}
	packet, err := makeV3Message(h, keys, pdu)
	if err != nil {
		return SNMP_DecodedPDU{}, SNMPv3_SecSeq{}, TargetError{Reason: "encode request: " + err.Error()}
	}

	var sec SNMPv3_SecSeq
	msgID := h.MsgID
	decoded, err := s.roundTrip(packet, requestID, func(payload []byte) (SNMP_DecodedPDU, error) {
		env, perr := unpackV3(payload)
		if perr != nil {
			return SNMP_DecodedPDU{}, DecodeError{Err: perr}
		}
		if env.Global.MsgID != msgID {
			//Принял ответ но это дубликат или неправильный ID
			return SNMP_DecodedPDU{}, errMismatch
		}
		_, pdu, perr := env.open(keys)
		if perr != nil {
			return pdu, perr
		}
		if pdu.PDUType != SNMP_PDU_REPORT {
			if pdu.RequestID != requestID {
				return pdu, errMismatch
			}
			if h.Flags&(1<<msgFlag_Authenticated_Bit) != 0 && !env.Authenticated() {
				return pdu, SecurityError{Reason: "unauthenticated response to an authenticated request"}
			}
		}
		sec = env.Sec
		return pdu, nil
	})
	return decoded, sec, err
}

// discoverEngine learns the authoritative engine ID, boots and time from the
// unknownEngineID report and localizes the keys.
func (s *Session) discoverEngine() error {
	u := s.usm
	pdu, sec, err := s.sendV3(SNMP_PDU_GET, [][]int{oidSysDescr0}, true)
	if err != nil {
		return err
	}
	if len(sec.AuthEng) == 0 {
		if pdu.PDUType == SNMP_PDU_REPORT {
			return reportError(pdu)
		}
		return SecurityError{Reason: "engine ID discovery failed: empty engine ID"}
	}
	u.engineID = sec.AuthEng
	u.boots = sec.Boots
	u.time = sec.Time
	u.localizeKeys()
	u.discovered = true
	s.logger.Debug("snmp engine discovered",
		"target", s.target.Address.String(),
		"engine_id", hex.EncodeToString(u.engineID),
		"local_engine_id", hex.EncodeToString(u.localEngineID),
		"boots", u.boots,
		"time", u.time)
	return nil
}

// exchangeV3 runs one request. Discovery happens on the first call of the
// session; a notInTimeWindow report resynchronizes and resends once.
func (s *Session) exchangeV3(pduType int, oids [][]int) (SNMP_DecodedPDU, error) {
	u := s.usm
	if !u.discovered {
		if err := s.discoverEngine(); err != nil {
			return SNMP_DecodedPDU{}, err
		}
	}
	pdu, sec, err := s.sendV3(pduType, oids, false)
	if err != nil {
		return pdu, err
	}
	if isReportOf(pdu, oidUsmStatsNotInTimeWindows) {
		// Некоторые агенты при обнаружении не присылают Boots и Time,
		// правильные значения приходят вместе с notInTimeWindow
		u.boots = sec.Boots
		u.time = sec.Time
		s.logger.Debug("snmp time window resync", "target", s.target.Address.String(), "boots", u.boots, "time", u.time)
		if pdu, sec, err = s.sendV3(pduType, oids, false); err != nil {
			return pdu, err
		}
	}
	if pdu.PDUType == SNMP_PDU_REPORT {
		return pdu, reportError(pdu)
	}
	if sec.Boots > 0 || sec.Time > 0 {
		u.boots = sec.Boots
		u.time = sec.Time
	}
	return pdu, nil
}
