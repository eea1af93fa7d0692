// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"errors"
	"fmt"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// makePDU encodes a PDU body and retags it with the context-specific PDU type.
func makePDU(pduType int, requestID int32, errorStatus int32, errorIndex int32, varBinds []SNMP_Packet_VarBind) (ASNber.RawValue, error) {
	var pmval ASNber.RawValue
	pduEncoded, err := ASNber.Marshal(SNMP_Packet_PDU{requestID, errorStatus, errorIndex, varBinds})
	if err != nil {
		return pmval, err
	}
	//Тип составной записи - класс Context-Specified
	//Тег зависит от запроса
	pmval.Class = ASNber.ClassContextSpecific
	pmval.IsCompound = true
	pmval.Tag = pduType

	//Извлекаем данные (без TAG LEN)
	PureData, ExErr := ASNber.ExtractDataWOTagAndLen(pduEncoded)
	if ExErr != nil {
		return pmval, ExErr
	}
	pmval.Bytes = PureData
	return pmval, nil
}

// makeCommunityPacket builds a complete v1 or v2c message.
func makeCommunityPacket(version SNMPVersion, community string, pdu ASNber.RawValue) ([]byte, error) {
	if version != SNMPVersion1 && version != SNMPVersion2c {
		return nil, fmt.Errorf("unsupported SNMP version %s for community message", version)
	}
	return ASNber.Marshal(SNMP_Packet_Community{version.wire(), []byte(community), pdu})
}

// exchangeCommunity sends one v1/v2c request and waits for the matching
// response.
func (s *Session) exchangeCommunity(pduType int, oids [][]int) (SNMP_DecodedPDU, error) {
	cs, ok := s.target.Security.(CommunitySecurity)
	if !ok {
		return SNMP_DecodedPDU{}, TargetError{Reason: "community target without community security"}
	}
	requestID := s.nextRequestID()
	pdu, err := makePDU(pduType, requestID, 0, 0, nullVarBinds(oids))
	if err != nil {
		return SNMP_DecodedPDU{}, TargetError{Reason: "encode request: " + err.Error()}
	}
	packet, err := makeCommunityPacket(s.target.Version, cs.Community, pdu)
	if err != nil {
		return SNMP_DecodedPDU{}, TargetError{Reason: "encode request: " + err.Error()}
	}

	return s.roundTrip(packet, requestID, func(payload []byte) (SNMP_DecodedPDU, error) {
		pkt, decoded, perr := receiverCommunityParser(payload)
		if perr != nil {
			return decoded, perr
		}
		if pkt.Version != s.target.Version.wire() || decoded.RequestID != requestID {
			//Чужой ответ или дубликат
			return decoded, errMismatch
		}
		if decoded.PDUType != SNMP_PDU_RESPONSE {
			return decoded, DecodeError{Err: fmt.Errorf("unexpected PDU type %d in response", decoded.PDUType)}
		}
		return decoded, nil
	})
}

var errMismatch = errors.New("response does not match request")
