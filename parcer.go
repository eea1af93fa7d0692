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

// decodePDU parses a context-specific PDU into its fields.
func decodePDU(raw ASNber.RawValue) (SNMP_DecodedPDU, error) {
	var decoded SNMP_DecodedPDU
	var pdu1 SNMP_Packet_PDU
	if raw.Class != ASNber.ClassContextSpecific || !raw.IsCompound {
		return decoded, fmt.Errorf("unexpected PDU class %d tag %d", raw.Class, raw.Tag)
	}
	if len(raw.FullBytes) == 0 {
		return decoded, errors.New("Received PDU Not Found")
	}
	//Unmarshal не понимает Context-Specific тег PDU, а по сути это Sequence.
	//Работаем с копией, чтобы не портить буфер приема
	body := make([]byte, len(raw.FullBytes))
	copy(body, raw.FullBytes)
	body[0] = 0x30
	if _, err := ASNber.Unmarshal(body, &pdu1); err != nil {
		return decoded, err
	}
	decoded.PDUType = raw.Tag
	decoded.RequestID = pdu1.RequestID
	decoded.ErrorStatus = pdu1.ErrorStatusRaw
	decoded.ErrorIndex = pdu1.ErrorIndexRaw
	decoded.VarBinds = decodeVarBinds(pdu1.VarBinds)
	return decoded, nil
}

// receiverCommunityParser decodes a v1/v2c message.
func receiverCommunityParser(packet []byte) (SNMP_Packet_Community, SNMP_DecodedPDU, error) {
	var vs SNMP_Packet_Community
	if _, err := ASNber.Unmarshal(packet, &vs); err != nil {
		return vs, SNMP_DecodedPDU{}, DecodeError{Err: err}
	}
	if vs.Version != snmpWireVersion1 && vs.Version != snmpWireVersion2c {
		return vs, SNMP_DecodedPDU{}, errMismatch
	}
	decoded, err := decodePDU(vs.PDU)
	if err != nil {
		return vs, decoded, DecodeError{Err: err}
	}
	return vs, decoded, nil
}

// v3Envelope is a v3 message with its header decoded and the scoped PDU
// still protected.
type v3Envelope struct {
	raw    []byte
	packet SNMPv3_Packet
	Global SNMPv3_GlobalData
	Sec    SNMPv3_SecSeq
}

func (e v3Envelope) flag(bit uint) bool {
	return len(e.Global.MsgFlag) > 0 && e.Global.MsgFlag[0]&(1<<bit) != 0
}

func (e v3Envelope) Authenticated() bool { return e.flag(msgFlag_Authenticated_Bit) }
func (e v3Envelope) Encrypted() bool     { return e.flag(msgFlag_Encrypted_Bit) }

// unpackV3 decodes the header and USM parameters of a v3 message.
func unpackV3(udppayload []byte) (v3Envelope, error) {
	env := v3Envelope{raw: udppayload}
	//Прасим payload в структуку
	if _, err := ASNber.Unmarshal(udppayload, &env.packet); err != nil {
		return env, err
	}
	if env.packet.Version != snmpWireVersion3 {
		return env, fmt.Errorf("SNMP protocol version: %d is not 3", env.packet.Version)
	}
	if _, err := ASNber.Unmarshal(env.packet.GlobalData.FullBytes, &env.Global); err != nil {
		return env, err
	}
	if env.Global.MsgSecurityModel != msgSecurityModel_USM {
		return env, fmt.Errorf("security model %d is not USM", env.Global.MsgSecurityModel)
	}
	if _, err := ASNber.Unmarshal(env.packet.SecuritySettings, &env.Sec); err != nil {
		return env, err
	}
	return env, nil
}

// v3Keys are the localized keys used to open or seal a message.
// A nil Auth or Priv means the level does not use it.
type v3Keys struct {
	Auth    *AuthProtocol
	AuthKey []byte
	Priv    PrivProtocol
	PrivKey []byte
}

// open verifies and decrypts the scoped PDU.
func (e v3Envelope) open(keys v3Keys) (SNMPv3_ScopedPDU, SNMP_DecodedPDU, error) {
	var scoped SNMPv3_ScopedPDU
	if e.Authenticated() {
		if keys.Auth == nil {
			return scoped, SNMP_DecodedPDU{}, SecurityError{Reason: "authenticated message received without an auth key"}
		}
		digver, err := keys.Auth.verifyDigest(e.raw, keys.AuthKey)
		if err != nil {
			return scoped, SNMP_DecodedPDU{}, DecodeError{Err: err}
		}
		if !digver {
			return scoped, SNMP_DecodedPDU{}, SecurityError{Reason: "Authentication failure: wrong digest in response"}
		}
	}

	if e.Encrypted() {
		if !e.Authenticated() || keys.Priv == nil {
			return scoped, SNMP_DecodedPDU{}, SecurityError{Reason: "encrypted message received without a privacy key"}
		}
		if e.packet.PtData.Tag != ASNber.TagOctetString {
			return scoped, SNMP_DecodedPDU{}, DecodeError{Err: errors.New("encrypted PDU is not an OCTET STRING")}
		}
		DecryptedPDU, err := keys.Priv.Decrypt(keys.PrivKey, e.Sec.Boots, e.Sec.Time, e.Sec.PrivParams, e.packet.PtData.Bytes)
		if err != nil {
			return scoped, SNMP_DecodedPDU{}, SecurityError{Reason: "Decryption error: " + err.Error()}
		}
		if _, err = ASNber.Unmarshal(DecryptedPDU, &scoped); err != nil {
			return scoped, SNMP_DecodedPDU{}, SecurityError{Reason: "Decryption error: " + err.Error()}
		}
	} else {
		//Данные не зашифрованы
		if _, err := ASNber.Unmarshal(e.packet.PtData.FullBytes, &scoped); err != nil {
			return scoped, SNMP_DecodedPDU{}, DecodeError{Err: err}
		}
	}

	decoded, err := decodePDU(scoped.PDU)
	if err != nil {
		return scoped, decoded, DecodeError{Err: err}
	}
	return scoped, decoded, nil
}
