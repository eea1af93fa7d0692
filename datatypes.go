// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// Wire structures. Field order is the BER order, all fields must stay exported
// for the codec.

// SNMP_Packet_Community is a v1/v2c message.
type SNMP_Packet_Community struct {
	Version   int
	Community []byte
	PDU       ASNber.RawValue
}

// SNMP_Packet_PDU is the body of GET/GETNEXT/RESPONSE/REPORT PDUs.
// The tag is replaced by the context-specific PDU type on the wire.
type SNMP_Packet_PDU struct {
	RequestID      int32
	ErrorStatusRaw int32
	ErrorIndexRaw  int32
	VarBinds       []SNMP_Packet_VarBind
}

type SNMP_Packet_VarBind struct {
	RSnmpOID ASNber.ObjectIdentifier
	RSnmpVar ASNber.RawValue
}

// SNMPv3_Packet: msgSecurityParameters is an OCTET STRING wrapping the USM
// sequence, msgData is either a plain ScopedPDU or an encrypted OCTET STRING.
type SNMPv3_Packet struct {
	Version          int
	GlobalData       ASNber.RawValue
	SecuritySettings []byte
	PtData           ASNber.RawValue
}

type SNMPv3_GlobalData struct {
	MsgID            int32
	MsgMaxSize       int
	MsgFlag          []byte
	MsgSecurityModel int
}

type SNMPv3_SecSeq struct {
	AuthEng    []byte
	Boots      int32
	Time       int32
	User       []byte
	AuthParams []byte
	PrivParams []byte
}

type SNMPv3_ScopedPDU struct {
	ContextEngineId []byte
	ContextName     []byte
	PDU             ASNber.RawValue
}

// SNMPVar is a decoded varbind value: class/tag pair plus raw content octets.
type SNMPVar struct {
	ValueType  int
	ValueClass int
	IsCompound bool
	Value      []byte
}

// SNMPVarBind is a decoded variable binding.
type SNMPVarBind struct {
	OID []int
	Var SNMPVar
}

// SNMP_DecodedPDU is a response or report after parsing.
type SNMP_DecodedPDU struct {
	PDUType     int
	RequestID   int32
	ErrorStatus int32
	ErrorIndex  int32
	VarBinds    []SNMPVarBind
}

// Exception reports whether the value is one of noSuchObject, noSuchInstance
// or endOfMibView and returns its tag.
func (v SNMPVar) Exception() (tag int, ok bool) {
	if v.ValueClass == ASNber.ClassContextSpecific && !v.IsCompound && len(v.Value) == 0 {
		switch v.ValueType {
		case tagERR_noSuchObject, tagERR_noSuchInstance, tagERR_EndOfMib:
			return v.ValueType, true
		}
	}
	return 0, false
}

var snmpNullVar = ASNber.NullRawValue

func decodeVarBinds(raw []SNMP_Packet_VarBind) []SNMPVarBind {
	out := make([]SNMPVarBind, 0, len(raw))
	for _, vb := range raw {
		out = append(out, SNMPVarBind{
			OID: []int(vb.RSnmpOID),
			Var: SNMPVar{ValueType: vb.RSnmpVar.Tag, ValueClass: vb.RSnmpVar.Class, IsCompound: vb.RSnmpVar.IsCompound, Value: vb.RSnmpVar.Bytes},
		})
	}
	return out
}

func nullVarBinds(oids [][]int) []SNMP_Packet_VarBind {
	out := make([]SNMP_Packet_VarBind, 0, len(oids))
	for _, oid := range oids {
		out = append(out, SNMP_Packet_VarBind{RSnmpOID: ASNber.ObjectIdentifier(oid), RSnmpVar: snmpNullVar})
	}
	return out
}
