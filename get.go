// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"fmt"
)

// parseOIDList converts the OID strings of a call, failing on the first bad one.
func parseOIDList(oids []string) ([][]int, error) {
	out := make([][]int, 0, len(oids))
	for _, o := range oids {
		oid, err := ParseOID(o)
		if err != nil {
			return nil, TargetError{Reason: err.Error()}
		}
		out = append(out, oid)
	}
	return out, nil
}

// executeGet sends one GET with a binding per OID and returns the bindings of
// the response in request order.
//
// A non-zero error-status becomes ProtocolStatusError. Varbind exceptions
// (noSuchObject, noSuchInstance, endOfMibView) are not errors here: they stay
// in place and render as their names.
func executeGet(s *Session, oids [][]int) ([]SNMPVarBind, error) {
	pdu, err := s.exchange(SNMP_PDU_GET, oids)
	if err != nil {
		return nil, err
	}
	if pdu.ErrorStatus != SNMP_ErrNoError {
		return nil, ProtocolStatusError{Status: int(pdu.ErrorStatus), Index: int(pdu.ErrorIndex)}
	}
	if len(pdu.VarBinds) != len(oids) {
		return nil, DecodeError{Err: fmt.Errorf("response carries %d bindings for %d requested", len(pdu.VarBinds), len(oids))}
	}
	return pdu.VarBinds, nil
}
