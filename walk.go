// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"errors"
)

// walkStep is one traversal result: a binding or the error of that step.
type walkStep struct {
	VarBind SNMPVarBind
	Err     error
}

// executeWalk enumerates the subtree under start with GETNEXT.
//
// The walk ends when the next OID leaves the subtree, on endOfMibView, on
// noSuchName from a v1 agent or after SNMP_MAXIMUMWALK steps. A binding with
// noSuchObject or noSuchInstance yields an error step and the walk goes on
// from its OID. Any other step error is recorded and ends the walk, since
// there is no OID to continue from.
func executeWalk(s *Session, start []int) []walkStep {
	var steps []walkStep
	current := start
	for a := 0; a < SNMP_MAXIMUMWALK; a++ {
		pdu, err := s.exchange(SNMP_PDU_GETNEXT, [][]int{current})
		if err != nil {
			return append(steps, walkStep{Err: err})
		}
		if pdu.ErrorStatus != SNMP_ErrNoError {
			if s.target.Version == SNMPVersion1 && pdu.ErrorStatus == SNMP_ErrNoSuchName {
				// v1 агент так сообщает о конце MIB
				return steps
			}
			return append(steps, walkStep{Err: ProtocolStatusError{Status: int(pdu.ErrorStatus), Index: int(pdu.ErrorIndex)}})
		}
		if len(pdu.VarBinds) == 0 {
			return append(steps, walkStep{Err: DecodeError{Err: errors.New("response without variable bindings")}})
		}

		val := pdu.VarBinds[0]
		exTag, isException := val.Var.Exception()
		if isException && exTag == tagERR_EndOfMib {
			return steps
		}
		//Проверяем не зациклились ли
		if CompareOID(val.OID, current) <= 0 {
			return append(steps, walkStep{Err: TraversalError{OID: val.OID, Reason: "OID is not increased: " + FormatOID(val.OID)}})
		}
		//Проверяем не вышли ли из ветки
		if !InSubTreeCheck(start, val.OID) {
			return steps
		}
		if isException {
			steps = append(steps, walkStep{Err: TraversalError{OID: val.OID, Reason: FormatOID(val.OID) + ": " + exceptionName(exTag)}})
		} else {
			steps = append(steps, walkStep{VarBind: val})
		}
		s.logger.Debug("snmp walk step", "oid", FormatOID(val.OID), "type", Convert_ClassTag_to_String(val.Var))
		current = val.OID
	}
	return steps
}
