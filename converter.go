// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// ParseOID converts dotted notation ("1.3.6.1.2.1.1.1.0" or ".1.3.6...")
// into OID components.
//
// The result must be encodable: at least two components, the first one 0..2
// and the second one below 40 when the first is 0 or 1.
func ParseOID(OIDStr string) (OID []int, err error) {
	OIDStr = strings.Trim(strings.TrimSpace(OIDStr), ".")
	if OIDStr == "" {
		return nil, fmt.Errorf("empty OID")
	}
	parts := strings.Split(OIDStr, ".")
	RetArray := make([]int, 0, len(parts))
	for _, OidStringVal := range parts {
		OidIntVal, convErr := strconv.ParseUint(OidStringVal, 10, 31)
		if convErr != nil {
			return nil, fmt.Errorf("invalid OID %q: component %q is not a number", OIDStr, OidStringVal)
		}
		RetArray = append(RetArray, int(OidIntVal))
	}
	if len(RetArray) < 2 {
		return nil, fmt.Errorf("invalid OID %q: need at least two components", OIDStr)
	}
	if RetArray[0] > 2 || (RetArray[0] < 2 && RetArray[1] >= 40) {
		return nil, fmt.Errorf("invalid OID %q: bad leading arcs", OIDStr)
	}
	return RetArray, nil
}

// FormatOID renders OID components in dotted notation without a leading dot.
func FormatOID(OID []int) string {
	var sb strings.Builder
	for i, val := range OID {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(val))
	}
	return sb.String()
}

// InSubTreeCheck reports whether OidCurrent lies under OidMain.
// An OID is not in its own subtree.
func InSubTreeCheck(OidMain []int, OidCurrent []int) bool {
	if len(OidCurrent) <= len(OidMain) {
		return false
	}
	for i, OidElement := range OidMain {
		if OidElement != OidCurrent[i] {
			return false
		}
	}
	return true
}

// CompareOID orders OIDs lexicographically: -1, 0 or 1.
func CompareOID(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// decodeOIDContent decodes the content octets of a BER OBJECT IDENTIFIER.
func decodeOIDContent(data []byte) ([]int, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty OID value")
	}
	var out []int
	val := 0
	for i, b := range data {
		val = val<<7 | int(b&0x7f)
		if b&0x80 != 0 {
			if i == len(data)-1 {
				return nil, fmt.Errorf("truncated OID value")
			}
			continue
		}
		if len(out) == 0 {
			// Первый субидентификатор кодирует два узла: X*40+Y
			switch {
			case val < 40:
				out = append(out, 0, val)
			case val < 80:
				out = append(out, 1, val-40)
			default:
				out = append(out, 2, val-80)
			}
		} else {
			out = append(out, val)
		}
		val = 0
	}
	return out, nil
}

// Convert_bytearray_to_int decodes a two's complement big-endian integer of
// up to 8 octets.
func Convert_bytearray_to_int(bytearray []byte) int64 {
	if len(bytearray) == 0 || len(bytearray) > 8 {
		return 0
	}
	var v int64
	if bytearray[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range bytearray {
		v = v<<8 | int64(b)
	}
	return v
}

// Convert_bytearray_to_uint decodes an unsigned big-endian integer. A leading
// zero octet (added by BER for values with the top bit set) is accepted.
func Convert_bytearray_to_uint(bytearray []byte) uint64 {
	if len(bytearray) > 8 && bytearray[0] == 0 {
		bytearray = bytearray[1:]
	}
	if len(bytearray) > 8 {
		return 0
	}
	var v uint64
	for _, b := range bytearray {
		v = v<<8 | uint64(b)
	}
	return v
}

func isAscii(datab []byte) (AsciiString bool, LastAsciSymbolIndex int) {
	FirstZeroPos := -1
	LastAscipos := 0
	hasPrintable := false
	for i, c := range datab {
		switch {
		case c >= 0x20 && c <= 0x7e:
			LastAscipos = i
			hasPrintable = true
		case c == 0x09 || c == 0x0a || c == 0x0d:
		case c == 0x00:
			if FirstZeroPos == -1 {
				FirstZeroPos = i
			}
		default:
			return false, LastAscipos
		}
	}
	// Нули внутри строки - это бинарные данные, а не строка с терминатором
	if FirstZeroPos > -1 && FirstZeroPos < LastAscipos {
		return false, LastAscipos
	}
	return hasPrintable, LastAscipos
}

func formatOctetString(data []byte) string {
	if ok, lastIndex := isAscii(data); ok {
		return string(data[:lastIndex+1])
	}
	return hex.EncodeToString(data)
}

func formatIPAddress(data []byte) string {
	if len(data) != 4 {
		return fmt.Sprintf("Invalid IP (len=%d): %s", len(data), hex.EncodeToString(data))
	}
	return net.IP(data).String()
}

// exceptionName returns the textual form of a varbind exception tag.
func exceptionName(tag int) string {
	switch tag {
	case tagERR_noSuchObject:
		return "noSuchObject"
	case tagERR_noSuchInstance:
		return "noSuchInstance"
	case tagERR_EndOfMib:
		return "endOfMibView"
	}
	return fmt.Sprintf("exception(%d)", tag)
}

// Convert_Variable_To_String renders a decoded value as text.
//
// OCTET STRING is printed as text when printable, hex otherwise. TimeTicks are
// printed as a duration, IpAddress in dotted quad, counters and gauges as
// unsigned decimals, OID values in dotted notation.
func Convert_Variable_To_String(Var SNMPVar) string {
	if Var.IsCompound {
		return hex.EncodeToString(Var.Value)
	}
	switch Var.ValueClass {
	case ASNber.ClassUniversal:
		switch Var.ValueType {
		case ASNber.TagInteger:
			return strconv.FormatInt(Convert_bytearray_to_int(Var.Value), 10)
		case ASNber.TagOctetString:
			return formatOctetString(Var.Value)
		case ASNber.TagNull:
			return "Null"
		case ASNber.TagOID:
			oid, err := decodeOIDContent(Var.Value)
			if err != nil {
				return hex.EncodeToString(Var.Value)
			}
			return FormatOID(oid)
		case ASNber.TagBitString:
			return hex.EncodeToString(Var.Value)
		default:
			return string(Var.Value)
		}
	case ASNber.ClassApplication:
		switch Var.ValueType {
		case SNMP_type_IPADDR:
			return formatIPAddress(Var.Value)
		case SNMP_type_TIMETICKS:
			ticks := Convert_bytearray_to_uint(Var.Value)
			return (time.Duration(ticks) * 10 * time.Millisecond).String()
		case SNMP_type_COUNTER32, SNMP_type_GAUGE32, SNMP_type_COUNTER64:
			return strconv.FormatUint(Convert_bytearray_to_uint(Var.Value), 10)
		case SNMP_type_OPAQUE:
			return hex.EncodeToString(Var.Value)
		}
	case ASNber.ClassContextSpecific:
		if tag, ok := Var.Exception(); ok {
			return exceptionName(tag)
		}
	}
	return hex.EncodeToString(Var.Value)
}

// Convert_ClassTag_to_String names the value type of a binding.
func Convert_ClassTag_to_String(Var SNMPVar) string {
	switch Var.ValueClass {
	case ASNber.ClassUniversal:
		switch Var.ValueType {
		case ASNber.TagInteger:
			return "INTEGER"
		case ASNber.TagOctetString:
			if ok, _ := isAscii(Var.Value); ok {
				return "OCTET STRING"
			}
			return "HEX STRING"
		case ASNber.TagNull:
			return "NULL"
		case ASNber.TagOID:
			return "OID"
		case ASNber.TagBitString:
			return "BITSTRING"
		}
		return "Unknown Universal"
	case ASNber.ClassApplication:
		switch Var.ValueType {
		case SNMP_type_IPADDR:
			return "IP ADDRESS"
		case SNMP_type_COUNTER32:
			return "COUNTER32"
		case SNMP_type_GAUGE32:
			return "GAUGE32"
		case SNMP_type_COUNTER64:
			return "COUNTER64"
		case SNMP_type_TIMETICKS:
			return "TIMETICKS"
		case SNMP_type_OPAQUE:
			return "OPAQUE"
		}
		return "Unknown APPLICATION"
	case ASNber.ClassContextSpecific:
		if tag, ok := Var.Exception(); ok {
			return exceptionName(tag)
		}
	}
	return "Unknown"
}

// formatVarBind renders a walk result entry: "<oid> = <value>".
func formatVarBind(vb SNMPVarBind) string {
	return FormatOID(vb.OID) + " = " + Convert_Variable_To_String(vb.Var)
}
