//go:build !integration

// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"testing"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
	"github.com/gosnmp/gosnmp"
)

// Тестовые агенты на 127.0.0.1. Каждый обслуживает запросы по одному в
// своей горутине и закрывается вместе с тестом.

func listenLocal(t *testing.T) (net.PacketConn, int) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, conn.LocalAddr().(*net.UDPAddr).Port
}

// silentPort returns a bound port that never answers.
func silentPort(t *testing.T) int {
	_, port := listenLocal(t)
	return port
}

// closedPort returns a port nobody listens on; writes to it are refused.
func closedPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	conn.Close()
	return port
}

func serveUDP(conn net.PacketConn, handle func([]byte) []byte) {
	buf := make([]byte, 65535)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return
		}
		if out := handle(buf[:n]); out != nil {
			_, _ = conn.WriteTo(out, addr)
		}
	}
}

func mustOID(s string) []int {
	oid, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return oid
}

// systemMIB is a sorted set of bindings shared by the agents.
var systemMIB = []gosnmp.SnmpPDU{
	{Name: ".1.3.6.1.2.1.1.1.0", Type: gosnmp.OctetString, Value: "Linux sw1 5.15"},
	{Name: ".1.3.6.1.2.1.1.2.0", Type: gosnmp.ObjectIdentifier, Value: ".1.3.6.1.4.1.8072.3.2.10"},
	{Name: ".1.3.6.1.2.1.1.3.0", Type: gosnmp.TimeTicks, Value: uint32(123456)},
	{Name: ".1.3.6.1.2.1.1.5.0", Type: gosnmp.OctetString, Value: "sw1"},
	{Name: ".1.3.6.1.2.1.1.7.0", Type: gosnmp.Integer, Value: 72},
	{Name: ".1.3.6.1.2.1.2.1.0", Type: gosnmp.Integer, Value: 4},
}

// communityAgent answers v1/v2c GET and GETNEXT, encoded with gosnmp.
type communityAgent struct {
	community string
	mib       []gosnmp.SnmpPDU
	dropFirst int32  // сколько первых запросов проигнорировать
	loopAt    string // GETNEXT от этого OID возвращает его же
	failAt    string // GETNEXT от этого OID отвечает genErr
	requests  atomic.Int32
}

func startCommunityAgent(t *testing.T, a *communityAgent) int {
	if a.mib == nil {
		a.mib = systemMIB
	}
	conn, port := listenLocal(t)
	go serveUDP(conn, a.handle)
	return port
}

func (a *communityAgent) lookup(oid []int) (gosnmp.SnmpPDU, bool) {
	for _, p := range a.mib {
		if CompareOID(mustOID(p.Name), oid) == 0 {
			return p, true
		}
	}
	return gosnmp.SnmpPDU{}, false
}

func (a *communityAgent) next(oid []int) (gosnmp.SnmpPDU, bool) {
	for _, p := range a.mib {
		if CompareOID(mustOID(p.Name), oid) > 0 {
			return p, true
		}
	}
	return gosnmp.SnmpPDU{}, false
}

func (a *communityAgent) handle(payload []byte) []byte {
	if a.requests.Add(1) <= a.dropFirst {
		return nil
	}
	req, err := (&gosnmp.GoSNMP{}).SnmpDecodePacket(payload)
	if err != nil || req.Community != a.community {
		return nil
	}
	out, err := a.answer(req).MarshalMsg()
	if err != nil {
		return nil
	}
	return out
}

func (a *communityAgent) answer(req *gosnmp.SnmpPacket) *gosnmp.SnmpPacket {
	resp := &gosnmp.SnmpPacket{
		Version:   req.Version,
		Community: req.Community,
		PDUType:   gosnmp.GetResponse,
		RequestID: req.RequestID,
	}
	fail := func(status gosnmp.SNMPError, index int) *gosnmp.SnmpPacket {
		resp.Error = status
		resp.ErrorIndex = uint8(index)
		resp.Variables = req.Variables
		return resp
	}
	for i, v := range req.Variables {
		oid := mustOID(v.Name)
		var (
			p     gosnmp.SnmpPDU
			found bool
		)
		switch req.PDUType {
		case gosnmp.GetRequest:
			p, found = a.lookup(oid)
		case gosnmp.GetNextRequest:
			switch FormatOID(oid) {
			case a.loopAt:
				p, found = gosnmp.SnmpPDU{Name: v.Name, Type: gosnmp.OctetString, Value: "again"}, true
			case a.failAt:
				return fail(gosnmp.GenErr, i+1)
			default:
				p, found = a.next(oid)
			}
		default:
			return fail(gosnmp.GenErr, i+1)
		}
		if !found {
			if req.Version == gosnmp.Version1 {
				return fail(gosnmp.NoSuchName, i+1)
			}
			p = gosnmp.SnmpPDU{Name: v.Name, Type: gosnmp.NoSuchObject}
			if req.PDUType == gosnmp.GetNextRequest {
				p.Type = gosnmp.EndOfMibView
			}
		}
		resp.Variables = append(resp.Variables, p)
	}
	return resp
}

// usmAgent is an authoritative SNMPv3 engine with a single user. It seals
// its answers with the same code the client uses; TestUsmAgent_GoSNMPClient
// checks it against an independent client.
type usmAgent struct {
	engineID []byte
	boots    int32
	time     int32
	user     UsmIdentity
	keys     v3Keys
	mib      []SNMP_Packet_VarBind
	salt     uint64

	hideTimeOnDiscovery bool // отдавать boots=0, time=0 при обнаружении
	timeWindowReports   atomic.Int32
	requests            atomic.Int32
}

func octetVarBind(oid string, value string) SNMP_Packet_VarBind {
	return SNMP_Packet_VarBind{
		RSnmpOID: ASNber.ObjectIdentifier(mustOID(oid)),
		RSnmpVar: ASNber.RawValue{Class: ASNber.ClassUniversal, Tag: ASNber.TagOctetString, Bytes: []byte(value)},
	}
}

func counterVarBind(oid []int, value byte) SNMP_Packet_VarBind {
	return SNMP_Packet_VarBind{
		RSnmpOID: ASNber.ObjectIdentifier(oid),
		RSnmpVar: ASNber.RawValue{Class: ASNber.ClassApplication, Tag: SNMP_type_COUNTER32, Bytes: []byte{value}},
	}
}

func exceptionVarBind(oid []int, tag int) SNMP_Packet_VarBind {
	return SNMP_Packet_VarBind{
		RSnmpOID: ASNber.ObjectIdentifier(oid),
		RSnmpVar: ASNber.RawValue{Class: ASNber.ClassContextSpecific, Tag: tag},
	}
}

var usmMIB = []SNMP_Packet_VarBind{
	octetVarBind("1.3.6.1.2.1.1.1.0", "Linux sw1 5.15"),
	octetVarBind("1.3.6.1.2.1.1.4.0", "noc@example.net"),
	octetVarBind("1.3.6.1.2.1.1.5.0", "sw1"),
	octetVarBind("1.3.6.1.2.1.1.6.0", "rack 4"),
	octetVarBind("1.3.6.1.2.1.2.1.0", "ifNumber"),
}

func startUSMAgent(t *testing.T, a *usmAgent) int {
	if a.engineID == nil {
		a.engineID = []byte{0x80, 0x00, 0x1f, 0x88, 0x80, 0xde, 0xad, 0xbe, 0xef}
	}
	if a.boots == 0 {
		a.boots, a.time = 5, 1000
	}
	if a.mib == nil {
		a.mib = usmMIB
	}
	if a.user.HasAuth() {
		auth, _ := builtinAuth(a.user.AuthProtocol)
		a.keys.Auth = &auth
		a.keys.AuthKey = auth.LocalizedKey([]byte(a.user.AuthPassphrase), a.engineID)
		if a.user.HasPriv() {
			priv, _ := builtinPriv(a.user.PrivProtocol)
			a.keys.Priv = priv
			a.keys.PrivKey = auth.extendKey(auth.LocalizedKey([]byte(a.user.PrivKey), a.engineID), priv.KeyLen())
		}
	}
	conn, port := listenLocal(t)
	go serveUDP(conn, a.handle)
	return port
}

func (a *usmAgent) reply(env v3Envelope, flags byte, keys v3Keys, pduType int, requestID int32, vbs []SNMP_Packet_VarBind) []byte {
	pdu, err := makePDU(pduType, requestID, 0, 0, vbs)
	if err != nil {
		return nil
	}
	a.salt++
	out, err := makeV3Message(v3Header{
		MsgID:           env.Global.MsgID,
		Flags:           flags,
		EngineID:        a.engineID,
		Boots:           a.boots,
		Time:            a.time,
		User:            string(env.Sec.User),
		Salt:            a.salt,
		ContextEngineID: a.engineID,
	}, keys, pdu)
	if err != nil {
		return nil
	}
	return out
}

func (a *usmAgent) report(env v3Envelope, oid []int, requestID int32) []byte {
	return a.reply(env, 0, v3Keys{}, SNMP_PDU_REPORT, requestID, []SNMP_Packet_VarBind{counterVarBind(oid, 1)})
}

func (a *usmAgent) handle(payload []byte) []byte {
	a.requests.Add(1)
	env, err := unpackV3(payload)
	if err != nil {
		return nil
	}

	if len(env.Sec.AuthEng) == 0 {
		_, pdu, err := env.open(v3Keys{})
		if err != nil {
			return nil
		}
		if a.hideTimeOnDiscovery {
			boots, engineTime := a.boots, a.time
			a.boots, a.time = 0, 0
			defer func() { a.boots, a.time = boots, engineTime }()
		}
		return a.report(env, oidUsmStatsUnknownEngineIDs, pdu.RequestID)
	}
	if !bytes.Equal(env.Sec.AuthEng, a.engineID) {
		return a.report(env, oidUsmStatsUnknownEngineIDs, 0)
	}
	if string(env.Sec.User) != a.user.Username {
		return a.report(env, oidUsmStatsUnknownUserNames, 0)
	}
	if env.Authenticated() != a.user.HasAuth() || env.Encrypted() != a.user.HasPriv() {
		return a.report(env, oidUsmStatsUnsupportedSecLevels, 0)
	}

	_, pdu, err := env.open(a.keys)
	if err != nil {
		var secErr SecurityError
		switch {
		case errors.As(err, &secErr) && strings.HasPrefix(secErr.Reason, "Authentication failure"):
			return a.report(env, oidUsmStatsWrongDigests, 0)
		case errors.As(err, &secErr):
			return a.report(env, oidUsmStatsDecryptionErrors, 0)
		}
		return nil
	}
	if env.Authenticated() && env.Sec.Boots != a.boots {
		a.timeWindowReports.Add(1)
		authOnly := v3Keys{Auth: a.keys.Auth, AuthKey: a.keys.AuthKey}
		return a.reply(env, 1<<msgFlag_Authenticated_Bit, authOnly, SNMP_PDU_REPORT, pdu.RequestID,
			[]SNMP_Packet_VarBind{counterVarBind(oidUsmStatsNotInTimeWindows, 1)})
	}

	vbs := make([]SNMP_Packet_VarBind, 0, len(pdu.VarBinds))
	for _, vb := range pdu.VarBinds {
		vbs = append(vbs, a.resolve(pdu.PDUType, vb.OID))
	}
	flags := env.Global.MsgFlag[0] &^ (1 << msgFlag_Reportable_Bit)
	return a.reply(env, flags, a.keys, SNMP_PDU_RESPONSE, pdu.RequestID, vbs)
}

func (a *usmAgent) resolve(pduType int, oid []int) SNMP_Packet_VarBind {
	for _, vb := range a.mib {
		c := CompareOID([]int(vb.RSnmpOID), oid)
		if pduType == SNMP_PDU_GET && c == 0 || pduType == SNMP_PDU_GETNEXT && c > 0 {
			return vb
		}
	}
	if pduType == SNMP_PDU_GETNEXT {
		return exceptionVarBind(oid, tagERR_EndOfMib)
	}
	return exceptionVarBind(oid, tagERR_noSuchObject)
}
