//go:build integration

// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"flag"
	"os"
	"testing"
)

// go test -tags integration -args -h 192.168.1.1 -c public -u monitor -a SHA -A secret -x AES -X secret2
var (
	Host             = flag.String("h", "", "Switch or routers IP")
	Port             = flag.Int("p", 161, "SNMP port")
	SNMPuser         = flag.String("u", "", "SNMP v3 USER")
	SNMPcommunity    = flag.String("c", "", "Mandatory for version 2, SNMP read community name")
	SNMPauthProtocol = flag.String("a", "", "SNMP auth protocol")
	SNMPauthPassword = flag.String("A", "", "SNMP auth password")
	SNMPprivProtocol = flag.String("x", "", "SNMP priv protocol")
	SNMPprivPassword = flag.String("X", "", "SNMP priv password")
)

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

func logResults(t *testing.T, res []string) (failed int) {
	for _, r := range res {
		if IsErrorEntry(r) {
			failed++
		}
		t.Log(r)
	}
	return failed
}

func TestDevice_V2c(t *testing.T) {
	if *Host == "" || *SNMPcommunity == "" {
		t.Skip("no -h or -c given")
	}
	e := NewEngine(WithLogger(NewLogger(os.Stderr, "debug", true)))

	t.Log("-------- Get multiple oids V2 (one OID is wrong) --------")
	res := e.Get(*Host, *Port, []string{"1.3.6.1.2.1.1.6.0", "1.3.6.1.2.1.1.99.0", "1.3.6.1.2.1.1.5.0"}, []string{*SNMPcommunity, "timeout=500", "retry=3"})
	if len(res) != 3 {
		t.Errorf("expected 3 results, got %d", len(res))
	}
	logResults(t, res)

	t.Log("-------- Walk from OID 1.3.6.1.2.1.2.2.1.2 V2 --------")
	res = e.Walk(*Host, *Port, "1.3.6.1.2.1.2.2.1.2", []string{*SNMPcommunity, "timeout=500", "retry=3"})
	if failed := logResults(t, res); failed > 0 || len(res) == 0 {
		t.Errorf("Error in Walk, %d entries, %d errors", len(res), failed)
	}
}

func TestDevice_V3(t *testing.T) {
	if *Host == "" || *SNMPuser == "" {
		t.Skip("no -h or -u given")
	}
	level := 1
	if *SNMPauthPassword != "" {
		level = 2
		if *SNMPprivProtocol != "" {
			level = 3
		}
	}
	authCode, privCode := AuthProtocolByName(*SNMPauthProtocol), PrivProtocolByName(*SNMPprivProtocol)
	params := []string{"timeout=500", "retry=3"}
	if *SNMPprivPassword != "" {
		params = append(params, "privKey="+*SNMPprivPassword)
	}
	e := NewEngine(WithLogger(NewLogger(os.Stderr, "debug", true)))

	t.Log("-------- Get single oid V3 --------")
	res := e.GetV3(*Host, *Port, []string{"1.3.6.1.2.1.1.5.0"}, level, *SNMPuser, *SNMPauthPassword, authCode, privCode, params)
	if failed := logResults(t, res); failed > 0 {
		t.Errorf("SNMP v3 Error in GetV3: %v", res)
	}

	t.Log("-------- Walk from OID 1.3.6.1.2.1.2.2.1.2 V3 --------")
	res = e.WalkV3(*Host, *Port, "1.3.6.1.2.1.2.2.1.2", level, *SNMPuser, *SNMPauthPassword, authCode, privCode, params)
	if failed := logResults(t, res); failed > 0 || len(res) == 0 {
		t.Errorf("Error in WalkV3, %d entries, %d errors", len(res), failed)
	}

	t.Log("-------- Wrong password V3 --------")
	if level > 1 {
		res = e.GetV3(*Host, *Port, []string{"1.3.6.1.2.1.1.5.0"}, level, *SNMPuser, *SNMPauthPassword+"x", authCode, privCode, params)
		if len(res) != 1 || !IsErrorEntry(res[0]) {
			t.Errorf("expected one error entry, got %v", res)
		}
		logResults(t, res)
	}
}
