//go:build !integration

// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T, authCode, privCode int, engineID []byte) v3Keys {
	t.Helper()
	auth, ok := builtinAuth(authCode)
	require.True(t, ok)
	keys := v3Keys{Auth: &auth, AuthKey: auth.LocalizedKey([]byte("authpass123"), engineID)}
	if privCode != PRIV_PROTOCOL_NONE {
		priv, ok := builtinPriv(privCode)
		require.True(t, ok)
		keys.Priv = priv
		keys.PrivKey = auth.extendKey(auth.LocalizedKey([]byte("privpass456"), engineID), priv.KeyLen())
	}
	return keys
}

func TestV3Message_SealOpen(t *testing.T) {
	engineID := []byte{0x80, 0, 0, 0, 1, 2, 3}
	tests := []struct {
		name  string
		flags byte
		auth  int
		priv  int
	}{
		{"authNoPriv MD5", 1<<msgFlag_Authenticated_Bit | 1<<msgFlag_Reportable_Bit, AUTH_PROTOCOL_MD5, PRIV_PROTOCOL_NONE},
		{"authPriv SHA1 DES", 1<<msgFlag_Authenticated_Bit | 1<<msgFlag_Encrypted_Bit, AUTH_PROTOCOL_SHA, PRIV_PROTOCOL_DES},
		{"authPriv SHA384 AES256", 1<<msgFlag_Authenticated_Bit | 1<<msgFlag_Encrypted_Bit, AUTH_PROTOCOL_SHA384, PRIV_PROTOCOL_AES256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := testKeys(t, tt.auth, tt.priv, engineID)
			pdu, err := makePDU(SNMP_PDU_GET, 4242, 0, 0, nullVarBinds([][]int{oidSysDescr0}))
			require.NoError(t, err)
			msg, err := makeV3Message(v3Header{
				MsgID: 77, Flags: tt.flags, EngineID: engineID, Boots: 3, Time: 99,
				User: "monitor", Salt: 11, ContextEngineID: engineID,
			}, keys, pdu)
			require.NoError(t, err)

			env, err := unpackV3(msg)
			require.NoError(t, err)
			assert.EqualValues(t, 77, env.Global.MsgID)
			assert.Equal(t, "monitor", string(env.Sec.User))
			assert.EqualValues(t, 3, env.Sec.Boots)
			assert.Equal(t, tt.priv != PRIV_PROTOCOL_NONE, env.Encrypted())

			scoped, decoded, err := env.open(keys)
			require.NoError(t, err)
			assert.Equal(t, engineID, scoped.ContextEngineId)
			assert.Equal(t, SNMP_PDU_GET, decoded.PDUType)
			assert.EqualValues(t, 4242, decoded.RequestID)
			require.Len(t, decoded.VarBinds, 1)
			assert.Equal(t, oidSysDescr0, decoded.VarBinds[0].OID)

			// Любой измененный байт ломает подпись
			tampered := append([]byte(nil), msg...)
			tampered[len(tampered)-1] ^= 0xff
			env, err = unpackV3(tampered)
			require.NoError(t, err)
			_, _, err = env.open(keys)
			var secErr SecurityError
			require.True(t, errors.As(err, &secErr), "got %v", err)
			assert.Equal(t, "Authentication failure: wrong digest in response", secErr.Reason)
		})
	}
}

func TestV3Message_FlagsWithoutKeys(t *testing.T) {
	pdu, err := makePDU(SNMP_PDU_GET, 1, 0, 0, nil)
	require.NoError(t, err)
	_, err = makeV3Message(v3Header{Flags: 1 << msgFlag_Authenticated_Bit}, v3Keys{}, pdu)
	assert.Error(t, err)
	_, err = makeV3Message(v3Header{Flags: 1 << msgFlag_Encrypted_Bit}, v3Keys{}, pdu)
	assert.Error(t, err)
}

func TestUnpackV3_RejectsCommunity(t *testing.T) {
	pdu, err := makePDU(SNMP_PDU_GET, 1, 0, 0, nullVarBinds([][]int{oidSysDescr0}))
	require.NoError(t, err)
	packet, err := makeCommunityPacket(SNMPVersion2c, "public", pdu)
	require.NoError(t, err)

	_, err = unpackV3(packet)
	assert.Error(t, err)

	vs, decoded, err := receiverCommunityParser(packet)
	require.NoError(t, err)
	assert.Equal(t, snmpWireVersion2c, vs.Version)
	assert.Equal(t, "public", string(vs.Community))
	assert.Equal(t, SNMP_PDU_GET, decoded.PDUType)
}

func TestUsmState_AddUser(t *testing.T) {
	reg := NewProtocolRegistry()
	id := UsmIdentity{Username: "monitor", AuthProtocol: AUTH_PROTOCOL_SHA, AuthPassphrase: "a", PrivProtocol: PRIV_PROTOCOL_AES128, PrivKey: "p"}

	u := newUsmState(newLocalEngineID(), AuthPriv)
	err := u.addUser(id, reg)
	assert.IsType(t, TargetError{}, err, "protocols are not registered yet")

	reg.RegisterFor(id)
	require.NoError(t, u.addUser(id, reg))
	assert.IsType(t, TargetError{}, u.addUser(id, reg), "duplicate user")
	assert.Equal(t, byte(0x07), u.flags())

	u = newUsmState(newLocalEngineID(), AuthPriv)
	assert.IsType(t, TargetError{}, u.addUser(UsmIdentity{Username: "x", AuthProtocol: AUTH_PROTOCOL_SHA}, reg), "authPriv without privacy")

	u = newUsmState(newLocalEngineID(), NoAuthNoPriv)
	require.NoError(t, u.addUser(UsmIdentity{Username: "x"}, reg))
	assert.Equal(t, byte(0x04), u.flags())
}

func TestNewLocalEngineID(t *testing.T) {
	a, b := newLocalEngineID(), newLocalEngineID()
	assert.Len(t, a, 21)
	assert.Equal(t, []byte{0x80, 0, 0, 0, 5}, a[:5])
	assert.NotEqual(t, a, b)
}

func TestReportError(t *testing.T) {
	pdu := SNMP_DecodedPDU{PDUType: SNMP_PDU_REPORT, VarBinds: []SNMPVarBind{{OID: oidUsmStatsNotInTimeWindows}}}
	assert.True(t, isReportOf(pdu, oidUsmStatsNotInTimeWindows))
	assert.False(t, isReportOf(pdu, oidUsmStatsWrongDigests))
	assert.Equal(t, SecurityError{ReportOID: oidUsmStatsNotInTimeWindows, Reason: "Not in time window"}, reportError(pdu))

	assert.Equal(t, "Unknown report 1.3.6.1.6.3.99.0", reportReason([]int{1, 3, 6, 1, 6, 3, 99, 0}))
	assert.Equal(t, SecurityError{Reason: "empty report"}, reportError(SNMP_DecodedPDU{PDUType: SNMP_PDU_REPORT}))
}
