// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snmpquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
defaults:
  community: public
  timeout: 1500
  retry: 0
targets:
  - address: 10.0.0.1
    get: [1.3.6.1.2.1.1.1.0]
  - name: edge
    address: 10.0.0.2
    port: 1161
    version: v3
    user: monitor
    authPass: secret
    priv: AES
    privKey: secret2
    walk: [1.3.6.1.2.1.2.2.1.2]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Concurrency)
	require.Len(t, cfg.Targets, 2)

	core := cfg.Targets[0]
	assert.Equal(t, "10.0.0.1", core.Name)
	assert.Equal(t, 161, core.Port)
	assert.Equal(t, "2c", core.Version)
	assert.Equal(t, "public", core.Community)
	assert.Equal(t, []string{"timeout=1500", "retry=0"}, core.overrides())
	assert.Equal(t, 1, core.level())

	edge := cfg.Targets[1]
	assert.Equal(t, "3", edge.Version)
	assert.Equal(t, 1161, edge.Port)
	assert.Equal(t, 3, edge.level())
	assert.Equal(t, []string{"timeout=1500", "retry=0", "privKey=secret2"}, edge.overrides())
}

func TestLoadConfig_V3Defaults(t *testing.T) {
	path := writeConfig(t, `
defaults:
  version: "3"
  user: monitor
  auth: SHA256
  authPass: secret
  priv: AES256
  privKey: secret2
targets:
  - address: 10.0.0.1
    get: [1.3.6.1.2.1.1.5.0]
  - address: 10.0.0.2
    user: backup
    level: 2
    walk: [1.3.6.1.2.1.2.2.1.2]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Targets, 2)

	first := cfg.Targets[0]
	assert.Equal(t, "3", first.Version)
	assert.Equal(t, "monitor", first.User)
	assert.Equal(t, "SHA256", first.Auth)
	assert.Equal(t, "secret", first.AuthPass)
	assert.Equal(t, 3, first.level())
	assert.Equal(t, []string{"privKey=secret2"}, first.overrides())

	second := cfg.Targets[1]
	assert.Equal(t, "backup", second.User)
	assert.Equal(t, 2, second.level())
	assert.Equal(t, "AES256", second.Priv)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, `
targets:
  - name: bad
    port: 70000
    version: "4"
    get: [1.3.x]
  - name: v3
    address: 10.0.0.3
    version: "3"
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"address is required", "port 70000 out of range", `unknown version "4"`, "user is required", "nothing to query"} {
		assert.Contains(t, msg, want)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	err := printResults(&buf, []string{"sysName = sw1", "[G001] Error: No Response from device"})
	assert.EqualError(t, err, "1 of 2 entries are errors")
	assert.Equal(t, "sysName = sw1\n[G001] Error: No Response from device\n", buf.String())

	buf.Reset()
	assert.NoError(t, printResults(&buf, []string{"1.3.6.1.2.1.1.5.0 = sw1"}))
}

func TestAgentFlags_TargetConfig(t *testing.T) {
	a := agentFlags{host: "10.0.0.9", port: 161, version: "V2C", community: "private", timeout: 700, retry: 2}
	tc := a.targetConfig()
	assert.Equal(t, "2c", tc.Version)
	assert.Equal(t, "10.0.0.9", tc.Name)
	assert.Equal(t, []string{"timeout=700", "retry=2"}, tc.overrides())
}

func TestLabelGets(t *testing.T) {
	tc := TargetConfig{Get: []string{"1.3.6.1.2.1.1.5.0", "1.3.6.1.2.1.1.6.0"}}
	got := tc.labelGets([]string{"sw1", "rack 4"})
	assert.Equal(t, []string{"1.3.6.1.2.1.1.5.0 = sw1", "1.3.6.1.2.1.1.6.0 = rack 4"}, got)

	got = tc.labelGets([]string{"[G001] Error: No Response from device"})
	assert.Equal(t, []string{"[G001] Error: No Response from device"}, got)
}
