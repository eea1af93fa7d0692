// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)

package main

import (
	"fmt"
	"io"
	"os"

	PowerSNMP "github.com/OlegPowerC/powersnmpquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	noColor     bool
	metricsFile string

	// Параметры агента, общие для get и walk
	agent agentFlags
)

type agentFlags struct {
	host      string
	port      int
	version   string
	community string
	user      string
	level     int
	auth      string
	authPass  string
	priv      string
	privPass  string
	timeout   int
	retry     int
}

var rootCmd = &cobra.Command{
	Use:   "snmpquery",
	Short: "SNMP GET and WALK for v1, v2c and v3 agents",
	Long: `snmpquery sends SNMP GET and GETNEXT-driven WALK requests and prints one
line per result. Errors are printed as "[CODE] Error: detail" lines and make
the command exit with status 1.`,
	Example: `  snmpquery get --host 10.0.0.1 -c public 1.3.6.1.2.1.1.1.0 1.3.6.1.2.1.1.5.0
  snmpquery walk --host 10.0.0.1 -v 3 -u monitor -a SHA -A secret -x AES -X secret2 1.3.6.1.2.1.2.2.1.2
  snmpquery run --config targets.yaml --metrics-file /var/lib/node_exporter/snmpquery.prom`,
	SilenceUsage: true,
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVar(&noColor, "no-color", false, "disable colored log output")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file when done")
}

func addAgentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&agent.host, "host", "", "agent address (required)")
	f.IntVarP(&agent.port, "port", "p", 161, "agent UDP port")
	f.StringVarP(&agent.version, "snmp-version", "v", "2c", "SNMP version: 1, 2c or 3")
	f.StringVarP(&agent.community, "community", "c", "public", "community for v1/v2c")
	f.StringVarP(&agent.user, "user", "u", "", "SNMPv3 user")
	f.IntVarP(&agent.level, "level", "l", 0, "SNMPv3 security level 1-3, inferred from the secrets when 0")
	f.StringVarP(&agent.auth, "auth", "a", "SHA", "SNMPv3 auth protocol: MD5, SHA, SHA224, SHA256, SHA384, SHA512")
	f.StringVarP(&agent.authPass, "auth-pass", "A", "", "SNMPv3 auth passphrase")
	f.StringVarP(&agent.priv, "priv", "x", "", "SNMPv3 privacy protocol: DES, AES, AES192, AES256")
	f.StringVarP(&agent.privPass, "priv-pass", "X", "", "SNMPv3 privacy passphrase, defaults to the auth passphrase")
	f.IntVarP(&agent.timeout, "timeout", "t", PowerSNMP.SNMP_DEFAULTTIMEOUT_MS, "timeout per attempt in milliseconds")
	f.IntVarP(&agent.retry, "retry", "r", PowerSNMP.SNMP_DEFAULTRETRY, "retries after the first attempt")
	_ = cmd.MarkFlagRequired("host")
}

// targetConfig turns the flags into the same shape the config file uses.
func (a agentFlags) targetConfig() TargetConfig {
	retry := a.retry
	t := TargetConfig{
		Name:      a.host,
		Address:   a.host,
		Port:      a.port,
		Version:   a.version,
		Community: a.community,
		User:      a.user,
		Level:     a.level,
		Auth:      a.auth,
		AuthPass:  a.authPass,
		Priv:      a.priv,
		PrivKey:   a.privPass,
		Timeout:   a.timeout,
		Retry:     &retry,
	}
	t.normalize()
	return t
}

// newEngine builds the engine from the persistent flags. The returned flush
// writes the metrics file when one was requested.
func newEngine(stderr io.Writer) (*PowerSNMP.Engine, func() error, error) {
	logger := PowerSNMP.NewLogger(stderr, logLevel, noColor)
	opts := []PowerSNMP.Option{PowerSNMP.WithLogger(logger)}
	flush := func() error { return nil }
	if metricsFile != "" {
		reg := prometheus.NewRegistry()
		m := PowerSNMP.NewMetrics()
		if err := m.Register(reg); err != nil {
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, PowerSNMP.WithMetrics(m))
		flush = func() error {
			if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
			return nil
		}
	}
	return PowerSNMP.NewEngine(opts...), flush, nil
}

// printResults writes the entries and returns an error when some are coded errors.
func printResults(w io.Writer, results []string) error {
	failed := 0
	for _, r := range results {
		if PowerSNMP.IsErrorEntry(r) {
			failed++
		}
		fmt.Fprintln(w, r)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entries are errors", failed, len(results))
	}
	return nil
}
