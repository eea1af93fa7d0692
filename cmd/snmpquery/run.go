// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)

package main

import (
	"errors"
	"fmt"
	"io"

	PowerSNMP "github.com/OlegPowerC/powersnmpquery"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var cfgFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Query every target of a config file",
	Long: `run reads a YAML file with a list of targets and their GET and WALK OIDs,
queries the targets concurrently and prints the results grouped per target in
file order.`,
	Example: `  snmpquery run --config targets.yaml
  snmpquery run --config targets.yaml --concurrency 16 --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var concurrency int

func init() {
	runCmd.Flags().StringVar(&cfgFile, "config", "snmpquery.yaml", "targets file")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 0, "targets queried at once, overrides the file")
	rootCmd.AddCommand(runCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	engine, flush, err := newEngine(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	results := queryAll(engine, cfg)
	resErr := writeGrouped(cmd.OutOrStdout(), cfg.Targets, results)
	return errors.Join(resErr, flush())
}

// queryAll runs the targets with at most cfg.Concurrency in flight. Results
// keep the order of cfg.Targets.
func queryAll(engine *PowerSNMP.Engine, cfg *Config) [][]string {
	results := make([][]string, len(cfg.Targets))
	var g errgroup.Group
	g.SetLimit(cfg.Concurrency)
	for i, t := range cfg.Targets {
		g.Go(func() error {
			results[i] = t.Query(engine)
			return nil
		})
	}
	// Query не возвращает ошибок, они уже в результатах
	_ = g.Wait()
	return results
}

func writeGrouped(w io.Writer, targets []TargetConfig, results [][]string) error {
	var errs []error
	for i, t := range targets {
		fmt.Fprintf(w, "# %s (%s:%d, v%s)\n", t.Name, t.Address, t.Port, t.Version)
		if err := printResults(w, results[i]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
		}
	}
	return errors.Join(errs...)
}
