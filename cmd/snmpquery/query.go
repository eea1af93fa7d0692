// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [flags] OID...",
	Short: "Fetch one or more OIDs with a single GET",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := agent.targetConfig()
		t.Get = args
		return runOne(cmd, t)
	},
}

var walkCmd = &cobra.Command{
	Use:   "walk [flags] OID",
	Short: "Enumerate the subtree under OID with GETNEXT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := agent.targetConfig()
		t.Walk = args
		return runOne(cmd, t)
	},
}

func init() {
	addAgentFlags(getCmd)
	addAgentFlags(walkCmd)
	rootCmd.AddCommand(getCmd, walkCmd)
}

func runOne(cmd *cobra.Command, t TargetConfig) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	engine, flush, err := newEngine(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	resErr := printResults(cmd.OutOrStdout(), t.Query(engine))
	return errors.Join(resErr, flush())
}
