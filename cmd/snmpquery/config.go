// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	PowerSNMP "github.com/OlegPowerC/powersnmpquery"
	"gopkg.in/yaml.v3"
)

// Config is the file read by "snmpquery run".
//
//	concurrency: 4
//	defaults:
//	  port: 161
//	  timeout: 1500
//	targets:
//	  - name: core
//	    address: 10.0.0.1
//	    community: public
//	    get: [1.3.6.1.2.1.1.1.0]
//	  - name: edge
//	    address: 10.0.0.2
//	    version: "3"
//	    user: monitor
//	    auth: SHA256
//	    authPass: secret
//	    priv: AES128
//	    walk: [1.3.6.1.2.1.2.2.1.2]
type Config struct {
	Concurrency int            `yaml:"concurrency"`
	Defaults    TargetConfig   `yaml:"defaults"`
	Targets     []TargetConfig `yaml:"targets"`
}

// TargetConfig describes one agent and what to ask it. Zero fields other than
// Name, Address, Get and Walk take the value from Config.Defaults.
type TargetConfig struct {
	Name      string   `yaml:"name"`
	Address   string   `yaml:"address"`
	Port      int      `yaml:"port"`
	Version   string   `yaml:"version"`
	Community string   `yaml:"community"`
	User      string   `yaml:"user"`
	Level     int      `yaml:"level"`
	Auth      string   `yaml:"auth"`
	AuthPass  string   `yaml:"authPass"`
	Priv      string   `yaml:"priv"`
	PrivKey   string   `yaml:"privKey"`
	Timeout   int      `yaml:"timeout"`
	Retry     *int     `yaml:"retry"`
	Get       []string `yaml:"get"`
	Walk      []string `yaml:"walk"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	d := c.Defaults
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Port == 0 {
			t.Port = d.Port
		}
		if t.Version == "" {
			t.Version = d.Version
		}
		if t.Community == "" {
			t.Community = d.Community
		}
		if t.Timeout == 0 {
			t.Timeout = d.Timeout
		}
		if t.Retry == nil {
			t.Retry = d.Retry
		}
		if t.User == "" {
			t.User = d.User
		}
		if t.Level == 0 {
			t.Level = d.Level
		}
		if t.Auth == "" {
			t.Auth = d.Auth
		}
		if t.AuthPass == "" {
			t.AuthPass = d.AuthPass
		}
		if t.Priv == "" {
			t.Priv = d.Priv
		}
		if t.PrivKey == "" {
			t.PrivKey = d.PrivKey
		}
		if t.Name == "" {
			t.Name = t.Address
		}
		t.normalize()
	}
}

func (t *TargetConfig) normalize() {
	if t.Port == 0 {
		t.Port = 161
	}
	if t.Version == "" {
		t.Version = "2c"
	}
	t.Version = strings.ToLower(strings.TrimPrefix(strings.ToLower(t.Version), "v"))
}

// Validate reports every problem of the file at once, before any request is sent.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Targets) == 0 {
		errs = append(errs, errors.New("no targets configured"))
	}
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("target %d (%s): %w", i, t.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (t TargetConfig) Validate() error {
	var errs []error
	if t.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", t.Port))
	}
	switch t.Version {
	case "1", "2c", "2", "3":
	default:
		errs = append(errs, fmt.Errorf("unknown version %q", t.Version))
	}
	if t.Version == "3" && t.User == "" {
		errs = append(errs, errors.New("user is required for version 3"))
	}
	if len(t.Get) == 0 && len(t.Walk) == 0 {
		errs = append(errs, errors.New("nothing to query: set get or walk"))
	}
	for _, o := range append(append([]string{}, t.Get...), t.Walk...) {
		if _, err := PowerSNMP.ParseOID(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// overrides turns timeout, retry and privKey into call parameters.
func (t TargetConfig) overrides() []string {
	var params []string
	if t.Timeout > 0 {
		params = append(params, "timeout="+strconv.Itoa(t.Timeout))
	}
	if t.Retry != nil {
		params = append(params, "retry="+strconv.Itoa(*t.Retry))
	}
	if t.Version == "3" && t.PrivKey != "" {
		params = append(params, "privKey="+t.PrivKey)
	}
	return params
}

// level returns the configured security level or infers it from the secrets.
func (t TargetConfig) level() int {
	if t.Level >= 1 && t.Level <= 3 {
		return t.Level
	}
	switch {
	case t.AuthPass == "":
		return 1
	case t.Priv == "":
		return 2
	}
	return 3
}

// Query runs the gets (one call for all OIDs) and then every walk.
func (t TargetConfig) Query(engine *PowerSNMP.Engine) []string {
	var out []string
	params := t.overrides()
	if t.Version == "3" {
		authCode, privCode := PowerSNMP.AuthProtocolByName(t.Auth), PowerSNMP.PrivProtocolByName(t.Priv)
		if len(t.Get) > 0 {
			out = append(out, t.labelGets(engine.GetV3(t.Address, t.Port, t.Get, t.level(), t.User, t.AuthPass, authCode, privCode, params))...)
		}
		for _, w := range t.Walk {
			out = append(out, engine.WalkV3(t.Address, t.Port, w, t.level(), t.User, t.AuthPass, authCode, privCode, params)...)
		}
		return out
	}

	version := "version=2c"
	if t.Version == "1" {
		version = "version=1"
	}
	params = append([]string{t.Community, version}, params...)
	if len(t.Get) > 0 {
		out = append(out, t.labelGets(engine.Get(t.Address, t.Port, t.Get, params))...)
	}
	for _, w := range t.Walk {
		out = append(out, engine.Walk(t.Address, t.Port, w, params)...)
	}
	return out
}

// labelGets prefixes GET values with their OID; error entries stay as they are.
func (t TargetConfig) labelGets(res []string) []string {
	for i, r := range res {
		if !PowerSNMP.IsErrorEntry(r) && i < len(t.Get) {
			res[i] = t.Get[i] + " = " + r
		}
	}
	return res
}
