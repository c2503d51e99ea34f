package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"git.fiblab.net/sim/catchment/router"
	"git.fiblab.net/sim/catchment/router/algo"
	"gopkg.in/yaml.v3"
)

// 配置文件
//
//	modes:
//	  - mode: walking
//	    speed: 4.5
//	    filter-inaccessible: true
//	  - mode: car
//	    use-max-speed: true
//	    oneway-restrictions: true
//	    largest-component: true
//	cache:
//	  ttl: 10m
type Config struct {
	Modes []ModeConfig `yaml:"modes"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
}

type ModeConfig struct {
	Mode algo.RoutingMode `yaml:"mode"`
	// 速度 km/h，缺省为出行方式默认速度
	Speed              *float64 `yaml:"speed"`
	UseMaxSpeed        bool     `yaml:"use-max-speed"`
	FilterInaccessible bool     `yaml:"filter-inaccessible"`
	OnewayRestrictions bool     `yaml:"oneway-restrictions"`
	LargestComponent   bool     `yaml:"largest-component"`
}

func (c ModeConfig) LoadOptions() router.LoadOptions {
	return router.LoadOptions{
		Mode:                 c.Mode,
		Speed:                c.Speed,
		UseMaxSpeed:          c.UseMaxSpeed,
		FilterInaccessible:   c.FilterInaccessible,
		OnewayRestrictions:   c.OnewayRestrictions,
		LargestComponentOnly: c.LargestComponent,
	}
}

func ReadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// 由-modes参数生成配置，逗号分隔
func ConfigFromModes(modes string) (*Config, error) {
	config := &Config{}
	for _, name := range strings.Split(modes, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mode, err := algo.ParseRoutingMode(name)
		if err != nil {
			return nil, err
		}
		config.Modes = append(config.Modes, ModeConfig{Mode: mode})
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if len(c.Modes) == 0 {
		return fmt.Errorf("no routing mode configured")
	}
	seen := make(map[algo.RoutingMode]bool)
	for _, m := range c.Modes {
		if seen[m.Mode] {
			return fmt.Errorf("routing mode %v configured twice", m.Mode)
		}
		seen[m.Mode] = true
		if m.Speed != nil && !(*m.Speed > 0) {
			return fmt.Errorf("invalid %v speed %v: %w", m.Mode, *m.Speed, algo.ErrInvalidSpeed)
		}
	}
	return nil
}
