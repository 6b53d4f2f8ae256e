package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tvcsim/internal/flight"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

const (
	DefaultDt               = 0.01
	DefaultDuration         = 10.0
	DefaultHardLandingSpeed = 5.0
)

type Config struct {
	Dt               float64       `yaml:"dt"`
	Duration         float64       `yaml:"duration"`
	HardLandingSpeed float64       `yaml:"hard_landing_speed"`
	Vehicle          VehicleConfig `yaml:"vehicle"`
	Control          ControlConfig `yaml:"control"`
}

type VehicleConfig struct {
	MaxThrust         float64 `yaml:"max_thrust"`
	InitialMass       float64 `yaml:"initial_mass"`
	DryMass           float64 `yaml:"dry_mass"`
	FuelRate          float64 `yaml:"fuel_rate"`
	EngineOffset      float64 `yaml:"engine_offset"`
	Inertia           float64 `yaml:"inertia"`
	Gravity           float64 `yaml:"gravity"`
	MinGimbalThrottle float64 `yaml:"min_gimbal_throttle"`
	StageDropMass     float64 `yaml:"stage_drop_mass"`
}

// ControlConfig is the launch control setting. Gimbal angles are in degrees
// here because that is what people type; the engine works in radians.
type ControlConfig struct {
	Throttle   float64 `yaml:"throttle"`
	GimbalXDeg float64 `yaml:"gimbal_x_deg"`
	GimbalYDeg float64 `yaml:"gimbal_y_deg"`
}

func DefaultConfig() *Config {
	v := vehicle.New()
	return &Config{
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		HardLandingSpeed: DefaultHardLandingSpeed,
		Vehicle: VehicleConfig{
			MaxThrust:         v.MaxThrust,
			InitialMass:       v.InitialMass,
			DryMass:           v.DryMass,
			FuelRate:          v.FuelRate,
			EngineOffset:      v.EngineOffset,
			Inertia:           v.Inertia,
			Gravity:           v.Gravity,
			MinGimbalThrottle: v.MinGimbalThrottle,
			StageDropMass:     v.StageDropMass,
		},
		Control: ControlConfig{
			Throttle: 1.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Vehicle.InitialMass < c.Vehicle.DryMass {
		return fmt.Errorf("initial mass %f below dry mass %f", c.Vehicle.InitialMass, c.Vehicle.DryMass)
	}
	if c.Vehicle.DryMass <= 0 {
		return fmt.Errorf("dry mass must be positive, got %f", c.Vehicle.DryMass)
	}
	if c.Vehicle.MaxThrust < 0 || c.Vehicle.FuelRate < 0 {
		return fmt.Errorf("thrust and fuel rate must be non-negative")
	}
	return nil
}

// BuildVehicle constructs the vehicle model described by the config.
func (c *Config) BuildVehicle() *vehicle.Vehicle {
	return &vehicle.Vehicle{
		MaxThrust:         c.Vehicle.MaxThrust,
		InitialMass:       c.Vehicle.InitialMass,
		DryMass:           c.Vehicle.DryMass,
		FuelRate:          c.Vehicle.FuelRate,
		EngineOffset:      c.Vehicle.EngineOffset,
		Inertia:           c.Vehicle.Inertia,
		Gravity:           c.Vehicle.Gravity,
		MinGimbalThrottle: c.Vehicle.MinGimbalThrottle,
		StageDropMass:     c.Vehicle.StageDropMass,
	}
}

// FlightOptions maps the config onto controller options.
func (c *Config) FlightOptions() flight.Options {
	return flight.Options{
		Dt:               c.Dt,
		HardLandingSpeed: c.HardLandingSpeed,
	}
}
