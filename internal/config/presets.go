package config

// Presets mirror the quick-launch buttons of the desktop tool: a straight
// vertical ascent, a reduced-throttle hover attempt, and two aggressive
// 40-degree turns.
var Presets = map[string]*Config{
	"vertical": presetWith(ControlConfig{Throttle: 1.0}),
	"hover":    presetWith(ControlConfig{Throttle: 0.6}),
	"turn-right": presetWith(ControlConfig{
		Throttle:   1.0,
		GimbalXDeg: -40,
	}),
	"turn-left": presetWith(ControlConfig{
		Throttle:   1.0,
		GimbalXDeg: 40,
	}),
}

func presetWith(ctrl ControlConfig) *Config {
	cfg := DefaultConfig()
	cfg.Control = ctrl
	return cfg
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
