package maincmd

import "github.com/caarlos0/env/v6"

// Config holds process-wide defaults that are more natural to source from
// the environment than from a command-line flag on every invocation — CI
// pipelines and editor integrations tend to set these once rather than pass
// them on every call (spec §5's "tunable knobs the builtin table can
// adjust" start from these defaults, then a script's own `SetNoOp`/
// `SetRepeatLimit` builtins may still override them per compile).
type Config struct {
	// RepeatLimit bounds how many iterations an `inline *@ { }` unbounded
	// args-repeat may run before the compiler gives up (spec §4.6).
	RepeatLimit int `env:"MDTC_REPEAT_LIMIT" envDefault:"10000"`
	// NoOp names the instruction a bare `noop;` statement compiles to.
	NoOp string `env:"MDTC_NOOP" envDefault:"noop"`
}

// LoadConfig reads Config from the environment, applying envDefault tags for
// anything unset.
func LoadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
