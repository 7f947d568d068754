package main

import "fmt"

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	f, positional, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, positional)
	}

	cfg, err := loadConfig(*f, pipelineFlags{})
	if err != nil {
		return err
	}
	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}
