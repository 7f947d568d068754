package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-hackmd"
)

// runRender runs the pipeline over one document and prints the result.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}

	mode, err := hackmd.ParseMode(f.mode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.common, f.pipeline)
	if err != nil {
		return err
	}

	text, _, err := readInput(positional, env.Stdin)
	if err != nil {
		return err
	}

	logger := newLogger(f.common, env.Stderr)
	out, err := newRenderer(cfg, env, logger, nil).Render(ctx, text, mode)
	if err != nil {
		return err
	}

	if err := writeOutput(f.output, []byte(out), env.Stdout); err != nil {
		return err
	}
	if f.output != "" && f.output != "-" && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s\n", f.output)
	}
	return nil
}
