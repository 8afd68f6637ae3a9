//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: The pkce command. Generates PKCE values for manual testing.
//

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudmanic/spotify-remote/auth"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

// pkceValues is one generated set of login parameters.
type pkceValues struct {
	State     string
	Verifier  string
	Challenge string
}

// pkceCommand returns the pkce command.
func pkceCommand() *cli.Command {
	return &cli.Command{
		Name:  "pkce",
		Usage: "Print a state, code verifier and S256 challenge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "verifier",
				Usage: "Compute the challenge for this verifier instead of generating one",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			values, err := generatePKCE(cmd.String("verifier"))
			if err != nil {
				return err
			}
			printPKCETable(cmd.Root().Writer, values)
			return nil
		},
	}
}

// generatePKCE builds the values to print. When verifier is set only the
// challenge is derived from it.
func generatePKCE(verifier string) (pkceValues, error) {
	if verifier != "" {
		return pkceValues{Verifier: verifier, Challenge: auth.Challenge(verifier)}, nil
	}

	state, err := auth.RandomString(nil, auth.StateLength)
	if err != nil {
		return pkceValues{}, fmt.Errorf("failed to generate state: %w", err)
	}

	verifier, err = auth.RandomString(nil, auth.VerifierLength)
	if err != nil {
		return pkceValues{}, fmt.Errorf("failed to generate verifier: %w", err)
	}

	return pkceValues{State: state, Verifier: verifier, Challenge: auth.Challenge(verifier)}, nil
}

// printPKCETable displays the values in a formatted table.
func printPKCETable(out io.Writer, v pkceValues) {
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(out)
	cyan.Fprintln(out, "🔑 PKCE Parameters")
	fmt.Fprintln(out)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Name", "Value"})
	if v.State != "" {
		t.AppendRow(table.Row{"state", v.State})
	}
	t.AppendRow(table.Row{"code_verifier", color.HiBlackString(v.Verifier)})
	t.AppendRow(table.Row{"code_challenge", color.New(color.Bold).Sprint(v.Challenge)})
	t.AppendRow(table.Row{"code_challenge_method", "S256"})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
