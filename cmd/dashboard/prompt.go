package main

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/term"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/dashboard"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/render"
)

// Confirm asks a y/N question on stderr. -yes answers for the operator.
func (a *app) Confirm(ctx context.Context, prompt string) (bool, error) {
	if a.yes {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(a.streams.err, "%s [y/N]: ", prompt)
	answer, err := a.readLine()
	if err != nil {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Notify prints action notices on stderr so stdout stays parseable.
func (a *app) Notify(r dashboard.Result) {
	render.Notice(a.streams.err, r)
}

func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.streams.err, "%s: ", label)
	return a.readLine()
}

// promptPassword reads without echo when stdin is a terminal.
func (a *app) promptPassword(show bool) (string, error) {
	if show || a.streams.fd < 0 || !term.IsTerminal(a.streams.fd) {
		return a.prompt("Password")
	}
	fmt.Fprint(a.streams.err, "Password: ")
	b, err := term.ReadPassword(a.streams.fd)
	fmt.Fprintln(a.streams.err)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

var _ dashboard.Confirmer = (*app)(nil)
var _ dashboard.Notifier = (*app)(nil)
