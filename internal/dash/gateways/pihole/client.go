package pihole

import (
	"context"
	"fmt"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// Command-line vocabulary of the filter binary (v5 names; v6 accepts them too).
const (
	flagBlacklist = "-b"
	flagWhitelist = "-w"
	flagRegex     = "--regex"
	flagWildcard  = "--wild"
	flagRemove    = "-d"
	flagComment   = "--comment"
)

// Client maps list operations onto filter binary invocations and turns a
// non-zero exit into a *domain.CommandError.
type Client struct {
	runner Runner
}

// NewClient wraps a Runner.
func NewClient(r Runner) *Client {
	return &Client{runner: r}
}

func (c *Client) exec(ctx context.Context, args ...string) (Result, error) {
	res, err := c.runner.Run(ctx, args...)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &domain.CommandError{Args: args, ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	}
	return res, nil
}

func withComment(args []string, comment string) []string {
	if comment != "" {
		args = append(args, flagComment, comment)
	}
	return args
}

// Add puts value on the list identified by kind.
func (c *Client) Add(ctx context.Context, kind domain.ListKind, value, comment string) (Result, error) {
	switch kind {
	case domain.ListBlacklist:
		return c.exec(ctx, withComment([]string{flagBlacklist, value}, comment)...)
	case domain.ListWhitelist:
		return c.exec(ctx, flagWhitelist, value)
	case domain.ListRegexBlack:
		return c.exec(ctx, withComment([]string{flagRegex, value}, comment)...)
	case domain.ListWildcard:
		return c.exec(ctx, withComment([]string{flagWildcard, value}, comment)...)
	default:
		return Result{}, fmt.Errorf("%w: cannot add %s", domain.ErrUnsupportedListKind, kind)
	}
}

// Remove takes value off the list identified by kind.
func (c *Client) Remove(ctx context.Context, kind domain.ListKind, value string) (Result, error) {
	switch kind {
	case domain.ListBlacklist:
		return c.exec(ctx, flagBlacklist, flagRemove, value)
	case domain.ListWhitelist:
		return c.exec(ctx, flagWhitelist, flagRemove, value)
	case domain.ListRegexBlack:
		return c.exec(ctx, flagRegex, flagRemove, value)
	case domain.ListWildcard:
		return c.exec(ctx, flagWildcard, flagRemove, value)
	default:
		return Result{}, fmt.Errorf("%w: cannot remove %s", domain.ErrUnsupportedListKind, kind)
	}
}

// AddWildcard blocks name and its subdomains, tagging the entry with comment.
func (c *Client) AddWildcard(ctx context.Context, name, comment string) error {
	_, err := c.Add(ctx, domain.ListWildcard, name, comment)
	return err
}

// RemoveWildcard lifts a wildcard block.
func (c *Client) RemoveWildcard(ctx context.Context, name string) error {
	_, err := c.Remove(ctx, domain.ListWildcard, name)
	return err
}

// ReloadLists makes the resolver pick up direct database edits.
func (c *Client) ReloadLists(ctx context.Context) error {
	_, err := c.exec(ctx, "restartdns", "reload-lists")
	return err
}
