// Package command implements the admin command surface:
//
//	add <domain>
//	del <domain-or-index>
//	list
//	logging on|off
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jgivc/w1r3catcher/internal/adapter/sink"
	"github.com/jgivc/w1r3catcher/internal/common"
)

const (
	cmdAdd     = "add"
	cmdDel     = "del"
	cmdList    = "list"
	cmdLogging = "logging"
)

type DomainRegistry interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, candidate string) (string, bool, error)
	Remove(ctx context.Context, selector string) (string, error)
}

type LoggingFlag interface {
	Set(ctx context.Context, on bool) error
}

type Executor struct {
	name     string
	registry DomainRegistry
	flag     LoggingFlag
	log      *slog.Logger
}

func NewExecutor(name string, registry DomainRegistry, flag LoggingFlag, log *slog.Logger) *Executor {
	return &Executor{
		name:     name,
		registry: registry,
		flag:     flag,
		log:      log.With(slog.String("item", "CommandExecutor")),
	}
}

func (e *Executor) Usage() string {
	return fmt.Sprintf("usage: /%s add <domain> | del {<domain> | <position>} | list | logging {on | off}", e.name)
}

// Execute runs one command line and reports to out. Unknown commands and
// wrong arity return common.ErrUsage.
func (e *Executor) Execute(ctx context.Context, line string, out sink.Sink) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		out.Printf("%s", e.Usage())

		return common.ErrUsage
	}

	e.log.Debug("Execute", slog.String("command", args[0]), slog.Int("args", len(args)-1))

	switch args[0] {
	case cmdAdd:
		if len(args) == 2 {
			return e.add(ctx, args[1], out)
		}
	case cmdDel:
		if len(args) == 2 {
			return e.del(ctx, args[1], out)
		}
	case cmdList:
		if len(args) == 1 {
			return e.list(ctx, out)
		}
	case cmdLogging:
		if len(args) == 2 && (args[1] == "on" || args[1] == "off") {
			return e.logging(ctx, args[1] == "on", out)
		}
	default:
		out.Printf("bad option while using /%s command, try '/help %s' for more info", e.name, e.name)

		return common.ErrUsage
	}

	out.Printf("%s", e.Usage())

	return common.ErrUsage
}

func (e *Executor) add(ctx context.Context, candidate string, out sink.Sink) error {
	domain, added, err := e.registry.Add(ctx, candidate)
	if err != nil {
		if errors.Is(err, common.ErrEmptyDomain) || errors.Is(err, common.ErrBadDomain) {
			out.Printf("Cannot add %s: not a domain", candidate)

			return err
		}

		out.Printf("Cannot add %s: %s", candidate, err)

		return err
	}

	if !added {
		out.Printf("url %s already present", domain)

		return nil
	}

	out.Printf("url %s successfully added", domain)

	return nil
}

func (e *Executor) del(ctx context.Context, selector string, out sink.Sink) error {
	removed, err := e.registry.Remove(ctx, selector)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidIndex):
			out.Printf("Wrong index number")
		case errors.Is(err, common.ErrNotFound):
			out.Printf("Couldn't find %s", selector)
		default:
			out.Printf("Cannot delete %s: %s", selector, err)
		}

		return err
	}

	out.Printf("Successfully deleted %s", removed)

	return nil
}

func (e *Executor) list(ctx context.Context, out sink.Sink) error {
	domains, err := e.registry.List(ctx)
	if err != nil {
		out.Printf("Cannot list domains: %s", err)

		return err
	}

	if len(domains) == 0 {
		out.Printf("No domains added so far")

		return nil
	}

	for i, domain := range domains {
		out.Printf("%d: %s", i+1, domain)
	}

	return nil
}

func (e *Executor) logging(ctx context.Context, on bool, out sink.Sink) error {
	if err := e.flag.Set(ctx, on); err != nil {
		out.Printf("Cannot change logging: %s", err)

		return err
	}

	if on {
		out.Printf("logging enabled")
	} else {
		out.Printf("logging disabled")
	}

	return nil
}
