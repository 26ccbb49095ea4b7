package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/app"
	"github.com/yungbote/cohort-backend/internal/platform/authtoken"
	"github.com/yungbote/cohort-backend/internal/platform/dbctx"
	"github.com/yungbote/cohort-backend/internal/platform/logger"
)

var (
	errHelp         = errors.New("help provided")
	errInconsistent = errors.New("course orderings are inconsistent")
)

type commandLine struct {
	out  io.Writer
	cfg  app.Config
	log  *logger.Logger
	svcs app.Services
	now  func() time.Time

	// connect opens the database and fills svcs; nil when svcs is preset.
	connect func() error
	closeDB func() error
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                          - create or update the schema")
	fmt.Fprintln(cli.out, "  token -sub UUID [-role admin|learner] [-ttl 24h] - issue an API token")
	fmt.Fprintln(cli.out, "  check -course UUID                               - report ordering violations")
	fmt.Fprintln(cli.out, "  renumber -course UUID                            - rewrite orderings as 0..n-1")
	fmt.Fprintln(cli.out, "  publish-due [-at RFC3339]                        - publish scheduled tasks now")
	fmt.Fprintln(cli.out, "  unlocks -user UUID -cohort UUID -course UUID [-at RFC3339] - show a learner's unlock dates")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	fs := flag.NewFlagSet(args[1], flag.ContinueOnError)
	fs.SetOutput(cli.out)

	switch args[1] {
	case "migrate":
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.open(); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "schema is up to date")
		return nil

	case "token":
		sub := fs.String("sub", "", "subject user id")
		role := fs.String("role", "admin", "admin or learner")
		ttl := fs.Duration("ttl", cli.cfg.TokenTTL, "token lifetime")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		id, err := parseID(fs, "sub", *sub)
		if err != nil {
			return err
		}
		return cli.token(id, *role, *ttl)

	case "check", "renumber":
		course := fs.String("course", "", "course id")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		id, err := parseID(fs, "course", *course)
		if err != nil {
			return err
		}
		if err := cli.open(); err != nil {
			return err
		}
		if args[1] == "check" {
			return cli.check(id)
		}
		return cli.renumber(id)

	case "publish-due":
		at := fs.String("at", "", "publish as of this RFC 3339 time (default now)")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		when, err := cli.parseAt(*at)
		if err != nil {
			return err
		}
		if err := cli.open(); err != nil {
			return err
		}
		return cli.publishDue(when)

	case "unlocks":
		user := fs.String("user", "", "learner user id")
		cohort := fs.String("cohort", "", "cohort id")
		course := fs.String("course", "", "course id")
		at := fs.String("at", "", "evaluate as of this RFC 3339 time (default now)")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		userID, err := parseID(fs, "user", *user)
		if err != nil {
			return err
		}
		cohortID, err := parseID(fs, "cohort", *cohort)
		if err != nil {
			return err
		}
		courseID, err := parseID(fs, "course", *course)
		if err != nil {
			return err
		}
		when, err := cli.parseAt(*at)
		if err != nil {
			return err
		}
		if err := cli.open(); err != nil {
			return err
		}
		return cli.unlocks(userID, cohortID, courseID, when)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) open() error {
	if cli.connect == nil {
		return nil
	}
	connect := cli.connect
	cli.connect = nil
	if cli.log != nil {
		cli.log.Debug("Opening store", "driver", cli.cfg.DB.Driver)
	}
	return connect()
}

func (cli *commandLine) close() {
	if cli.closeDB != nil {
		_ = cli.closeDB()
		cli.closeDB = nil
	}
}

func (cli *commandLine) clock() time.Time {
	if cli.now != nil {
		return cli.now()
	}
	return time.Now().UTC()
}

func (cli *commandLine) parseAt(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return cli.clock(), nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("-at: %w", err)
	}
	return t.UTC(), nil
}

func parseID(fs *flag.FlagSet, name, raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		fs.Usage()
		return uuid.Nil, errHelp
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("-%s: %w", name, err)
	}
	return id, nil
}

func (cli *commandLine) dbc() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func (cli *commandLine) token(sub uuid.UUID, role string, ttl time.Duration) error {
	tok, err := authtoken.Issue([]byte(cli.cfg.JWTSecretKey), sub, role, ttl, cli.clock())
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, tok)
	return nil
}

func (cli *commandLine) check(courseID uuid.UUID) error {
	report, err := cli.svcs.Structure.Check(cli.dbc(), courseID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.OK {
		return errInconsistent
	}
	return nil
}

func (cli *commandLine) renumber(courseID uuid.UUID) error {
	changes, err := cli.svcs.Structure.Renumber(cli.dbc(), courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "renumbered %d rows\n", len(changes))
	return nil
}

func (cli *commandLine) publishDue(at time.Time) error {
	n, err := cli.svcs.Task.PublishDue(cli.dbc(), at)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "published %d tasks\n", n)
	return nil
}

func (cli *commandLine) unlocks(userID, cohortID, courseID uuid.UUID, at time.Time) error {
	tree, err := cli.svcs.Learner.GetCourse(cli.dbc(), userID, cohortID, courseID, at)
	if err != nil {
		return err
	}
	for _, m := range tree.Milestones {
		when := "open"
		if m.UnlockAt != nil {
			when = m.UnlockAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(cli.out, "%d\t%s\t%d tasks\t%s\n", m.Ordering, m.Name, len(m.Tasks), when)
	}
	return nil
}
