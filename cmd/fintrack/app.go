package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"fintrack/internal/backend"
	bootstrap "fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/menu"
	"fintrack/internal/services"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

// state is built in Before and released in After.
type state struct {
	in     io.Reader
	out    io.Writer
	logOut io.Writer

	cfg     *config.Config
	logger  *log.Logger
	backend *backend.BackendResult
}

func (s *state) svc() *services.Service {
	return s.backend.Service
}

var errLoginFailed = errors.New("invalid credentials")

var userFlags = []cli.Flag{
	&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "account name", Required: true},
	&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "account password", EnvVars: []string{"FINTRACK_PASSWORD"}},
}

func newApp(in io.Reader, out, logOut io.Writer) *cli.App {
	st := &state{in: in, out: out, logOut: logOut}

	return &cli.App{
		Name:      "fintrack",
		Usage:     "personal finance tracker",
		Writer:    out,
		ErrWriter: logOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML configuration file", EnvVars: []string{"CONFIG_FILE"}},
			&cli.StringFlag{Name: "db", Usage: "SQLite database file", EnvVars: []string{"SQLITE_DB_PATH"}},
		},
		Before: st.before,
		After:  st.after,
		Action: st.runMenu,
		Commands: []*cli.Command{
			{
				Name:   "menu",
				Usage:  "interactive menu (default)",
				Action: st.runMenu,
			},
			{
				Name:  "register",
				Usage: "create an account",
				Flags: userFlags,
				Action: func(c *cli.Context) error {
					id, err := st.svc().Accounts.Register(c.Context, c.String("username"), c.String("password"))
					if err != nil {
						return err
					}
					fmt.Fprintf(st.out, "Registration successful. User id %d.\n", id)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "record a transaction",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Required: true},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Required: true},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "income or expense", Required: true},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "YYYY-MM-DD, defaults to today"},
				}, userFlags...),
				Action: st.add,
			},
			{
				Name:  "budget",
				Usage: "set a monthly category budget",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Required: true},
					&cli.StringFlag{Name: "limit", Aliases: []string{"l"}, Required: true},
				}, userFlags...),
				Action: st.budget,
			},
			{
				Name:   "report",
				Usage:  "show income, expenses and savings",
				Flags:  userFlags,
				Action: st.report,
			},
			{
				Name:  "backup",
				Usage: "copy the database aside",
				Action: func(c *cli.Context) error {
					path, err := st.svc().Backup(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintln(st.out, "Backup created as "+path)
					return nil
				},
			},
			{
				Name:  "restore",
				Usage: "replace the database with its backup",
				Action: func(c *cli.Context) error {
					if err := st.svc().Restore(c.Context); err != nil {
						return err
					}
					fmt.Fprintln(st.out, "Database restored from backup.")
					return nil
				},
			},
			{
				Name:   "export",
				Usage:  "append the user's transactions missing from the spreadsheet",
				Flags:  userFlags,
				Action: st.export,
			},
		},
	}
}

func (s *state) before(c *cli.Context) error {
	if v := c.String("config"); v != "" {
		os.Setenv("CONFIG_FILE", v)
	}
	if v := c.String("db"); v != "" {
		os.Setenv("SQLITE_DB_PATH", v)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = bootstrap.SetupLogger(cfg, s.logOut)
	c.Context = log.WithLogger(c.Context, s.logger)

	s.backend, err = bootstrap.InitBackend(c.Context, s.logger, cfg)
	return err
}

func (s *state) after(*cli.Context) error {
	if s.backend == nil || s.backend.Cleanup == nil {
		return nil
	}
	return s.backend.Cleanup()
}

func (s *state) runMenu(c *cli.Context) error {
	opts := []menu.Option{menu.WithLogger(s.logger)}
	if f, ok := s.in.(*os.File); ok {
		opts = append(opts, menu.WithPasswordReader(menu.TerminalPasswords(f, s.out)))
	}
	return menu.New(s.svc(), s.in, s.out, opts...).Run(c.Context)
}

func (s *state) login(c *cli.Context) (int64, error) {
	id, ok, err := s.svc().Accounts.Authenticate(c.Context, c.String("username"), c.String("password"))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errLoginFailed
	}
	return id, nil
}

func (s *state) add(c *cli.Context) error {
	userID, err := s.login(c)
	if err != nil {
		return err
	}

	rec, err := s.svc().RecordTransaction(c.Context, services.NewTransaction{
		UserID:   userID,
		Amount:   c.String("amount"),
		Category: c.String("category"),
		Kind:     c.String("type"),
		Date:     c.String("date"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Transaction added. Id %d.\n", rec.Transaction.ID)
	if rec.Overage != nil {
		fmt.Fprintln(s.out, menu.BudgetWarning(*rec.Overage))
	}
	return nil
}

func (s *state) budget(c *cli.Context) error {
	userID, err := s.login(c)
	if err != nil {
		return err
	}
	if err := s.svc().Budgets.SetBudget(c.Context, userID, c.String("category"), c.String("limit")); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Budget set successfully.")
	return nil
}

func (s *state) report(c *cli.Context) error {
	userID, err := s.login(c)
	if err != nil {
		return err
	}
	r, err := s.svc().Reports.Report(c.Context, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, menu.RenderReport(r))
	return nil
}

func (s *state) export(c *cli.Context) error {
	if !s.cfg.SheetsEnabled() {
		return errors.New("export requires GOOGLE_SPREADSHEET_ID")
	}
	userID, err := s.login(c)
	if err != nil {
		return err
	}

	client, err := gsheet.New(c.Context, gsheet.Config{
		SpreadsheetID:      s.cfg.GoogleSpreadsheetID,
		SheetName:          s.cfg.GoogleSheetName,
		ServiceAccountJSON: s.cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: s.cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}

	n, err := worker.NewSyncWorker(s.backend.Store, client).SyncUser(c.Context, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Exported %d transactions.\n", n)
	return nil
}
