// Package menu is the interactive text front end. It only parses input,
// calls the services and renders their results.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// PasswordFunc reads a password after printing prompt.
type PasswordFunc func(prompt string) (string, error)

type Menu struct {
	svc      *services.Service
	in       *bufio.Scanner
	out      io.Writer
	password PasswordFunc
	logger   *log.Logger
}

type Option func(*Menu)

// WithPasswordReader replaces the default of reading passwords as plain lines.
func WithPasswordReader(fn PasswordFunc) Option {
	return func(m *Menu) { m.password = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(m *Menu) { m.logger = l }
}

func New(svc *services.Service, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.password == nil {
		m.password = m.prompt
	}
	if m.logger == nil {
		m.logger = log.FromContext(context.Background())
	}
	m.logger = m.logger.WithComponent(log.ComponentMenu)
	return m
}

// errQuit ends the session; returned when input is exhausted.
var errQuit = errors.New("quit")

// Run serves the menu until Exit or end of input.
func (m *Menu) Run(ctx context.Context) error {
	m.println("Welcome to Personal Finance Manager")
	for {
		m.println("\n1. Register\n2. Login\n3. Exit")
		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			return quitOK(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.register(ctx)
		case "2":
			var userID int64
			userID, err = m.login(ctx)
			if err == nil && userID != 0 {
				err = m.session(ctx, userID)
			}
		case "3":
			return nil
		default:
			m.println("Invalid choice.")
		}
		if err != nil {
			return quitOK(err)
		}
	}
}

func quitOK(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (m *Menu) session(ctx context.Context, userID int64) error {
	for {
		m.println("\n1. Add Transaction\n2. View Report\n3. Set Budget\n4. Backup Data\n5. Restore Data\n6. Logout")
		choice, err := m.prompt("Choose an option: ")
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.addTransaction(ctx, userID)
		case "2":
			m.showReport(ctx, userID)
		case "3":
			err = m.setBudget(ctx, userID)
		case "4":
			m.backup(ctx)
		case "5":
			m.restore(ctx)
		case "6":
			return nil
		default:
			m.println("Invalid choice.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) register(ctx context.Context) error {
	username, err := m.prompt("Enter username: ")
	if err != nil {
		return err
	}
	password, err := m.password("Enter password: ")
	if err != nil {
		return err
	}

	_, err = m.svc.Accounts.Register(ctx, username, password)
	switch {
	case err == nil:
		m.println("Registration successful.")
	case errors.Is(err, core.ErrDuplicateUsername):
		m.println("Username already exists.")
	default:
		m.fail(ctx, log.OpRegister, err)
	}
	return nil
}

func (m *Menu) login(ctx context.Context) (int64, error) {
	username, err := m.prompt("Enter username: ")
	if err != nil {
		return 0, err
	}
	password, err := m.password("Enter password: ")
	if err != nil {
		return 0, err
	}

	id, ok, err := m.svc.Accounts.Authenticate(ctx, username, password)
	if err != nil {
		m.fail(ctx, log.OpLogin, err)
		return 0, nil
	}
	if !ok {
		m.println("Invalid credentials.")
		return 0, nil
	}
	m.println("Login successful.")
	return id, nil
}

func (m *Menu) addTransaction(ctx context.Context, userID int64) error {
	var in services.NewTransaction
	in.UserID = userID

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter amount: ", &in.Amount},
		{"Enter category (e.g., Food, Rent): ", &in.Category},
		{"Enter type (income/expense): ", &in.Kind},
		{"Enter date (YYYY-MM-DD): ", &in.Date},
	}
	for _, f := range fields {
		v, err := m.prompt(f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	rec, err := m.svc.RecordTransaction(ctx, in)
	if err != nil {
		m.fail(ctx, log.OpAdd, err)
		return nil
	}
	m.println("Transaction added.")
	if rec.Overage != nil {
		m.println(BudgetWarning(*rec.Overage))
	}
	return nil
}

func (m *Menu) showReport(ctx context.Context, userID int64) {
	r, err := m.svc.Reports.Report(ctx, userID)
	if err != nil {
		m.fail(ctx, log.OpReport, err)
		return
	}
	m.println(RenderReport(r))
}

func (m *Menu) setBudget(ctx context.Context, userID int64) error {
	category, err := m.prompt("Enter category to set budget for: ")
	if err != nil {
		return err
	}
	limit, err := m.prompt("Enter monthly limit for this category: ")
	if err != nil {
		return err
	}

	if err := m.svc.Budgets.SetBudget(ctx, userID, category, limit); err != nil {
		m.fail(ctx, log.OpBudget, err)
		return nil
	}
	m.println("Budget set successfully.")
	return nil
}

func (m *Menu) backup(ctx context.Context) {
	path, err := m.svc.Backup(ctx)
	if err != nil {
		m.fail(ctx, log.OpBackup, err)
		return
	}
	m.println("Backup created as " + path)
}

func (m *Menu) restore(ctx context.Context) {
	if err := m.svc.Restore(ctx); err != nil {
		m.fail(ctx, log.OpRestore, err)
		return
	}
	m.println("Database restored from backup.")
}

// fail reports err to the user. Validation problems are shown as such;
// anything else is logged too.
func (m *Menu) fail(ctx context.Context, op string, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		m.println("Invalid input: " + verr.Error())
		return
	}
	if errors.Is(err, core.ErrUnknownUser) {
		m.println("Unknown user. Please log in again.")
		return
	}
	m.logger.ErrorContext(ctx, "Menu operation failed", log.FieldOperation, op, log.FieldError, err)
	m.println("Error: " + err.Error())
}

func (m *Menu) prompt(p string) (string, error) {
	fmt.Fprint(m.out, p)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errQuit
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

// BudgetWarning renders an overage the way the menu shows it.
func BudgetWarning(o core.Overage) string {
	return fmt.Sprintf("Warning: You have exceeded your budget for %s by %s.", o.Category, o.Amount)
}

// RenderReport renders the three report lines.
func RenderReport(r core.Report) string {
	return fmt.Sprintf("Total Income: %s\nTotal Expenses: %s\nSavings: %s", r.Income, r.Expense, r.Savings)
}
