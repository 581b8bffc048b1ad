// Command usertool manages gateway accounts directly in the database:
//
//	usertool create -email a@b.c -name "Budi" -role ADMIN -password secret
//	usertool reset-password -email a@b.c -password newsecret
//	usertool set-role -email a@b.c -role SUPER_ADMIN
//	usertool deactivate -email a@b.c
//	usertool activate -email a@b.c
//	usertool revoke-tokens -email a@b.c
//
// When -password is omitted it is read from the first line of stdin.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/config"
	"github.com/astacala/gateway/internal/database"
	"github.com/astacala/gateway/internal/logger"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/repository"
	"github.com/astacala/gateway/internal/utils"
)

var errUsage = errors.New("usage: usertool <create|reset-password|set-role|deactivate|activate|revoke-tokens> [flags]")

type tool struct {
	users      *repository.UserRepo
	tokens     *auth.TokenService
	bcryptCost int
	in         io.Reader
	out        io.Writer
}

func main() {
	cfg, err := config.LoadStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dsn := cfg.DBPath
	if !strings.EqualFold(cfg.DBDriver, database.DriverSQLite) {
		dsn = database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	db, err := database.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	t := &tool{
		users:      repository.NewUserRepo(db),
		tokens:     auth.NewTokenService(repository.NewTokenRepo(db), auth.TokenOptions{StoreTimeout: cfg.StoreTimeout}, log),
		bcryptCost: cfg.BcryptCost,
		in:         os.Stdin,
		out:        os.Stdout,
	}
	if err := t.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func (t *tool) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(t.out)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name (create)")
	role := fs.String("role", string(auth.RoleVolunteer), "role (create, set-role)")
	password := fs.String("password", "", "password; read from stdin when empty (create, reset-password)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return fmt.Errorf("%s: -email is required", cmd)
	}

	switch cmd {
	case "create":
		return t.create(ctx, *email, *name, *role, *password)
	case "reset-password":
		return t.resetPassword(ctx, *email, *password)
	case "set-role":
		return t.setRole(ctx, *email, *role)
	case "deactivate":
		return t.setActive(ctx, *email, false)
	case "activate":
		return t.setActive(ctx, *email, true)
	case "revoke-tokens":
		u, err := t.find(ctx, *email)
		if err != nil {
			return err
		}
		if err := t.tokens.RevokeAll(ctx, u.ID); err != nil {
			return err
		}
		fmt.Fprintf(t.out, "revoked all tokens of user %d\n", u.ID)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (t *tool) create(ctx context.Context, email, name, rawRole, password string) error {
	r, ok := auth.CanonicalRole(rawRole)
	if !ok {
		return fmt.Errorf("unknown role %q", rawRole)
	}
	hash, err := t.hash(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = email
	}
	id, err := t.users.Create(ctx, model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         string(r),
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(t.out, "created user %d (%s)\n", id, r)
	return nil
}

func (t *tool) resetPassword(ctx context.Context, email, password string) error {
	u, err := t.find(ctx, email)
	if err != nil {
		return err
	}
	hash, err := t.hash(password)
	if err != nil {
		return err
	}
	if err := t.users.SetPassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	// a new password invalidates every session
	if err := t.tokens.RevokeAll(ctx, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "password reset for user %d\n", u.ID)
	return nil
}

func (t *tool) setRole(ctx context.Context, email, rawRole string) error {
	r, ok := auth.CanonicalRole(rawRole)
	if !ok {
		return fmt.Errorf("unknown role %q", rawRole)
	}
	u, err := t.find(ctx, email)
	if err != nil {
		return err
	}
	if err := t.users.SetRole(ctx, u.ID, string(r)); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	fmt.Fprintf(t.out, "user %d is now %s\n", u.ID, r)
	return nil
}

func (t *tool) setActive(ctx context.Context, email string, active bool) error {
	u, err := t.find(ctx, email)
	if err != nil {
		return err
	}
	if err := t.users.SetActive(ctx, u.ID, active); err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if !active {
		if err := t.tokens.RevokeAll(ctx, u.ID); err != nil {
			return err
		}
	}
	fmt.Fprintf(t.out, "user %d active=%t\n", u.ID, active)
	return nil
}

func (t *tool) find(ctx context.Context, email string) (model.User, error) {
	u, err := t.users.FindUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (t *tool) hash(password string) (string, error) {
	if password == "" {
		line, err := bufio.NewReader(t.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return utils.HashPassword(password, t.bcryptCost)
}
