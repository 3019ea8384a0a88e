// ABOUTME: serve, init, bootstrap, health and token subcommands
// ABOUTME: Each command loads the config itself so flags can point at any file

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wox1e/LibraryAPI/internal/config"
	"github.com/Wox1e/LibraryAPI/internal/server"
	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

func loadConfig(configPath func() string) (*config.Config, string, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

func serveCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cyan := color.New(color.FgCyan)
			cyan.Print(banner)
			gray := color.New(color.FgHiBlack)
			gray.Printf("    version: %s\n\n", version)

			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.Logging)

			green := color.New(color.FgGreen)
			green.Print("    ▶ ")
			fmt.Printf("Config:    %s\n", path)
			green.Print("    ▶ ")
			fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
			green.Print("    ▶ ")
			fmt.Printf("Database:  %s\n", cfg.Database.Driver)
			if cfg.Metrics.Enabled {
				green.Print("    ▶ ")
				fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
			}
			fmt.Println()

			logger.Info("starting library-api",
				"config", path,
				"http_addr", cfg.Server.HTTPAddr,
				"driver", cfg.Database.Driver,
			)

			srv, err := server.New(cmd.Context(), server.Options{Config: cfg, Logger: logger})
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return srv.Run(cmd.Context())
		},
	}
}

func initCmd(configPath func() string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("  ✓ Created config: %s\n", path)
			fmt.Println()
			fmt.Println("  Set LIBRARY_JWT_SECRET (at least 32 bytes) and run:")
			fmt.Println("    library-api bootstrap --username admin --password ...")
			fmt.Println("    library-api serve")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

// bootstrapOptions are the flags of the bootstrap command.
type bootstrapOptions struct {
	username   string
	password   string
	firstName  string
	secondName string
	birthDate  string
}

func bootstrapCmd(configPath func() string) *cobra.Command {
	var opts bootstrapOptions
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first admin account",
		Long: `Create the first admin account.

Fails if an admin already exists. If the username belongs to an existing
reader, that account is promoted instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			s, err := server.OpenStore(cmd.Context(), cfg, setupLogger(config.LoggingConfig{Level: "error"}))
			if err != nil {
				return err
			}
			defer s.Close()

			user, promoted, err := bootstrapAdmin(cmd.Context(), s, opts)
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen)
			if promoted {
				green.Printf("  ✓ Promoted %s to admin (id %d)\n", user.Username, user.ID)
			} else {
				green.Printf("  ✓ Created admin %s (id %d)\n", user.Username, user.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "Admin username (required)")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "Admin password, 8 to 32 characters")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "Library", "First name")
	cmd.Flags().StringVar(&opts.secondName, "second-name", "Admin", "Second name")
	cmd.Flags().StringVar(&opts.birthDate, "birth-date", "1970-01-01", "Birth date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// bootstrapAdmin creates or promotes the first admin. It refuses to run once
// any admin exists.
func bootstrapAdmin(ctx context.Context, s store.UserStore, opts bootstrapOptions) (*store.User, bool, error) {
	opts.username = strings.TrimSpace(opts.username)
	if n := len([]rune(opts.username)); n < 2 || n > 16 {
		return nil, false, errors.New("username must be between 2 and 16 characters")
	}

	admins, err := s.CountAdmins(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("counting admins: %w", err)
	}
	if admins > 0 {
		return nil, false, fmt.Errorf("bootstrap already complete: %d admin(s) exist", admins)
	}

	existing, err := s.GetUserByUsername(ctx, opts.username)
	switch {
	case err == nil:
		if err := s.SetUserAdmin(ctx, existing.ID, true); err != nil {
			return nil, false, fmt.Errorf("promoting user: %w", err)
		}
		existing.IsAdmin = true
		return existing, true, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, false, fmt.Errorf("looking up user: %w", err)
	}

	if n := len([]rune(opts.password)); n < 8 || n > 32 {
		return nil, false, errors.New("password must be between 8 and 32 characters")
	}
	birth, err := time.Parse(store.DateLayout, opts.birthDate)
	if err != nil {
		return nil, false, fmt.Errorf("invalid birth date: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		FirstName:    opts.firstName,
		SecondName:   opts.secondName,
		BirthDate:    birth,
		Username:     opts.username,
		PasswordHash: string(hash),
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("creating user: %w", err)
	}
	if err := s.SetUserAdmin(ctx, user.ID, true); err != nil {
		return nil, false, fmt.Errorf("granting admin: %w", err)
	}
	user.IsAdmin = true
	return user, false, nil
}

func healthCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the readiness of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return checkHealth(cmd.Context(), cmd.OutOrStdout(), healthURL(cfg.Server.HTTPAddr))
		},
	}
}

// healthURL builds the readiness URL, dialing loopback for wildcard binds.
func healthURL(addr string) string {
	if strings.HasPrefix(addr, "0.0.0.0:") {
		addr = "127.0.0.1:" + strings.TrimPrefix(addr, "0.0.0.0:")
	} else if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/health/ready"
}

func checkHealth(ctx context.Context, out io.Writer, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	fmt.Fprintln(out, "healthy")
	return nil
}

func tokenCmd(configPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token with the configured secret and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			tokens, err := token.NewManager(cfg.TokenConfig())
			if err != nil {
				return err
			}
			return inspectToken(cmd.OutOrStdout(), tokens, args[0])
		},
	})
	return cmd
}

// tokenReport is what `token inspect` prints.
type tokenReport struct {
	Result    string    `json:"result"`
	UserID    int64     `json:"user_id,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	Use       token.Use `json:"token_use,omitempty"`
	ID        string    `json:"jti,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func inspectToken(out io.Writer, v interface {
	Verify(string) (*token.Claims, error)
}, raw string) error {
	claims, err := v.Verify(strings.TrimSpace(raw))
	report := tokenReport{Result: token.Kind(err)}
	if claims != nil {
		report.UserID = claims.UserID
		report.IsAdmin = claims.IsAdmin
		report.Use = claims.Use
		report.ID = claims.ID
		report.Issuer = claims.Issuer
		if claims.IssuedAt != nil {
			report.IssuedAt = claims.IssuedAt.Time.UTC()
		}
		report.ExpiresAt = claims.ExpiresAtTime().UTC()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		return encErr
	}
	if err != nil {
		return fmt.Errorf("token is not valid: %w", err)
	}
	return nil
}
