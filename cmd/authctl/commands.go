package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/http/server"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/security/secretbox"
	"github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store"
	"github.com/dropDatabas3/authcore/internal/util/atomicwrite"
	"github.com/dropDatabas3/authcore/internal/validation"
)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	configPath := envOr("CONFIG_PATH", "")

	loadConfig := func() (*config.Config, error) {
		return config.Load(configPath)
	}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Herramientas de operador para authcore",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Path al YAML de config (env CONFIG_PATH)")

	root.AddCommand(
		newHashPasswordCmd(loadConfig),
		newGenSecretCmd(),
		newEncryptCmd(),
		newIssueTokenCmd(loadConfig),
		newInspectTokenCmd(loadConfig),
		newMigrateCmd(loadConfig),
	)
	return root
}

// hash-password: lee la contraseña de stdin (una línea), valida política y
// blacklist y escribe el digest hex para el registro de usuarios.
func newHashPasswordCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Genera el password_hash (hex) de un usuario; la contraseña se lee de stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user-id es requerido")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pwd, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("leyendo contraseña: %w", err)
			}
			pwd = strings.TrimRight(pwd, "\r\n")

			bl, err := password.LoadBlacklist(cfg.Security.PasswordBlacklistPath)
			if err != nil {
				return fmt.Errorf("blacklist: %w", err)
			}
			if err := server.PolicyFor(cfg).Check(pwd, bl); err != nil {
				return err
			}

			digest, err := server.HasherFor(cfg).Hash(pwd, password.SaltForUser(userID))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(digest))
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user-id", 0, "ID del usuario (deriva el salt)")
	return cmd
}

func newGenSecretCmd() *cobra.Command {
	var (
		n   int
		out string
	)
	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Genera un secreto de firma aleatorio (base64url)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < config.MinSecretLength {
				return fmt.Errorf("--bytes debe ser >= %d", config.MinSecretLength)
			}
			s, err := token.RandomString(n)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			if err := atomicwrite.WriteFile(out, []byte(s+"\n"), 0o600); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "secret written to", out)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "bytes", 48, "Bytes aleatorios")
	cmd.Flags().StringVar(&out, "out", "", "Escribir a este archivo (0600) en vez de stdout")
	return cmd
}

// encrypt: lee un valor de stdin y lo imprime como "enc:..." para la config
// (storage.dsn, cache.redis.password, token.secret).
func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt",
		Short: "Cifra un valor de config con " + secretbox.EnvVar + " (lee stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := secretbox.FromEnv()
			if err != nil {
				return err
			}
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			plain := strings.TrimRight(string(b), "\r\n")
			if plain == "" {
				return errors.New("valor vacío en stdin")
			}
			sealed, err := box.Seal(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}

func parsePurpose(s string) (token.Purpose, error) {
	switch p := token.Purpose(s); p {
	case token.PurposeAccess, token.PurposeLogin, token.PurposeCode:
		return p, nil
	}
	return "", fmt.Errorf("purpose inválido %q (access|login|code)", s)
}

func newIssueTokenCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		purpose, clientID, scope, redirectURI string
		userID                                int64
		ttl                                   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Emite un token firmado con el secreto configurado (debug / pruebas)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePurpose(purpose)
			if err != nil {
				return err
			}
			scopes := validation.SplitScope(scope)
			for _, s := range scopes {
				if !validation.ValidScopeName(s) {
					return fmt.Errorf("scope inválido %q", s)
				}
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			codec, err := token.NewCodec([]byte(cfg.Token.Secret))
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Token.AccessTTL
			}

			var opts []token.IssueOption
			if redirectURI != "" {
				opts = append(opts, token.WithRedirectURI(redirectURI))
			}
			tok, err := codec.Issue(p, clientID, userID, scopes, ttl, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&purpose, "purpose", string(token.PurposeAccess), "access|login|code")
	f.StringVar(&clientID, "client-id", "", "client_id ligado al token")
	f.Int64Var(&userID, "user-id", 0, "ID del usuario")
	f.StringVar(&scope, "scope", "", "Scopes separados por espacio")
	f.StringVar(&redirectURI, "redirect-uri", "", "redirect_uri (codes)")
	f.DurationVar(&ttl, "ttl", 0, "Validez (default token.access_ttl)")
	return cmd
}

type inspectOutput struct {
	Purpose     token.Purpose `json:"purpose"`
	ClientID    string        `json:"client_id,omitempty"`
	UserID      int64         `json:"user_id"`
	Scope       string        `json:"scope,omitempty"`
	RedirectURI string        `json:"redirect_uri,omitempty"`
	JTI         string        `json:"jti"`
	IssuedAt    time.Time     `json:"issued_at"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Expired     bool          `json:"expired"`
}

func newInspectTokenCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var purpose string
	cmd := &cobra.Command{
		Use:   "inspect-token <token>",
		Short: "Verifica un token y muestra su payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePurpose(purpose)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			codec, err := token.NewCodec([]byte(cfg.Token.Secret))
			if err != nil {
				return err
			}

			payload, err := codec.Parse(strings.TrimSpace(args[0]), p)
			expired := errors.Is(err, token.ErrExpiredToken)
			if err != nil && !expired {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(inspectOutput{
				Purpose:     payload.Purpose,
				ClientID:    payload.ClientID,
				UserID:      payload.UserID,
				Scope:       payload.Scope(),
				RedirectURI: payload.RedirectURI,
				JTI:         payload.ID,
				IssuedAt:    payload.IssuedTime().UTC(),
				ExpiresAt:   payload.ExpiresTime().UTC(),
				Expired:     expired,
			})
		},
	}
	cmd.Flags().StringVar(&purpose, "purpose", string(token.PurposeAccess), "Propósito esperado: access|login|code")
	return cmd
}

func newMigrateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas al store SQL configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sc := server.StoreConfig(cfg)
			sc.Migrate = false
			sc.ClientCacheTTL = 0

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			st, err := store.Open(ctx, sc)
			if err != nil {
				return err
			}
			defer st.Close()

			m, ok := st.(store.Migrator)
			if !ok {
				return fmt.Errorf("driver %q no soporta migraciones", sc.Driver)
			}
			applied, err := m.Migrate(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(w, "sin migraciones pendientes")
				return nil
			}
			for _, a := range applied {
				fmt.Fprintln(w, "applied", a)
			}
			return nil
		},
	}
}
