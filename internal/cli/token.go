package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raysh454/scanconfirm/internal/app"
	"github.com/raysh454/scanconfirm/internal/logging"
	"github.com/raysh454/scanconfirm/internal/model"
	"github.com/raysh454/scanconfirm/internal/token"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect or mint confirmation tokens",
	}
	cmd.AddCommand(newTokenInspectCmd(root), newTokenIssueCmd(root))
	return cmd
}

func newTokenInspectCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Show a token's claims and whether this service would accept it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			raw := strings.TrimSpace(args[0])
			if i := strings.LastIndex(raw, app.ConfirmPath); i >= 0 {
				raw = raw[i+len(app.ConfirmPath):]
			}

			// Inspect skips verification; the secret only has to be non-empty.
			secret := cfg.JWTSecret
			if secret == "" {
				secret = "unset"
			}
			codec, err := app.NewJobCodec(secret)
			if err != nil {
				return err
			}
			claims, err := codec.Inspect(raw)
			if err != nil {
				return err
			}

			verdict := "not checked (JWT_SECRET unset)"
			if cfg.JWTSecret != "" {
				verdict = verifyVerdict(codec, raw)
			}
			renderClaims(cmd.OutOrStdout(), claims, verdict)
			return nil
		},
	}
}

func verifyVerdict(codec *token.Codec[model.Job], raw string) string {
	_, err := codec.DecodeClaims(raw)
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, token.ErrExpiredToken):
		return "expired"
	default:
		return "invalid: " + err.Error()
	}
}

func renderClaims(w io.Writer, claims *token.Claims[model.Job], verdict string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Claim", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	job := claims.Payload
	table.Append([]string{"job id", job.ID})
	table.Append([]string{"email", job.Email})
	targets := job.Targets()
	for _, name := range job.TargetNames() {
		t := targets[name]
		value := t.URI
		if host := t.DisplayHost(); !strings.Contains(value, host) {
			value += " (" + host + ")"
		}
		table.Append([]string{name, value})
	}
	table.Append([]string{"issuer", claims.Issuer})
	if claims.IssuedAt != nil {
		table.Append([]string{"issued at", claims.IssuedAt.UTC().Format(time.RFC3339)})
	}
	if claims.ExpiresAt != nil {
		table.Append([]string{"expires at", claims.ExpiresAt.UTC().Format(time.RFC3339)})
	}
	table.Append([]string{"status", verdict})
	table.Render()
}

func newTokenIssueCmd(root *rootOptions) *cobra.Command {
	var req struct {
		email    string
		rustscan string
		zap      string
	}

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a confirmation link without sending mail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}
			codec, err := app.NewJobCodec(cfg.JWTSecret)
			if err != nil {
				return err
			}

			scan := model.ScanRequest{Email: req.email}
			if req.rustscan != "" {
				scan.Rustscan = &model.Target{URI: req.rustscan}
			}
			if req.zap != "" {
				scan.Zap = &model.Target{URI: req.zap}
			}

			logger := logging.NewLogger("ERROR", "cli")
			orch := app.NewOrchestrator(&app.Config{BaseURL: cfg.BaseURL(), TokenTTL: cfg.TokenTTL}, app.Deps{Codec: codec}, logger)
			issued, err := orch.Issue(cmd.Context(), scan)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", issued.Job.ID)
			fmt.Fprintf(out, "expires: %s\n", issued.ExpiresAt.UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "link:    %s\n", issued.Link)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.email, "email", "", "requester address")
	cmd.Flags().StringVar(&req.rustscan, "rustscan", "", "rustscan target uri")
	cmd.Flags().StringVar(&req.zap, "zap", "", "zap target uri")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
