package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type cli struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "memledger-cli",
		Short:         "MemLedger CLI tool",
		Long:          `A command line interface for interacting with the MemLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the MemLedger API")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(c.accountCmd(), c.transferCmd(), c.ledgerCmd())

	return rootCmd
}

func (c *cli) accountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	accountCmd.AddCommand(&cobra.Command{
		Use:   "create <account-id> <balance>",
		Short: "Create an account with an opening balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", args[1], err)
			}

			return c.call(cmd, http.MethodPost, "/api/v1/accounts", map[string]any{
				"account_id": args[0],
				"balance":    balance,
			})
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodDelete, "/api/v1/accounts", nil)
		},
	})

	return accountCmd
}

func (c *cli) transferCmd() *cobra.Command {
	var idempotencyKey string

	transferCmd := &cobra.Command{
		Use:   "transfer <from-account-id> <to-account-id> <amount>",
		Short: "Transfer money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}

			return c.callWithKey(cmd, http.MethodPost, "/api/v1/transfers", map[string]any{
				"account_from_id": args[0],
				"account_to_id":   args[1],
				"amount":          amount,
			}, idempotencyKey)
		},
	}

	transferCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")

	return transferCmd
}

func (c *cli) ledgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "total",
		Short: "Show the sum of all balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, http.MethodGet, "/api/v1/ledger/total", nil)
		},
	})

	return ledgerCmd
}

func (c *cli) call(cmd *cobra.Command, method, path string, payload any) error {
	return c.callWithKey(cmd, method, path, payload, "")
}

func (c *cli) callWithKey(cmd *cobra.Command, method, path string, payload any, idempotencyKey string) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(cmd.Context(), method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(bytes.TrimSpace(respBody)), 200))
	}

	if len(respBody) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), http.StatusText(resp.StatusCode))
		return nil
	}

	var decoded any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(respBody))
		return nil
	}

	return printJSON(cmd.OutOrStdout(), decoded)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n-3] + "..."
}
