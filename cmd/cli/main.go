package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kasa-cli",
		Short: "Kasa CLI tool",
		Long:  `A command line interface for interacting with the Kasa API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Kasa API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Account commands
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	accountsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			listAccounts()
		},
	}

	accountsCmd.AddCommand(accountsListCmd)
	rootCmd.AddCommand(accountsCmd)

	// Rate commands
	rateCmd := &cobra.Command{
		Use:   "rate",
		Short: "Exchange rate operations",
	}

	rateCmd.AddCommand(rateRecordCmd())
	rateCmd.AddCommand(rateGetCmd())
	rateCmd.AddCommand(rateCrossCmd())
	rootCmd.AddCommand(rateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func checkConsistency() {
	status, body := apiGet("/api/v1/ledger/consistency")

	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	fmt.Printf("Checked accounts: %v\n", result["checked_accounts"])
}

func listAccounts() {
	status, body := apiGet("/api/v1/accounts/")
	if status != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Accounts []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Type     string `json:"type"`
			Currency string `json:"currency"`
			Balance  string `json:"balance"`
			Active   bool   `json:"active"`
		} `json:"accounts"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-20s %-10s %-8s %14s %s\n", "ID", "NAME", "TYPE", "CUR", "BALANCE", "ACTIVE")
	for _, acc := range result.Accounts {
		fmt.Printf("%-28s %-20s %-10s %-8s %14s %v\n",
			truncate(acc.ID, 28), truncate(acc.Name, 20), acc.Type, acc.Currency, acc.Balance, acc.Active)
	}
	fmt.Printf("Total: %d\n", result.Total)
}

func rateRecordCmd() *cobra.Command {
	var currency, date, buying, selling string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an exchange rate",
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]string{
				"currency": currency,
				"date":     date,
				"buying":   buying,
				"selling":  selling,
			}
			status, body := apiPost("/api/v1/rates/", payload)
			if status != http.StatusCreated {
				fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printBody(body)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "Currency code (e.g. USD)")
	cmd.Flags().StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "Rate date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&buying, "buying", "", "Buying rate")
	cmd.Flags().StringVar(&selling, "selling", "", "Selling rate")
	_ = cmd.MarkFlagRequired("currency")
	_ = cmd.MarkFlagRequired("buying")
	_ = cmd.MarkFlagRequired("selling")

	return cmd
}

func rateGetCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "get CURRENCY",
		Short: "Get an exchange rate",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/rates/" + args[0]
			if date != "" {
				path += "?date=" + date
			}
			status, body := apiGet(path)
			if status != http.StatusOK {
				fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printBody(body)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Rate date (YYYY-MM-DD), defaults to latest")

	return cmd
}

func rateCrossCmd() *cobra.Command {
	var from, to, date string

	cmd := &cobra.Command{
		Use:   "cross",
		Short: "Compute a cross rate between two currencies",
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/rates/cross?from=%s&to=%s", from, to)
			if date != "" {
				path += "&date=" + date
			}
			status, body := apiGet(path)
			if status != http.StatusOK {
				fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printBody(body)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source currency")
	cmd.Flags().StringVar(&to, "to", "", "Target currency")
	cmd.Flags().StringVar(&date, "date", "", "Rate date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func apiGet(path string) (int, []byte) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

func apiPost(path string, payload any) (int, []byte) {
	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Failed to encode payload: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

func printBody(body []byte) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		fmt.Println(string(body))
		return
	}
	printJSON(decoded)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}

	return s[:max-3] + "..."
}
