package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/hci-accounts/cmd/cli/config"
	"github.com/crucial707/hci-accounts/cmd/cli/output"
	"github.com/crucial707/hci-accounts/cmd/cli/root"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Register, log in and list accounts",
	}

	usersCmd.AddCommand(registerCmd(), loginCmd(), listUsersCmd())
	root.GetRoot().AddCommand(usersCmd)
}

type account struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func credentialFlags(cmd *cobra.Command, username, password *string) {
	cmd.Flags().StringVarP(username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
}

func postCredentials(path, username, password string) (*http.Response, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	return config.HTTPClient.Post(config.APIURL()+path, "application/json", bytes.NewReader(body))
}

// apiError extracts the "error" field from a failed response, falling back to the raw body.
func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	var out struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &out) == nil && out.Error != "" {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, out.Error)
	}
	return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

// ==========================
// Register User
// ==========================
func registerCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := postCredentials("/register", username, password)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				return apiError(resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "User registered successfully! You can now login.")
			return nil
		},
	}
	credentialFlags(cmd, &username, &password)
	return cmd
}

// ==========================
// Login User
// ==========================
func loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print the post-login destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := postCredentials("/login", username, password)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}
			var result struct {
				RedirectURL string `json:"redirectUrl"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Login successful. Continue at %s\n", result.RedirectURL)
			return nil
		},
	}
	credentialFlags(cmd, &username, &password)
	return cmd
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := config.HTTPClient.Get(config.APIURL() + "/users")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}
			var users []account
			if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(users)
			}

			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{u.ID, u.Username, u.CreatedAt.Format(time.RFC3339)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "USERNAME", "CREATED"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}
