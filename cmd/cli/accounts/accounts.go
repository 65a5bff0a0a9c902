package accounts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsokolov/noteblog/cmd/cli/config"
	"github.com/gsokolov/noteblog/cmd/cli/output"
)

// ==========================
// Init Accounts
// ==========================
func InitAccounts(rootCmd *cobra.Command) {

	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts, profiles and follows",
	}

	accountsCmd.AddCommand(
		signupCmd(),
		loginCmd(),
		logoutCmd(),
		listAccountsCmd(),
		getProfileCmd(),
		followsCmd(),
		followCmd(),
	)

	rootCmd.AddCommand(accountsCmd)
}

// ==========================
// SIGNUP
// ==========================
func signupCmd() *cobra.Command {

	var username, password, firstName, lastName, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long:  "Register a new account. The API creates the profile and its self-follow automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			payload := map[string]string{
				"username":   username,
				"password":   password,
				"first_name": firstName,
				"last_name":  lastName,
				"email":      email,
			}
			body, _ := json.Marshal(payload)

			resp, err := http.Post(config.APIURL()+"/accounts/signup/", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			fmt.Println("Account created. You can now login.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

// ==========================
// LOGIN
// ==========================
func loginCmd() *cobra.Command {

	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login and store a JWT token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			payload := map[string]string{
				"username": username,
				"password": password,
			}
			body, _ := json.Marshal(payload)

			resp, err := http.Post(config.APIURL()+"/auth/login", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			var result struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return err
			}
			if result.Token == "" {
				return fmt.Errorf("token not returned by API")
			}

			if err := config.SaveToken(result.Token); err != nil {
				return err
			}

			fmt.Println("Login successful! JWT token saved locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

// ==========================
// LOGOUT
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally saved JWT token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RemoveToken(); err != nil {
				return err
			}
			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// LIST (ranked by notes written)
// ==========================
func listAccountsCmd() *cobra.Command {

	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts ranked by notes written",
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/accounts/profiles/", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out struct {
				Count   int `json:"count"`
				Results []struct {
					User        string `json:"user"`
					FollowCount int    `json:"follow_count"`
					NotesCount  int    `json:"notes_count"`
				} `json:"results"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				fmt.Println(err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(out.Results, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(out.Results))
			for _, a := range out.Results {
				rows = append(rows, []interface{}{a.User, a.FollowCount, a.NotesCount})
			}
			output.RenderTable([]string{"USER", "FOLLOWS", "NOTES"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")

	return cmd
}

// ==========================
// GET PROFILE
// ==========================
func getProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [profile-id]",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/accounts/profiles/"+args[0]+"/", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}
}

// ==========================
// FOLLOWS
// ==========================
func followsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follows [profile-id]",
		Short: "List who a profile follows",
		Run: func(cmd *cobra.Command, args []string) {

			if len(args) != 1 {
				fmt.Println("profile id is required")
				return
			}

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/accounts/profiles/"+args[0]+"/follows/", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out struct {
				User    string `json:"user"`
				Follows []struct {
					User string `json:"user"`
				} `json:"follows"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				fmt.Println(err)
				return
			}

			rows := make([][]interface{}, 0, len(out.Follows))
			for _, f := range out.Follows {
				rows = append(rows, []interface{}{f.User})
			}
			output.RenderTable([]string{"FOLLOWS"}, rows)
		},
	}
}

// ==========================
// FOLLOW (replace the whole follow set)
// ==========================
func followCmd() *cobra.Command {

	var follows []int

	cmd := &cobra.Command{
		Use:   "follow [profile-id]",
		Short: "Replace a profile's follow set",
		Long: `Replace the full follow set of your own profile. Pass every profile id
to keep, your own included; ids left out are unfollowed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("profile id must be a number")
			}

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			payload := map[string]interface{}{"follows": follows}
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("PUT", config.APIURL()+"/accounts/profiles/"+args[0]+"/", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&follows, "ids", nil, "full list of profile ids to follow")

	return cmd
}
