package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gsokolov/noteblog/cmd/cli/config"
	"github.com/gsokolov/noteblog/cmd/cli/output"
)

// ==========================
// Init Feed
// ==========================
func InitFeed(rootCmd *cobra.Command) {
	rootCmd.AddCommand(feedCmd())
}

// feedCmd lists notes by everyone the logged-in profile follows.
func feedCmd() *cobra.Command {

	var readPosts int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show your feed",
		Long:  "List notes authored by everyone you follow, freshest first. Use --read-posts to narrow to notes a given profile has read.",
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			target := config.APIURL() + "/feed/"
			if readPosts > 0 {
				target += "?read_posts=" + url.QueryEscape(strconv.Itoa(readPosts))
			}

			req, _ := http.NewRequest("GET", target, nil)
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
					ID       int    `json:"id"`
					Title    string `json:"title"`
					CreateAt string `json:"create_at"`
					User     string `json:"user"`
					Views    int    `json:"views"`
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
			for _, n := range out.Results {
				rows = append(rows, []interface{}{n.ID, n.Title, n.User, n.CreateAt, n.Views})
			}
			output.RenderTable([]string{"ID", "TITLE", "USER", "CREATED", "VIEWS"}, rows)
		},
	}

	cmd.Flags().IntVar(&readPosts, "read-posts", 0, "narrow to notes read by this profile id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")

	return cmd
}
