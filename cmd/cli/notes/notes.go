package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gsokolov/noteblog/cmd/cli/config"
	"github.com/gsokolov/noteblog/cmd/cli/output"
)

// noteResult mirrors the API's note projection.
type noteResult struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Note     string `json:"note"`
	CreateAt string `json:"create_at"`
	User     string `json:"user"`
	Views    int    `json:"views"`
}

// ==========================
// Init Notes
// ==========================
func InitNotes(rootCmd *cobra.Command) {

	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes",
	}

	notesCmd.AddCommand(
		listNotesCmd(),
		createNoteCmd(),
		getNoteCmd(),
		updateNoteCmd(),
		deleteNoteCmd(),
	)

	rootCmd.AddCommand(notesCmd)
}

// ==========================
// LIST
// ==========================
func listNotesCmd() *cobra.Command {

	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, freshest first",
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/notes/", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out struct {
				Count   int          `json:"count"`
				Results []noteResult `json:"results"`
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

			renderNotes(out.Results)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")

	return cmd
}

func renderNotes(results []noteResult) {
	rows := make([][]interface{}, 0, len(results))
	for _, n := range results {
		rows = append(rows, []interface{}{n.ID, n.Title, n.User, n.CreateAt, n.Views})
	}
	output.RenderTable([]string{"ID", "TITLE", "USER", "CREATED", "VIEWS"}, rows)
}

// ==========================
// CREATE
// ==========================
func createNoteCmd() *cobra.Command {

	var title string
	var note string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			payload := map[string]string{
				"title": title,
				"note":  note,
			}
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/notes/", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
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

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&note, "note", "", "note body")

	return cmd
}

// ==========================
// GET (records a read marker server side)
// ==========================
func getNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/notes/"+args[0]+"/", nil)
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
// UPDATE (PATCH, author only)
// ==========================
func updateNoteCmd() *cobra.Command {

	var title string
	var note string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update your own note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			payload := map[string]string{}
			if cmd.Flags().Changed("title") {
				payload["title"] = title
			}
			if cmd.Flags().Changed("note") {
				payload["note"] = note
			}
			if len(payload) == 0 {
				return fmt.Errorf("nothing to update, pass --title or --note")
			}
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("PATCH", config.APIURL()+"/notes/"+args[0]+"/", bytes.NewBuffer(body))
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

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&note, "note", "", "new body")

	return cmd
}

// ==========================
// DELETE (author only)
// ==========================
func deleteNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete your own note",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/notes/"+args[0]+"/", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNoContent {
				fmt.Println("Note deleted")
			} else {
				fmt.Println("Failed to delete note")
			}
		},
	}
}
