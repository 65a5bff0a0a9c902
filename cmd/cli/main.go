package main

import (
	"fmt"
	"os"

	"github.com/gsokolov/noteblog/cmd/cli/accounts"
	"github.com/gsokolov/noteblog/cmd/cli/feed"
	"github.com/gsokolov/noteblog/cmd/cli/notes"
	"github.com/gsokolov/noteblog/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	accounts.InitAccounts(rootCmd)
	notes.InitNotes(rootCmd)
	feed.InitFeed(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
