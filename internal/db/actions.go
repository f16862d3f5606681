// Package db implements the history commands for stored conversations
// and snapshots.
package db

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/models"
	dbpkg "github.com/spendguard/spendguard/pkg/db"
)

// ConversationsAction lists stored conversations, newest first.
func ConversationsAction(c *cli.Context) error {
	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	convs, err := database.ListConversations()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(convs) == 0 {
		fmt.Println("No conversations found")
		return nil
	}

	fmt.Printf("%-38s %-20s %-6s %s\n", "ID", "Updated", "Turns", "Preview")
	fmt.Println(strings.Repeat("-", 110))
	for _, conv := range convs {
		fmt.Printf("%-38s %-20s %-6d %s\n",
			conv.ID,
			conv.UpdatedAt.Format("2006-01-02 15:04:05"),
			len(conv.Messages),
			conv.Preview,
		)
	}

	fmt.Printf("\nTotal: %d conversations\n", len(convs))
	fmt.Printf("\nTip: Use 'spendguard history show <id>' to read one\n")
	return nil
}

// ConversationAction prints a full conversation transcript. With no
// argument it shows the most recently updated one.
func ConversationAction(c *cli.Context) error {
	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	conv, err := GetConversationOrLatest(c, database)
	if err != nil {
		return err
	}

	fmt.Printf("Conversation: %s\n", conv.ID)
	fmt.Printf("Created:      %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:      %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("-", 60))

	for _, msg := range conv.Messages {
		label := "You"
		if msg.Role == models.RoleAssistant {
			label = "Assistant"
		}
		fmt.Printf("%s: %s\n\n", label, msg.Text)
	}
	return nil
}

// DeleteConversationAction removes one conversation by ID.
func DeleteConversationAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no conversation ID provided")
	}

	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	id := c.Args().First()
	if err := database.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	fmt.Printf("Deleted conversation %s\n", id)
	return nil
}
