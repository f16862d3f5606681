package db

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/models"
	dbpkg "github.com/spendguard/spendguard/pkg/db"
)

// GetConversationOrLatest returns the conversation named in args, or the
// most recently updated one if none is given.
func GetConversationOrLatest(c *cli.Context, database *dbpkg.DB) (*models.Conversation, error) {
	if c.NArg() == 0 {
		convs, err := database.ListConversations()
		if err != nil {
			return nil, fmt.Errorf("failed to get latest conversation: %w", err)
		}
		if len(convs) == 0 {
			return nil, fmt.Errorf("no conversations found. Run 'spendguard chat' first")
		}
		return convs[0], nil
	}

	conv, err := database.GetConversation(c.Args().First())
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}
