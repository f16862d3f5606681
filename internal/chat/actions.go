// Package chat implements the interactive assistant command.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/internal/common"
	"github.com/spendguard/spendguard/models"
	"github.com/spendguard/spendguard/pkg/assistant"
	"github.com/spendguard/spendguard/pkg/db"
)

func ChatAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := common.LoadRuntimeConfig(c)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	orch, err := assistant.New(cfg, database, logger)
	if err != nil {
		if errors.Is(err, assistant.ErrMissingAPIKey) {
			return fmt.Errorf("chat requires OPENAI_API_KEY to be set")
		}
		return err
	}

	conv, err := resumeOrStart(c.String("conversation"), database)
	if err != nil {
		return err
	}
	withContext := !c.Bool("no-context")

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A positional argument is a one-shot question; no argument starts a REPL.
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		// Text handed off from a capture client takes the turn instead.
		if pending, err := database.GetValue(db.HandoffKey); err == nil && pending != "" {
			_ = database.DeleteValue(db.HandoffKey)
			question = pending
		}
	}
	if question != "" {
		return oneShot(ctx, orch, database, conv, question, withContext, logger)
	}

	fmt.Printf("Conversation %s. Type a message, or 'exit' to quit.\n", conv.ID)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := orch.Respond(ctx, conv, line, withContext)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("chat turn failed", "error", err)
			reply = assistant.Apology
		}

		conv.Messages = append(conv.Messages,
			models.Message{Role: models.RoleUser, Text: line},
			models.Message{Role: models.RoleAssistant, Text: reply},
		)
		if err := database.SaveConversation(conv); err != nil {
			logger.Warn("saving conversation failed", "error", err)
		}

		fmt.Println(reply)
		fmt.Println()
	}
	return scanner.Err()
}

// responder is what oneShot needs from the assistant.
type responder interface {
	Respond(ctx context.Context, conv *models.Conversation, userText string, withContext bool) (string, error)
}

func oneShot(ctx context.Context, orch responder, database *db.DB, conv *models.Conversation, question string, withContext bool, logger *slog.Logger) error {
	reply, err := orch.Respond(ctx, conv, question, withContext)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("chat turn failed", "error", err)
		reply = assistant.Apology
	}
	conv.Messages = append(conv.Messages,
		models.Message{Role: models.RoleUser, Text: question},
		models.Message{Role: models.RoleAssistant, Text: reply},
	)
	if err := database.SaveConversation(conv); err != nil {
		logger.Warn("saving conversation failed", "error", err)
	}
	fmt.Println(reply)
	return nil
}

func resumeOrStart(id string, database *db.DB) (*models.Conversation, error) {
	if id == "" {
		return &models.Conversation{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		}, nil
	}
	conv, err := database.GetConversation(id)
	if err != nil {
		return nil, fmt.Errorf("resuming conversation %s: %w", id, err)
	}
	return conv, nil
}
