package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curioplatform/curio-cli/internal/output"
)

// NewChatCmd creates the chat command group (protected, any signed-in role).
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "chat",
		Short:       "Chat rooms and messages",
		Annotations: map[string]string{RouteAnnotation: "chat"},
	}
	cmd.AddCommand(newChatRoomsCmd())
	cmd.AddCommand(newChatHistoryCmd())
	cmd.AddCommand(newChatSendCmd())
	return cmd
}

func newChatRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List chat rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app(cmd).Gateway.Get(cmd.Context(), "/chat/rooms")
			if err != nil {
				return err
			}
			return renderMany(cmd, "room", "room", resp)
		},
	}
}

func newChatHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <room>",
		Short: "Show recent messages in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/chat/rooms/%s/messages?limit=%d", args[0], limit)
			resp, err := app(cmd).Gateway.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return renderMany(cmd, "message", "message", resp)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of messages")
	return cmd
}

func newChatSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <room> <message...>",
		Short: "Send a message to a room",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app(cmd)
			body := strings.Join(args[1:], " ")
			resp, err := a.Gateway.Post(cmd.Context(), fmt.Sprintf("/chat/rooms/%s/messages", args[0]), map[string]string{"body": body})
			if err != nil {
				return err
			}
			row, err := decodeRow(resp)
			if err != nil {
				return err
			}
			return a.OK(row, output.WithSummary(fmt.Sprintf("Sent to %s", args[0])))
		},
	}
}
