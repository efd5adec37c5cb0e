package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
	"github.com/doeshing/codecraft/internal/application/assist"
)

// newChatCommand creates the chat command
func newChatCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "chat",
		Aliases: []string{"interactive"},
		Short:   "Start interactive chat",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				chat, err := c.AssistService.NewChatSession(ctx, s.flags.model)
				if err != nil {
					return err
				}
				return chatLoop(ctx, s, chat)
			})
		},
	}
}

// chatLoop reads lines until exit, EOF or cancellation. A failed turn is
// reported and the conversation continues.
func chatLoop(ctx context.Context, s *session, chat *assist.ChatSession) error {
	s.renderer.ChatBanner()
	for {
		fmt.Fprintf(s.opts.Out, "%s ", s.renderer.ChatPrompt())
		line, err := s.prompter.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				s.renderer.Goodbye()
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if assist.IsExit(input) {
			s.renderer.Goodbye()
			return nil
		}

		s.renderer.AssistantPrefix()
		stream := NewStreamWriter(s.opts.Out)
		_, err = chat.Send(ctx, input, stream.WriteChunk)
		stream.Done()
		if err != nil {
			if ctx.Err() != nil {
				s.renderer.Goodbye()
				return nil
			}
			s.renderer.ChatError(err)
			continue
		}
		fmt.Fprintln(s.opts.Out)
	}
}
