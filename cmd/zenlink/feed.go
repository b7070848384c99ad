package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Read or post to the global feed",
	}
	cmd.AddCommand(newFeedListCmd())
	cmd.AddCommand(newFeedPostCmd())
	cmd.AddCommand(newFeedWatchCmd())
	return cmd
}

func newFeedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			res := s.store.GlobalChatFeed(ctx)
			if res.Err != nil {
				return res.Err
			}
			for _, m := range res.Data {
				printFeedLine(m.Sender.Short(), m.Perspective, m.Content)
			}
			return nil
		},
	}
}

func newFeedPostCmd() *cobra.Command {
	var perspective string
	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Post to the feed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			if err := s.store.PostGlobalMessage(ctx, strings.Join(args, " "), perspective); err != nil {
				return err
			}
			fmt.Println(green("Posted."))
			return nil
		},
	}
	cmd.Flags().StringVar(&perspective, "perspective", "", "optional perspective tag")
	return cmd
}

// newFeedWatchCmd streams the feed over the websocket until interrupted.
func newFeedWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream the feed live",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			feed, err := s.client.WatchGlobalFeed(ctx)
			if err != nil {
				return err
			}
			fmt.Println(gray("watching the global feed, ctrl-c to stop"))
			for m := range feed {
				printFeedLine(m.Sender.Short(), m.Perspective, m.Content)
			}
			return nil
		},
	}
}

func printFeedLine(sender, perspective, content string) {
	tag := ""
	if perspective != "" {
		tag = gray(" [" + perspective + "]")
	}
	fmt.Printf("%s%s: %s\n", cyan(sender), tag, content)
}
