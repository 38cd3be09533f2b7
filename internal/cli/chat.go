package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/nutricoach/internal/engine"
)

func init() {
	chat := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the coach",
	}

	send := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a text message",
		Long:  "Send a text message. The message can be a positional arg or piped via stdin.",
		Run:   runChatSend,
	}
	photo := &cobra.Command{
		Use:   "photo [file]",
		Short: "Send a meal photo for analysis",
		Args:  cobra.ExactArgs(1),
		Run:   runChatPhoto,
	}
	photo.Flags().String("type", "", "Image MIME type (default: sniffed)")
	history := &cobra.Command{
		Use:   "history",
		Short: "Print the transcript",
		Run:   runChatHistory,
	}

	chat.AddCommand(send, photo, history)
	RootCmd.AddCommand(chat)
}

func runChatSend(cmd *cobra.Command, args []string) {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			text = string(b)
		}
	}

	a := openApp(cmd)
	defer a.close()
	e := a.engine()
	if _, err := e.Hydrate(cmd.Context()); err != nil {
		exitErr("load chat", err)
	}
	reply, err := e.SendText(cmd.Context(), text)
	if err != nil {
		exitErr("send", err)
	}
	printJSON(cmd, reply)
}

func runChatPhoto(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read photo", err)
	}
	mime, _ := cmd.Flags().GetString("type")

	a := openApp(cmd)
	defer a.close()
	e := a.engine()
	if _, err := e.Hydrate(cmd.Context()); err != nil {
		exitErr("load chat", err)
	}
	reply, err := e.SendPhoto(cmd.Context(), engine.Photo{Data: data, ContentType: mime})
	if err != nil {
		exitErr("send photo", fmt.Errorf("%s: %w", args[0], err))
	}
	printJSON(cmd, reply)
}

func runChatHistory(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.close()
	msgs, err := a.engine().Hydrate(cmd.Context())
	if err != nil {
		exitErr("history", err)
	}
	printJSON(cmd, msgs)
}
