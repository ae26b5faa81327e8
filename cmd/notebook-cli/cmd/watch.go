package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// change mirrors the messages sent on /app/sync.
type change struct {
	Action  string    `json:"action"`
	GuideID string    `json:"guide_id"`
	At      time.Time `json:"at"`
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live guide changes from a running server",
	Long: `Opens the sync websocket as the signed in user and prints one line per
guide change until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(serverURL, authToken)
		if err != nil {
			return err
		}
		conn, resp, err := websocket.DefaultDialer.DialContext(cmd.Context(), c.syncURL(), c.header())
		if err != nil {
			if resp != nil {
				return fmt.Errorf("sync refused: %s", resp.Status)
			}
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer conn.Close()
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", c.syncURL())

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-interrupt:
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			case <-done:
			}
		}()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return nil
				}
				return fmt.Errorf("sync closed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatChange(raw))
		}
	},
}

func formatChange(raw []byte) string {
	var ch change
	if err := json.Unmarshal(raw, &ch); err != nil || ch.GuideID == "" {
		return string(raw)
	}
	return fmt.Sprintf("%s  %-7s %s", ch.At.Local().Format(time.TimeOnly), ch.Action, ch.GuideID)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
