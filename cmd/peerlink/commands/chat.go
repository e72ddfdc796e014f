package commands

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"peerlink/internal/domain"
	"peerlink/internal/peer"
	"peerlink/internal/transport/webrtc"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <room>",
		Short: "Join a room and exchange encrypted messages with peers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := args[0]

			id, err := wire.Identity.LoadOrCreate()
			if err != nil {
				return err
			}

			stun := wire.Cfg.STUNServers
			if len(stun) == 0 {
				stun = webrtc.DefaultSTUNServers
			}

			mgr, err := peer.NewManager(peer.Config{
				Identity:     id,
				Signals:      wire.Signals,
				NewTransport: webrtc.Factory(stun),
				OnMessage: func(msg domain.Message) {
					if msg.Unreadable {
						fmt.Printf("[%s] <unreadable message>\n", msg.From)
						return
					}
					fmt.Printf("[%s] %s\n", msg.From, msg.Text)
				},
				Log: wire.Log,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := mgr.Join(ctx, room); err != nil {
				return err
			}
			defer mgr.Leave()

			fmt.Printf("Joined %q as %s.\n", room, mgr.SelfID())
			fmt.Println("Commands: /connect <id> [pubkey], /peers, /quit. Anything else is sent.")

			lines := make(chan string)
			go func() {
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					lines <- sc.Text()
				}
				close(lines)
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if err := dispatch(mgr, line); err != nil {
						if err == errQuit {
							return nil
						}
						fmt.Println("error:", err)
					}
				}
			}
		},
	}
}

var errQuit = fmt.Errorf("quit")

func dispatch(mgr *peer.Manager, line string) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil
	case line == "/quit":
		return errQuit
	case line == "/peers":
		infos := mgr.Peers()
		if len(infos) == 0 {
			fmt.Println("no peers")
			return nil
		}
		for _, info := range infos {
			ch := "channel closed"
			if info.ChannelOpen {
				ch = "channel open"
			}
			fmt.Printf("%s  %s (%s)\n", info.ID, info.State, ch)
		}
		return nil
	case strings.HasPrefix(line, "/connect"):
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return fmt.Errorf("usage: /connect <id> [pubkey]")
		}
		var pub []byte
		if len(fields) == 3 {
			raw, err := base64.RawURLEncoding.DecodeString(fields[2])
			if err != nil {
				return fmt.Errorf("bad public key: %w", err)
			}
			pub = raw
		}
		return mgr.Connect(domain.ShortID(fields[1]), pub)
	case strings.HasPrefix(line, "/"):
		return fmt.Errorf("unknown command %q", strings.Fields(line)[0])
	default:
		return mgr.Send(line)
	}
}
