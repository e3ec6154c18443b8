// roomctl is a small interactive websocket client for operators: connect,
// look around a room, move, sit, chat, and emote without a graphical
// client.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tilehaven/roomserver/internal/delivery/dto"
)

const (
	defaultServerAddr = "localhost:3001"
	cliName           = "roomctl"
	cliVersion        = "1.0.0"
)

// Client owns one live connection and the small amount of state worth
// echoing back to the operator between commands.
type Client struct {
	conn      *websocket.Conn
	runtimeID string
	roomID    string
	done      chan struct{}
	closed    bool
}

func main() {
	fmt.Printf("%s v%s — interactive room server client\n", cliName, cliVersion)
	fmt.Println("Type 'help' for available commands, 'quit' to exit.")

	serverAddr := defaultServerAddr
	if len(os.Args) > 1 {
		serverAddr = os.Args[1]
	}
	userID := "operator-" + uuid.New().String()[:8]
	if len(os.Args) > 2 {
		userID = os.Args[2]
	}

	client := &Client{done: make(chan struct{})}
	if err := client.connect(serverAddr, userID); err != nil {
		fmt.Printf("failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.conn.Close()
	fmt.Println(infoStyle.Render(fmt.Sprintf("connected as %s (terminal width %d)", userID, terminalWidth())))

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	go client.readLoop()

	go func() {
		<-interrupt
		fmt.Println("\nshutting down...")
		client.shutdown()
		os.Exit(0)
	}()

	client.repl()
}

func (c *Client) connect(addr, userID string) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws", RawQuery: "user_id=" + url.QueryEscape(userID)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) shutdown() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(200 * time.Millisecond)
}

// readLoop prints every inbound event as it arrives, independent of
// whatever the operator is typing.
func (c *Client) readLoop() {
	for {
		var envelope dto.OutboundEnvelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			select {
			case <-c.done:
				return
			default:
				fmt.Printf("\n[connection closed: %v]\n> ", err)
				return
			}
		}
		c.printEvent(envelope)
	}
}

func (c *Client) printEvent(envelope dto.OutboundEnvelope) {
	raw, _ := json.Marshal(envelope.Payload)
	switch envelope.Type {
	case dto.TypeYourAvatarID:
		var p dto.YourAvatarID
		json.Unmarshal(raw, &p)
		c.runtimeID = p.ID
		fmt.Printf("\n[you are %s]\n> ", p.ID)
	case dto.TypeRoomState:
		var p dto.RoomState
		json.Unmarshal(raw, &p)
		fmt.Printf("\n[room state: %dx%d, %d furniture, %d avatars]\n> ", p.Cols, p.Rows, len(p.Furniture), len(p.Avatars))
	case dto.TypeChat:
		var p dto.Chat
		json.Unmarshal(raw, &p)
		fmt.Printf("\n%s\n> ", chatStyle.Render(p.FromName+": "+p.Text))
	case dto.TypeActionFailed:
		var p dto.ActionFailed
		json.Unmarshal(raw, &p)
		fmt.Printf("\n%s\n> ", errorStyle.Render(fmt.Sprintf("[failed] %s: %s (%s)", p.Action, p.Reason, p.Kind)))
	case dto.TypeAvatarUpdate:
		var p dto.AvatarUpdate
		json.Unmarshal(raw, &p)
		if p.ID == c.runtimeID {
			fmt.Printf("\n[you moved]\n> ")
		}
	case dto.TypeForceDisconnect:
		var p dto.ForceDisconnect
		json.Unmarshal(raw, &p)
		fmt.Printf("\n[disconnected: %s]\n> ", p.Reason)
	default:
		fmt.Printf("\n[%s] %s\n> ", envelope.Type, string(raw))
	}
}

func (c *Client) send(mtype dto.MessageType, payload any) {
	raw, _ := json.Marshal(payload)
	c.conn.WriteJSON(dto.InboundEnvelope{Type: mtype, Payload: raw})
}

func (c *Client) repl() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if !c.handleCommand(line) {
			break
		}
		fmt.Print("> ")
	}
}

// handleCommand returns false when the operator asked to quit.
func (c *Client) handleCommand(line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		c.shutdown()
		return false
	case "help":
		printHelp()
	case "move":
		if len(args) < 2 {
			fmt.Println("usage: move <x> <y>")
			break
		}
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil {
			fmt.Println("x/y must be integers")
			break
		}
		c.send(dto.TypeMove, dto.Move{X: x, Y: y})
	case "sit":
		if len(args) < 1 {
			fmt.Println("usage: sit <instanceId>")
			break
		}
		c.send(dto.TypeSit, dto.Sit{InstanceID: args[0]})
	case "stand":
		c.send(dto.TypeStand, dto.Stand{})
	case "chat":
		c.send(dto.TypeSendChat, dto.SendChat{Text: strings.Join(args, " ")})
	case "emote":
		if len(args) < 1 {
			fmt.Println("usage: emote <emoteId>")
			break
		}
		c.send(dto.TypeEmote, dto.Emote{EmoteID: args[0]})
	case "buy":
		if len(args) < 1 {
			fmt.Println("usage: buy <itemId>")
			break
		}
		c.send(dto.TypeBuyItem, dto.BuyItem{ItemID: args[0]})
	case "join":
		if len(args) < 1 {
			fmt.Println("usage: join <roomId>")
			break
		}
		c.send(dto.TypeChangeRoom, dto.ChangeRoom{TargetRoomID: args[0]})
	case "users":
		c.send(dto.TypeRequestUserList, dto.RequestUserList{})
	default:
		fmt.Printf("unknown command %q, type 'help'\n", cmd)
	}
	return true
}

func printHelp() {
	fmt.Println(`commands:
  move <x> <y>       walk to a cell
  sit <instanceId>    sit on (or path to) a furniture instance, or step through a door
  stand               stand up from a seat
  chat <text>         say something in the room ("/emote wave", "/setcolor #FFFFFF", "/join <roomId>" also work)
  emote <emoteId>     play an emote
  buy <itemId>        buy a shop item
  join <roomId>       change room
  users                request the current room's user list
  quit                disconnect and exit`)
}
