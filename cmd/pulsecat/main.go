// Command pulsecat is a debug client for the pulse node: it identifies as
// a user, joins one chat, relays stdin lines as messages and prints every
// push it receives, marking messages seen as they arrive.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

var (
	addr  = flag.String("addr", "localhost:8080", "http service address")
	user  = flag.String("user", "", "user id")
	peer  = flag.String("peer", "", "peer user id")
	token = flag.String("token", "", "identify token (optional)")
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func chatIDFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

func send(c *websocket.Conn, event string, data interface{}) {
	d, err := json.Marshal(data)
	if err != nil {
		log.Fatal("marshal:", err)
	}
	frame, _ := json.Marshal(envelope{Event: event, Data: d})
	if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
		log.Fatal("write:", err)
	}
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *user == "" || *peer == "" {
		log.Fatalln("need -user and -peer")
	}
	chatID := chatIDFor(*user, *peer)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	send(c, "online", map[string]string{"userId": *user, "token": *token})
	send(c, "joinChat", map[string]string{"chatId": chatID, "userId": *user})

	go func() {
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				os.Exit(0)
			}
			env := envelope{}
			if err := json.Unmarshal(message, &env); err != nil {
				log.Println("read json:", err)
				continue
			}
			log.Printf("<- %s %s", env.Event, env.Data)
			if env.Event == "receiveMessage" {
				send(c, "markSeen", map[string]string{"chatId": chatID, "userId": *user})
			}
		}
	}()

	scan := bufio.NewScanner(os.Stdin)
	for scan.Scan() {
		text := scan.Text()
		if text == "" {
			continue
		}
		send(c, "sendMessage", map[string]string{
			"chatId": chatID,
			"text":   text,
			"sender": *user,
			"tempId": fmt.Sprint(time.Now().UnixNano()),
		})
	}
}
