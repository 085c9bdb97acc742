// Command relayctl is the relay client entrypoint: one TCP connection to
// the server, stdin/stdout wired as the control console.
package main

import (
	"fmt"
	"os"

	"github.com/LucasMontenegro1/relay/internal/client"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <server-addr>\n", os.Args[0])
		os.Exit(1)
	}
	addr := os.Args[1]

	c, err := client.Dial(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer c.Close()

	go func() {
		for msg := range c.Incoming {
			fmt.Println(msg.String())
		}
	}()
	go func() {
		for dm := range c.DCC.Mailbox {
			if dm.Err != nil {
				fmt.Fprintf(os.Stderr, "dcc: %v\n", dm.Err)
				continue
			}
			fmt.Printf("[dcc %s] %s\n", dm.Peer, dm.Text)
		}
	}()

	go func() {
		if err := c.ReadLoop(); err != nil {
			fmt.Fprintf(os.Stderr, "connection closed: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := c.StdinLoop(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "stdin: %v\n", err)
		os.Exit(1)
	}
}
