// Command relayd is the relay server entrypoint: no flags library, just
// positional arguments.
package main

import (
	"fmt"
	"log"
	"net"
	"os"

	"github.com/LucasMontenegro1/relay/internal/relay"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <listen-addr> <server-name>\n", os.Args[0])
		os.Exit(1)
	}
	listenAddr, serverName := os.Args[1], os.Args[2]

	logger := log.New(os.Stderr, "", log.LstdFlags)
	srv := relay.NewServer(serverName, logger)

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		logger.Fatalf("listen on %s: %v", listenAddr, err)
	}
	logger.Printf("%s listening on %s", serverName, listenAddr)

	if err := srv.Run(ln); err != nil {
		logger.Fatalf("serve: %v", err)
	}
}
