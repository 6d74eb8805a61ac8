package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &cli{stdout: os.Stdout, stderr: os.Stderr}
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.SetFlags(0)
		log.Fatalf("intakeqc: %v", err)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: intakeqc-cli [global flags] <command> [flags]

commands:
  login     store an access token in the system keyring
  logout    remove the stored token
  list      print a resource list
  inspect   pick a record, fill the QC form and submit it

global flags:
  -config   YAML configuration file
  -api      intake API base URL
  -log-level debug, info, warn or error
`)
}
