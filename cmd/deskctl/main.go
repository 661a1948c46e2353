// Command deskctl is a terminal client for the complaint desk API.
//
//	deskctl [-server URL] [-token TOKEN] <command> [flags] [args]
//
// The token defaults to $DESK_TOKEN and the server to $DESK_SERVER.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/amit-3245/campus-complaint-portal/internal/client"
)

const usage = `usage: deskctl [-server URL] [-token TOKEN] <command> [args]

commands:
  register -name N -email E -password P [-role student|teacher] [-student-id ID]
  login    -email E -password P          prints the token
  profile
  submit   -type student|teacher -title T -category C -problem P [-student-id ID] [-image FILE]
  list     [-mine] [-status S] [-category C] [-type T] [-search Q] [-sort newest|oldest|title|status]
  status   <id> <status>
  delete   <id>
  summary
  fetch    [-o FILE] <filename>
`

type app struct {
	desk *client.Desk
	api  *client.Client
	out  io.Writer
}

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	global := flag.NewFlagSet("deskctl", flag.ExitOnError)
	server := global.String("server", envOr("DESK_SERVER", "http://localhost:8081"), "API base URL")
	token := global.String("token", os.Getenv("DESK_TOKEN"), "bearer token")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	api := client.New(*server, nil)
	a := &app{desk: client.NewDesk(api), api: api, out: os.Stdout}
	if *token != "" {
		a.desk.UseToken(*token)
	}

	if err := a.run(ctx, global.Arg(0), global.Args()[1:]); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			log.Fatalf("error: %s (HTTP %d)", apiErr.Message, apiErr.Status)
		}
		log.Fatalf("error: %v", err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "profile":
		return a.profile(ctx)
	case "submit":
		return a.submit(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "status":
		return a.status(ctx, args)
	case "delete":
		return a.remove(ctx, args)
	case "summary":
		return a.summary(ctx)
	case "fetch":
		return a.fetch(ctx, args)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
