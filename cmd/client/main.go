package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/atinyakov/TwoHearts/internal/client/api"
	"github.com/atinyakov/TwoHearts/internal/client/cli"
	"github.com/atinyakov/TwoHearts/internal/client/session"
	"github.com/atinyakov/TwoHearts/internal/client/state"
	"github.com/atinyakov/TwoHearts/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

// defaultDir is where the session file and the log live unless overridden.
func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "twohearts")
	}
	return "."
}

// main parses command-line flags and dispatches to the register or shell commands.
func main() {
	var (
		cmd         string
		baseURL     string
		caFile      string
		sessionFile string
		logFile     string
		logLevel    string
		showVer     bool
	)

	dir := defaultDir()
	flag.StringVar(&cmd, "cmd", "shell", "command: register | shell")
	flag.StringVar(&baseURL, "url", "https://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "certs/ca.crt", "path to CA cert (empty uses system roots)")
	flag.StringVar(&sessionFile, "session", filepath.Join(dir, "session.json"), "path to the saved session")
	flag.StringVar(&logFile, "log", filepath.Join(dir, "client.log"), "path to the client log")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("TwoHearts Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		log.Fatal(err)
	}
	lg := logger.New()
	if err := lg.InitFile(logLevel, logFile); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Log.Sync() }()

	hc, err := api.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	client := api.New(baseURL, hc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(client, sessionFile, lg.Log)
	ws := state.NewWorkspace(client, lg.Log)
	shell := cli.New(os.Stdin, os.Stdout, sess, ws, client, lg.Log)

	switch cmd {
	case "register":
		shell.Execute(ctx, []string{"register"})
	case "shell":
		if err := sess.Restore(ctx); err != nil {
			lg.Log.Warn("could not restore session", zap.Error(err))
		}
		ws.Follow(ctx, sess)
		if id := sess.CurrentIdentity(); id != nil {
			fmt.Printf("Welcome back, %s\n", id.Name)
		} else {
			fmt.Println("Type 'login' to sign in or 'help' for commands.")
		}
		shell.Run(ctx)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
