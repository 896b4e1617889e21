package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"docchat/internal/api"
	"docchat/internal/app"
	"docchat/internal/auth"
	"docchat/internal/tui"
	"docchat/internal/upload"
)

const version = "1.0.0"

type runtimeEnv struct {
	cfg    app.Config
	log    *app.Logger
	store  *auth.Store
	gate   *auth.Gate
	client *api.Client
}

func buildEnv() (*runtimeEnv, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("DOCCHAT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	log := app.NewFileLogger(cfg.LogFile)

	store, err := auth.OpenStore(cfg.CredentialPath())
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	// The client needs the gate's token and the gate needs the client for
	// login/signup; the token source closes over the gate to break the cycle.
	var gate *auth.Gate
	client := api.NewClient(cfg.BaseURL, timeout, func() string {
		if v := os.Getenv("DOCCHAT_TOKEN"); v != "" {
			return v
		}
		if gate == nil {
			return ""
		}
		return gate.Token()
	})
	gate = auth.NewGate(client, store)

	return &runtimeEnv{cfg: cfg, log: log, store: store, gate: gate, client: client}, nil
}

func (e *runtimeEnv) close() {
	_ = e.store.Close()
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func requireSession(ctx context.Context, e *runtimeEnv) error {
	if err := e.gate.Init(ctx); err != nil {
		return err
	}
	if !e.gate.IsAuthenticated() {
		return fmt.Errorf("not logged in; run 'docchat login' first")
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:     "docchat",
		Short:   "Chat with your documents from the terminal",
		Long:    "docchat uploads documents to a question-answering service and lets you converse with an assistant about them.\n\nRun without arguments for the interactive TUI, or use the subcommands for one-shot operations.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv()
			if err != nil {
				return err
			}
			defer env.close()

			p := tea.NewProgram(tui.New(env.cfg, env.log, env.client, env.gate), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	authCmd := func(use, short string, signup bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <email>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := buildEnv()
				if err != nil {
					return err
				}
				defer env.close()

				password, err := promptPassword()
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()
				if err := env.gate.Init(ctx); err != nil {
					return err
				}
				if signup {
					err = env.gate.Signup(ctx, args[0], password)
				} else {
					err = env.gate.Login(ctx, args[0], password)
				}
				if err != nil {
					return err
				}
				fmt.Println("Logged in.")
				return nil
			},
		}
	}
	root.AddCommand(authCmd("login", "Log in with an existing account", false))
	root.AddCommand(authCmd("signup", "Create an account and log in", true))

	root.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv()
			if err != nil {
				return err
			}
			defer env.close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = env.gate.Init(ctx)
			env.gate.Logout(ctx)
			fmt.Println("Logged out.")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv()
			if err != nil {
				return err
			}
			defer env.close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := requireSession(ctx, env); err != nil {
				return err
			}

			mgr := upload.NewManager(env.cfg.AllowedExtensions)
			if err := mgr.SelectFile(args[0]); err != nil {
				return err
			}
			if err := mgr.Start(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				mgr.Fail(err)
				return err
			}
			defer f.Close()

			docID, err := env.client.Upload(ctx, filepath.Base(args[0]), f)
			if err != nil {
				mgr.Fail(err)
				return err
			}
			mgr.Complete(docID)
			fmt.Printf("Uploaded as document %d\n", docID)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "List your uploaded documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv()
			if err != nil {
				return err
			}
			defer env.close()

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			if err := requireSession(ctx, env); err != nil {
				return err
			}

			docs, err := env.client.History(ctx)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Println("No documents yet.")
				return nil
			}
			for _, d := range docs {
				title := d.Title
				if title == "" {
					title = d.Filename
				}
				fmt.Printf("%6d  %s  %s\n", d.ID, d.CreatedAt.Format("2006-01-02 15:04"), title)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ask <document-id> <question>",
		Short: "Ask a one-shot question about a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}
			question := strings.TrimSpace(strings.Join(args[1:], " "))
			if question == "" {
				return fmt.Errorf("question is empty")
			}

			env, err := buildEnv()
			if err != nil {
				return err
			}
			defer env.close()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := requireSession(ctx, env); err != nil {
				return err
			}

			answer, err := env.client.Ask(ctx, docID, question)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
