// Command careers runs the careers service and its operator helpers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trizen-careers/internal/catalog"
	"trizen-careers/internal/config"
	"trizen-careers/internal/email"
	"trizen-careers/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "careers",
		Short:         "Trizen careers application and session service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newJobsCmd())
	root.AddCommand(newEmailCheckCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.Load()
			if port > 0 {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := server.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := s.Close(); err != nil {
					log.Printf("Failed to close storage: %v", err)
				}
			}()

			httpServer := s.HTTPServer()
			errCh := make(chan error, 1)
			go func() {
				log.Printf("Listening on %s", httpServer.Addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Println("Shutting down gracefully, press Ctrl+C again to force")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Println("Server exiting")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides PORT")
	return cmd
}

func newJobsCmd() *cobra.Command {
	var q catalog.Query

	cmd := &cobra.Command{
		Use:   "jobs [search]",
		Short: "Search the job catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Term = args[0]
			}
			cat := catalog.Default()
			jobs := cat.Search(q)

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				_, _ = fmt.Fprintln(out, "no matching jobs")
				return nil
			}
			for _, j := range jobs {
				_, _ = fmt.Fprintf(out, "%-10s %-40s %-16s %s\n", j.ID, j.Title, j.Category, j.Location)
			}
			_, _ = fmt.Fprintf(out, "%d of %d jobs (catalog %s)\n", len(jobs), len(cat.All()), cat.Version())
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", catalog.AllFilter, "exact category or all")
	cmd.Flags().StringVar(&q.Location, "location", catalog.AllFilter, "exact location or all")
	return cmd
}

func newEmailCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email-check",
		Short: "Check the email service health and configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			client := email.NewClient(email.Config{
				BaseURL:   cfg.EmailServiceURL,
				APIKey:    cfg.EmailAPIKey,
				FromEmail: cfg.EmailFrom,
				FromName:  cfg.EmailFromName,
				Timeout:   cfg.EmailTimeout,
			})
			return checkEmail(cmd.Context(), cmd, client)
		},
	}
}

func checkEmail(ctx context.Context, cmd *cobra.Command, client *email.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	healthy, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("email service health check failed: %w", err)
	}
	if !healthy {
		return errors.New("email service reports unhealthy")
	}
	_, _ = fmt.Fprintln(out, "health: ok")

	res, err := client.TestConfiguration(ctx)
	if err != nil {
		return fmt.Errorf("email configuration test failed: %w", err)
	}
	msg := strings.TrimSpace(res.Message)
	if msg == "" {
		msg = "ok"
	}
	_, _ = fmt.Fprintf(out, "configuration: %s\n", msg)
	return nil
}
