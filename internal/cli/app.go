package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"selfin/internal/amqp"
	"selfin/internal/config"
	"selfin/internal/console"
	"selfin/internal/export"
	apphttp "selfin/internal/http"
	applog "selfin/internal/log"
	"selfin/internal/services"
	"selfin/internal/worker"
)

const shutdownTimeout = 30 * time.Second

// App is the selfin command tree.
type App struct {
	root *cobra.Command

	ledgerFile string
	port       string

	cfg    *config.Config
	logger *applog.Logger
}

// NewApp builds the command tree. Output of every command goes to the
// command's writers, so callers and tests can redirect it with SetOut/SetErr.
func NewApp(version string) *App {
	app := &App{}

	root := &cobra.Command{
		Use:               "selfin",
		Short:             "Self-finance manager: record income and expenses, see your balance",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		RunE:              app.runServe,
	}
	root.PersistentFlags().StringVarP(&app.ledgerFile, "file", "f", "", "Ledger file (.json, .yaml, .yml or .toml); overrides LEDGER_FILE")
	root.PersistentFlags().StringVarP(&app.port, "port", "p", "", "HTTP port; overrides PORT")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the ledger web page (default)",
			Args:  cobra.NoArgs,
			RunE:  app.runServe,
		},
		app.incomeCmd(),
		app.expenseCmd(),
		&cobra.Command{
			Use:   "summary",
			Short: "Print the income and expense tables with the totals",
			Args:  cobra.NoArgs,
			RunE:  app.runSummary,
		},
		app.exportCmd(),
		&cobra.Command{
			Use:   "watch",
			Short: "Print ledger changes published to the AMQP exchange",
			Args:  cobra.NoArgs,
			RunE:  app.runWatch,
		},
	)

	app.root = root
	return app
}

// Execute runs the command line in args.
func (a *App) Execute(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.root.ExecuteContext(ctx)
}

// SetOutput redirects command output and log lines.
func (a *App) SetOutput(out, errOut io.Writer) {
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	LoadEnvFile()

	cfg, err := LoadAndValidateConfig(func(c *config.Config) {
		if cmd.Flags().Changed("file") {
			c.LedgerFile = a.ledgerFile
		}
		if cmd.Flags().Changed("port") {
			c.Port = a.port
		}
	})
	if err != nil {
		return err
	}

	logger, err := SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.WithComponent(applog.ComponentCLI)
	return nil
}

// openService builds the ledger service. When AMQP is configured but the
// broker is unreachable, changes are still recorded without publishing.
func (a *App) openService() (*services.LedgerService, error) {
	st, err := OpenStore(a.logger, a.cfg.LedgerFile)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	client, err := ConnectAMQP(a.logger, a.cfg)
	if err != nil {
		a.logger.Warn("Ledger changes will not be published",
			applog.FieldError, err.Error(),
			applog.FieldErrorType, applog.ErrorTypeNetwork)
	} else if client != nil {
		publisher = client
	}

	svc := services.NewLedgerService(st, publisher)
	svc.Subscribe(applog.ChangeListener(a.logger.WithComponent(applog.ComponentLedger)))
	return svc, nil
}

func (a *App) runServe(cmd *cobra.Command, _ []string) error {
	svc, err := a.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := SignalContext(cmd.Context(), a.logger)
	defer cancel()

	srv := apphttp.NewServer(":"+a.cfg.Port, svc, apphttp.Options{
		Logger:             a.logger,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
		ReadTimeout:        a.cfg.ReadTimeout,
		WriteTimeout:       a.cfg.WriteTimeout,
	})
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Starting selfin server",
			"port", a.cfg.Port,
			applog.FieldLedgerFile, a.cfg.LedgerFile,
			"amqp_enabled", a.cfg.AMQPEnabled(),
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", a.cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		a.logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
		return nil
	})

	return g.Wait()
}

func (a *App) incomeCmd() *cobra.Command {
	var source, amount string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an income entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAdd(cmd, func(svc *services.LedgerService) (services.Result, error) {
				return svc.AddIncome(cmd.Context(), source, amount)
			})
		},
	}
	add.Flags().StringVar(&source, "source", "", "Where the money came from")
	add.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 1000 or 12.50")

	income := &cobra.Command{Use: "income", Short: "Manage income entries"}
	income.AddCommand(add)
	return income
}

func (a *App) expenseCmd() *cobra.Command {
	var category, amount string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an expense entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAdd(cmd, func(svc *services.LedgerService) (services.Result, error) {
				return svc.AddExpense(cmd.Context(), category, amount)
			})
		},
	}
	add.Flags().StringVar(&category, "category", "", "What the money was spent on")
	add.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 400 or 9.99")

	expense := &cobra.Command{Use: "expense", Short: "Manage expense entries"}
	expense.AddCommand(add)
	return expense
}

func (a *App) runAdd(cmd *cobra.Command, add func(*services.LedgerService) (services.Result, error)) error {
	svc, err := a.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := add(svc)
	if err != nil {
		return err
	}

	out := console.New(cmd.OutOrStdout())
	out.Success(res.Message)
	l, s := svc.Ledger()
	return out.RenderLedger(l, s)
}

func (a *App) runSummary(cmd *cobra.Command, _ []string) error {
	st, err := OpenStore(a.logger, a.cfg.LedgerFile)
	if err != nil {
		return err
	}
	svc := services.NewLedgerService(st, nil)
	l, s := svc.Ledger()
	return console.New(cmd.OutOrStdout()).RenderLedger(l, s)
}

func (a *App) exportCmd() *cobra.Command {
	var format, dir, name string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger report as CSV, JSON or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("dir") {
				dir = a.cfg.ExportDir
			}

			st, err := OpenStore(a.logger, a.cfg.LedgerFile)
			if err != nil {
				return err
			}
			l, s := services.NewLedgerService(st, nil).Ledger()

			path, err := export.Export(l, s, f, name, dir)
			if err != nil {
				a.logger.WithComponent(applog.ComponentExport).Error("Export failed",
					applog.FieldError, err.Error(),
					applog.FieldOperation, applog.OpExport)
				return err
			}
			console.New(cmd.OutOrStdout()).Info("Ledger exported to %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "Report format: csv, json or pdf")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory; defaults to EXPORT_DIR")
	cmd.Flags().StringVar(&name, "name", "ledger", "Base name of the report file")
	return cmd
}

func (a *App) runWatch(cmd *cobra.Command, _ []string) error {
	if !a.cfg.AMQPEnabled() {
		return errors.New("watch needs AMQP_URL to be set")
	}
	client, err := ConnectAMQP(a.logger, a.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := SignalContext(cmd.Context(), a.logger)
	defer cancel()

	watcher := worker.NewChangeWatcher(cmd.OutOrStdout())
	err = client.ConsumeLedgerChanges(ctx, func(m *amqp.LedgerChangeMessage) error {
		return watcher.HandleLedgerChange(ctx, m)
	})
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Watch stopped", "processed", watcher.Processed())
		return nil
	}
	return err
}
