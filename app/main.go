package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ando2022/job-app/app/settings"
	"github.com/ando2022/job-app/app/source"
	"github.com/ando2022/job-app/app/web"
)

var opts struct {
	File     string `short:"f" long:"file" env:"JOBAPP_FILE" default:"JOB_APP/cleaned_jobs.csv" description:"jobs csv or sqlite file"`
	Table    string `long:"table" env:"JOBAPP_TABLE" default:"jobs" description:"jobs table for sqlite source"`
	Settings string `short:"s" long:"settings" env:"JOBAPP_SETTINGS" description:"dashboard settings yaml file"`
	Watch    string `long:"watch" env:"JOBAPP_WATCH" description:"cron spec to check source file for changes, e.g. '@every 30s'"`
	Schema   bool   `long:"schema" description:"print settings json schema and exit"`

	Web struct {
		Address  string  `long:"address" env:"ADDRESS" default:":8080" description:"web server listen address"`
		BaseURL  string  `long:"base-url" env:"BASE_URL" description:"base URL path for reverse proxy (e.g., /jobs)"`
		Hostname string  `long:"hostname" env:"HOSTNAME" description:"hostname to display in UI"`
		APILimit float64 `long:"api-limit" env:"API_LIMIT" default:"10" description:"json api requests per second per client, 0 disables"`
	} `group:"web" namespace:"web" env-namespace:"JOBAPP_WEB"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging"`
		Debug           bool   `long:"debug" env:"DEBUG" description:"debug mode"`
		Filename        string `long:"file" env:"FILE" description:"log to file, stdout if empty"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of rotated log files"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to keep rotated log files, 0 keeps all"`
		EnabledCompress bool   `long:"compress" env:"COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JOBAPP_LOG"`
}

var revision = "unknown"

func main() {
	fmt.Printf("job-app %s\n", revision)

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}

	if opts.Schema {
		if err := printSchema(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "failed to print schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel) // handle SIGQUIT, SIGINT and SIGTERM

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run loads settings, sets up the table cache with optional watcher and serves the dashboard until ctx canceled
func run(ctx context.Context) error {
	st, err := settings.Load(opts.Settings)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	tables := source.NewCache(source.NewLoader(opts.Table))
	// warm up, a broken source is reported on every request until fixed
	if tbl, err := tables.Get(opts.File); err != nil {
		log.Printf("[WARN] %v", err)
	} else {
		log.Printf("[INFO] %d jobs with coordinates in %s", tbl.Len(), opts.File)
	}

	if opts.Watch != "" {
		watcher, err := source.NewWatcher(tables, opts.File, opts.Watch)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	srv, err := web.New(web.Config{
		SourcePath: opts.File,
		Tables:     tables,
		Settings:   st,
		BaseURL:    validateBaseURL(opts.Web.BaseURL),
		Hostname:   opts.Web.Hostname,
		Version:    revision,
		APILimit:   opts.Web.APILimit,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx, opts.Web.Address)
}

// printSchema writes the settings json schema
func printSchema(w io.Writer) error {
	data, err := json.MarshalIndent(settings.GenerateSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// setupLogs configures lgr, logs discarded unless enabled
func setupLogs() {
	if !opts.Log.Enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return
	}

	out := logWriter()
	if opts.Log.Debug {
		log.Setup(log.Out(out), log.Err(out), log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return
	}
	log.Setup(log.Out(out), log.Err(out), log.Msec)
}

// logWriter returns the log destination, rotated file if log file set, stdout otherwise
func logWriter() io.Writer {
	if opts.Log.Filename == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   opts.Log.Filename,
		MaxSize:    opts.Log.MaxSize,
		MaxBackups: opts.Log.MaxBackups,
		MaxAge:     opts.Log.MaxAge,
		Compress:   opts.Log.EnabledCompress,
	}
}

// validateBaseURL normalizes base URL to "/path" form, "/" and empty mean root
func validateBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.HasPrefix(baseURL, "/") {
		baseURL = "/" + baseURL
	}
	return baseURL
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			log.Printf("[INFO] got %s, shutting down", sig)
			cancel()
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
