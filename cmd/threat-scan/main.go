package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/config"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/logging"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/scan"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// configEnv names the optional YAML config file.
const configEnv = config.EnvPrefix + "_CONFIG"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("threat-scan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(os.Getenv(configEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.Log.Level)
	log, err := logging.New(level, cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1:]); err != nil {
		log.Error("command failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
	if len(args) == 0 {
		log.Debug("starting tool server",
			zap.String("version", Version),
			zap.String("build_time", BuildTime),
			zap.String("commit", GitCommit))
		server.Version = Version
		return server.New(cfg, log).Run(ctx)
	}

	svc := scan.New(log.Named("scan"))
	switch args[0] {
	case "decode":
		if len(args) != 2 {
			return fmt.Errorf("usage: threat-scan decode <file>")
		}
		return decode(ctx, svc, args[1])
	case "convert":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("usage: threat-scan convert <in> <out> [format]")
		}
		name := cfg.Encode.Format
		if len(args) == 4 {
			name = args[3]
		}
		return convert(ctx, svc, args[1], args[2], name, cfg.Encode.Base64)
	default:
		return fmt.Errorf("unknown command %q, see --help", args[0])
	}
}

// decode prints the decoded result as JSON, without pixel bytes.
func decode(ctx context.Context, svc *scan.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := svc.Decode(ctx, data)
	if err != nil {
		return err
	}
	for i := range res.ImageData {
		res.ImageData[i].Data = nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func convert(ctx context.Context, svc *scan.Service, in, out, name string, asBase64 bool) error {
	format := detection.FormatUnknown
	if name != "" {
		f, err := detection.ParseFormat(name)
		if err != nil {
			return err
		}
		format = f
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	encoded, _, err := svc.Convert(ctx, data, format, asBase64)
	if err != nil {
		return err
	}
	return os.WriteFile(out, encoded, 0644)
}

func printHelp() {
	fmt.Println("threat-scan - decode and convert threat detection scan containers")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  threat-scan                           Run the MCP tool server on stdin/stdout")
	fmt.Println("  threat-scan decode <file>             Print detections as JSON")
	fmt.Println("  threat-scan convert <in> <out> [fmt]  Re-encode as DICOS or COCO")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=<path>      Optional YAML config file\n", configEnv)
	fmt.Println("  THREAT_SCAN_LOG_LEVEL=debug     Log level (debug, info, warn, error)")
	fmt.Println("  THREAT_SCAN_LOG_MODE=release    JSON log output")
	fmt.Println("  THREAT_SCAN_ENCODE_FORMAT=dicos Default convert format")
	fmt.Println("  THREAT_SCAN_ENCODE_BASE64=true  Write base64 text containers")
	fmt.Println()
	fmt.Println("Logs go to stderr; stdout carries the MCP protocol or command output.")
}
