package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aviodev/graphlet/internal/eventbus"
	"github.com/aviodev/graphlet/internal/executor"
	"github.com/aviodev/graphlet/internal/introspection"
	"github.com/aviodev/graphlet/internal/metrics"
	"github.com/aviodev/graphlet/internal/otel"
	"github.com/aviodev/graphlet/internal/resolver"
	"github.com/aviodev/graphlet/internal/schema"
	"github.com/aviodev/graphlet/internal/server"
)

const rootUsage = `graphlet — GraphQL execution engine & tools

USAGE:
  graphlet <command> [flags]

COMMANDS:
  serve            Run an HTTP GraphQL endpoint over an SDL schema and a data document
  check            Parse & validate a GraphQL SDL schema
  print-sdl        Parse a schema and print its normalized SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema.file <file>            GraphQL SDL schema file (required)
  -data.file <file>              YAML data document backing the root fields
  -graphql.introspection <bool>  Enable GraphQL introspection (default: true)
  -server.addr <addr>            HTTP listen address (default: :8080)
  -server.pretty                 Pretty-print JSON responses
  -server.timeout <duration>     Per-request timeout, e.g. 10s (default: 10s)
  -server.cors-origin <origin>   Allowed CORS origin. Repeatable
  -server.max-body <bytes>       Max request body size (default: 1048576)
  -metrics                       Expose Prometheus metrics on /metrics
  -otel.endpoint <addr>          OTLP collector endpoint
  -otel.service <name>           OpenTelemetry service name (default: graphlet)
`

const checkUsage = `check FLAGS:
  -schema.file <file>  GraphQL SDL schema file (required)
  (Exits non-zero on validation errors)
`

const printSDLUsage = `print-sdl FLAGS:
  -schema.file <file>  GraphQL SDL schema file (required)
  -out <file>          Write normalized SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("graphlet", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "print-sdl":
		return cmdPrintSDL(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "check":
		fmt.Print(checkUsage)
	case "print-sdl":
		fmt.Print(printSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	schemaFile := ""
	dataFile := ""
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	enableIntrospection := true
	enableMetrics := false
	otelEndpoint := ""
	otelService := "graphlet"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL schema file")
	fs.StringVar(&dataFile, "data.file", dataFile, "YAML data document")
	fs.BoolVar(&enableIntrospection, "graphql.introspection", enableIntrospection, "Enable GraphQL introspection")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Max request body size")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.BoolVar(&enableMetrics, "metrics", enableMetrics, "Expose Prometheus metrics")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-schema.file is required")
	}

	reg, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}

	table := resolver.NewTable()
	if dataFile != "" {
		if err := bindDataDocument(reg, table, dataFile); err != nil {
			return err
		}
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	mux := http.NewServeMux()
	if enableMetrics {
		m := metrics.New()
		m.Register()
		mux.Handle("/metrics", m.Handler())
	}

	if enableIntrospection {
		reg, err = introspection.Enable(reg, table)
		if err != nil {
			return fmt.Errorf("introspection: %w", err)
		}
	}
	table.Freeze()

	exec := executor.New(reg, table)

	sopts := []server.Option{server.WithTimeout(timeout), server.WithMaxBodyBytes(maxBody)}
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	mux.Handle("/graphql", server.New(exec, sopts...))

	log.Printf("GraphQL server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// bindDataDocument binds root resolvers serving static values from a YAML
// document. Top-level "query" and "mutation" sections map to the matching
// root types; a flat document is treated as query data. Nested objects and
// lists are served through the table's property fallback.
func bindDataDocument(reg *schema.Registry, table *resolver.Table, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read data document: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse data document: %w", err)
	}

	sections := map[*schema.Type]map[string]any{}
	queryData, hasQuery := doc["query"].(map[string]any)
	mutationData, hasMutation := doc["mutation"].(map[string]any)
	if hasQuery || hasMutation {
		if hasQuery && reg.QueryType() != nil {
			sections[reg.QueryType()] = queryData
		}
		if hasMutation && reg.MutationType() != nil {
			sections[reg.MutationType()] = mutationData
		}
	} else if reg.QueryType() != nil {
		sections[reg.QueryType()] = doc
	}

	for rootType, data := range sections {
		for name, value := range data {
			if rootType.Field(name) == nil {
				return fmt.Errorf("data document: type %s has no field %q", rootType.Name, name)
			}
			v := value
			err := table.Bind(rootType.Name, name, func(ctx context.Context, source any, args map[string]any) (any, error) {
				return v, nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func loadSchema(path string) (*schema.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	reg, err := schema.BuildFromSDL(path, string(raw))
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return reg, nil
}

func cmdCheck(args []string) error {
	schemaFile := ""
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL schema file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("-schema.file is required")
	}
	reg, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d types\n", len(reg.TypeNames()))
	return nil
}

func cmdPrintSDL(args []string) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("print-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL schema file")
	fs.StringVar(&outFile, "out", outFile, "Write normalized SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, printSDLUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, printSDLUsage)
		return fmt.Errorf("-schema.file is required")
	}
	reg, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}
	sdl := schema.Render(reg)
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
