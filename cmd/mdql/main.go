package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/mdql/mdql"
	"github.com/mdql/mdql/mdqlerr"
	"github.com/mdql/mdql/parser"
	"github.com/mdql/mdql/util"
)

var version string

type cliOptions struct {
	Select        string `short:"s" long:"select" description:"Comma-separated list of fields to select, overriding the query's SELECT clause" value-name:"fields"`
	From          string `short:"f" long:"from" description:"FROM call, overriding the query's FROM clause" value-name:"call"`
	IncludeFields string `long:"include-fields" description:"Comma-separated list of fields to prepend to the selected fields" value-name:"fields"`
	Find          string `long:"find" description:"List embedded krafna code blocks under DIR instead of running a query" value-name:"dir"`
	JSON          bool   `long:"json" description:"Render output as a JSON array instead of TSV"`
	Debug         bool   `long:"debug" description:"Pretty-print the parsed query plan to stderr before executing it"`
	Help          bool   `long:"help" description:"Show this help"`
	Version       bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) (cliOptions, []string) {
	var opts cliOptions

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] QUERY"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	return opts, rest
}

func main() {
	util.InitSlog()

	opts, args := parseOptions(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.Find != "" {
		out, err := mdql.Find(ctx, opts.Find, opts.JSON)
		if err != nil {
			fail(err)
		}
		fmt.Println(out)
		return
	}

	if len(args) == 0 {
		fmt.Print("No query is specified!\n\n")
		os.Exit(1)
	} else if len(args) > 1 {
		fmt.Printf("Multiple queries are given: %v\n\n", args)
		os.Exit(1)
	}
	query := args[0]

	if opts.Debug {
		plan, err := parser.Parse(query)
		if err != nil {
			fail(err)
		}
		pp.Fprintln(os.Stderr, plan)
	}

	mdqlOpts := mdql.Options{
		Query: query,
		JSON:  opts.JSON,
	}
	if opts.Select != "" {
		mdqlOpts.Select = &opts.Select
	}
	if opts.From != "" {
		mdqlOpts.From = &opts.From
	}
	if opts.IncludeFields != "" {
		mdqlOpts.IncludeFields = &opts.IncludeFields
	}

	out, err := mdql.Query(ctx, mdqlOpts)
	if err != nil {
		fail(err)
	}
	fmt.Println(out)
}

// fail reports err to stderr and exits with a status code that reflects
// its kind: parse, argument and type errors are user mistakes (1),
// anything else is unexpected (2).
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	switch {
	case errors.Is(err, mdqlerr.ErrParse), errors.Is(err, mdqlerr.ErrArgument), errors.Is(err, mdqlerr.ErrType):
		os.Exit(1)
	default:
		os.Exit(2)
	}
}
