// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Command sdes encrypts and decrypts files with Simplified DES.
//
//	sdes decrypt -o output_file [-n num_rounds] -k key input_file
//	sdes encrypt -o output_file [-n num_rounds] -k key input_file
//
// Simplified DES is a teaching cipher with a 9-bit key; it does not protect
// data in any meaningful way.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AeonDave/sdes/internal/cmdquoted"
	"github.com/AeonDave/sdes/internal/sdes"
)

// flagsEnv names the environment variable holding default flags, which are
// parsed before those on the command line.
const flagsEnv = "SDES_FLAGS"

const usageLine = "usage: sdes {encrypt|decrypt} -o output_file [-n num_rounds] [-j workers] [-debug] -k key input_file"

func usage(w io.Writer) {
	fmt.Fprintln(w, usageLine)
	fmt.Fprintf(w, `
Commands:

	encrypt   frame and encrypt input_file into output_file
	decrypt   decrypt a framed input_file into output_file

Flags:

	-o file   output file (required)
	-k key    9-bit key written as 0x0 - 0x1FF (required)
	-n num    number of rounds, 1 - %d (default %d)
	-j num    goroutines used to transform blocks (default 1)
	-debug    log the key schedule and each step to stderr

Default flags may be given in $%s.
`[1:], sdes.MaxRounds, sdes.DefaultRounds, flagsEnv)
}

func main() { os.Exit(main1()) }

func main1() int {
	return run(os.Args[1:], os.Getenv(flagsEnv), os.Stdout, os.Stderr)
}

// errUsage is returned for command lines that cannot be acted on at all.
var errUsage = errors.New("usage")

// options is the parsed command line of one run.
type options struct {
	command string
	output  string
	input   string
	key     sdes.MasterKey
	rounds  int
	workers int
	debug   bool
}

// parseArgs parses the command name, then the flags with envFlags in front.
// Flags and the input file may appear in any order until a "--" argument.
func parseArgs(args []string, envFlags string) (options, error) {
	var opts options
	if len(args) == 0 {
		return opts, fmt.Errorf("%w: missing command", errUsage)
	}
	opts.command = args[0]
	switch opts.command {
	case "encrypt", "decrypt":
	case "help", "-h", "-help", "--help":
		return opts, flag.ErrHelp
	default:
		return opts, fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
	}

	rest, err := cmdquoted.Prepend(envFlags, args[1:])
	if err != nil {
		return opts, fmt.Errorf("%w: %s: %v", sdes.ErrInvalidArgument, flagsEnv, err)
	}

	fs := flag.NewFlagSet(opts.command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.output, "o", "", "")
	keyText := fs.String("k", "", "")
	roundsText := fs.String("n", "", "")
	fs.IntVar(&opts.workers, "j", 1, "")
	fs.BoolVar(&opts.debug, "debug", false, "")

	var positional []string
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return opts, err
			}
			return opts, fmt.Errorf("%w: %v", sdes.ErrInvalidArgument, err)
		}
		left := fs.Args()
		// A consumed "--" ends flag parsing for good.
		if n := len(rest) - len(left); n > 0 && rest[n-1] == "--" {
			positional = append(positional, left...)
			break
		}
		rest = left
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["k"] {
		if opts.key, err = sdes.ParseMasterKey(*keyText); err != nil {
			return opts, err
		}
	}
	opts.rounds = sdes.DefaultRounds
	if set["n"] {
		if opts.rounds, err = sdes.ParseRounds(*roundsText); err != nil {
			return opts, err
		}
	}
	if opts.workers < 1 {
		return opts, fmt.Errorf("%w: invalid value for -j option %d (must be at least 1)", sdes.ErrInvalidArgument, opts.workers)
	}

	switch {
	case len(positional) == 0:
		return opts, fmt.Errorf("%w: missing input filename", sdes.ErrInvalidArgument)
	case len(positional) > 1:
		return opts, fmt.Errorf("%w: too many arguments", sdes.ErrInvalidArgument)
	case opts.output == "":
		return opts, fmt.Errorf("%w: missing -o option", sdes.ErrInvalidArgument)
	case !set["k"]:
		return opts, fmt.Errorf("%w: missing -k option", sdes.ErrInvalidArgument)
	}
	opts.input = positional[0]
	return opts, nil
}

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// run executes one command line and returns the process exit status.
func run(args []string, envFlags string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, envFlags)
	switch {
	case errors.Is(err, flag.ErrHelp):
		usage(stdout)
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "%s\n", capitalize(reason(err)))
		fmt.Fprintln(stderr, usageLine)
		return 1
	}

	log := logrus.NewEntry(newLogger(stderr, opts.debug)).WithField("command", opts.command)
	if opts.debug {
		if line, err := cmdquoted.Join(args); err == nil {
			log.WithField("args", line).Debug("parsed command line")
		}
	}

	j := &job{opts: opts, log: log, stdout: stdout}
	if err := newPipeline(log).Execute(j); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reason strips the error-kind prefix that the library adds, leaving the
// message meant for people.
func reason(err error) string {
	msg := err.Error()
	for _, prefix := range []error{sdes.ErrInvalidArgument, errUsage} {
		if rest, ok := strings.CutPrefix(msg, prefix.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func reportError(w io.Writer, err error) {
	if sdes.KindOf(err) == sdes.KindFormat {
		fmt.Fprintln(w, "Error: Input file doesn't appear to be in the correct format.")
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
