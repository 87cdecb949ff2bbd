package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const usage = "Usage: quantize k files..."

var errUsage = errors.New(usage)

type job struct {
	k     int
	files []string
}

// parseArgs reads "k file..." from args, or from one line of stdin when args
// is empty.
func parseArgs(args []string, stdin io.Reader, stdout io.Writer) (job, error) {
	switch len(args) {
	case 0:
		fmt.Fprintln(stdout, "No args detected, reading from stdin: k files...")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return job{}, fmt.Errorf("read stdin: %w", err)
		}
		args = strings.Fields(line)
		if len(args) < 2 {
			return job{}, errUsage
		}
	case 1:
		return job{}, errUsage
	}
	k, err := strconv.Atoi(args[0])
	if err != nil {
		return job{}, fmt.Errorf("invalid k %q: %w", args[0], err)
	}
	return job{k: k, files: args[1:]}, nil
}
