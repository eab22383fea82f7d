// Command ringctl talks to a ringd node.
//
//	ringctl [-addr host:port] map <key>
//	ringctl assign <key>
//	ringctl set <key> <server>
//	ringctl del-key <key>
//	ringctl add-server <name>
//	ringctl del-server <name>
//	ringctl prefs <key> <n>
//	ringctl dump
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hashring/internal/node"
	"hashring/internal/ring"
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(realMain())
}

// realMain runs the command and returns the process exit code, so deferred
// cleanup runs before exit.
func realMain() int {
	addr := flag.String("addr", "127.0.0.1:50051", "ringd address")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "log request IDs")
	flag.Usage = usage
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cm := node.NewClientManager()
	defer cm.Close()

	client, err := cm.GetClient(*addr)
	if err != nil {
		log.WithError(err).Error("failed to connect")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	requestID := uuid.NewString()
	ctx = node.WithRequestID(ctx, requestID)
	log.WithField("request_id", requestID).Debug("sending request")

	if err := run(ctx, client, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			return 2
		}
		log.WithError(err).WithField("request_id", requestID).Error("request failed")
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: ringctl [flags] <map|assign|set|del-key|add-server|del-server|prefs|dump> [args]\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, c *node.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, args := args[0], args[1:]
	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d argument(s)", errUsage, cmd, n)
		}
		return nil
	}

	switch cmd {
	case "map", "assign":
		if err := need(1); err != nil {
			return err
		}
		resolve := c.MapKey
		if cmd == "assign" {
			resolve = c.AssignKey
		}
		server, err := resolve(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, server)

	case "set":
		if err := need(2); err != nil {
			return err
		}
		return c.SetKey(ctx, args[0], args[1])

	case "del-key":
		if err := need(1); err != nil {
			return err
		}
		deleted, err := c.DeleteKey(ctx, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(out, "key %q was not found\n", args[0])
		}

	case "add-server":
		if err := need(1); err != nil {
			return err
		}
		return c.AddServer(ctx, args[0])

	case "del-server":
		if err := need(1); err != nil {
			return err
		}
		removed, err := c.RemoveServer(ctx, args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(out, "server %q was not found\n", args[0])
		}

	case "prefs":
		if err := need(2); err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: invalid count %q", errUsage, args[1])
		}
		servers, err := c.PreferenceList(ctx, args[0], n)
		if err != nil {
			return err
		}
		for _, s := range servers {
			fmt.Fprintln(out, s)
		}

	case "dump":
		if err := need(0); err != nil {
			return err
		}
		snap, err := c.Snapshot(ctx)
		if err != nil {
			return err
		}
		return dump(out, snap)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

// dump prints the ring tables in a stable order.
func dump(out io.Writer, snap ring.Snapshot) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "replication factor\t%d\n\n", snap.ReplicationFactor)

	fmt.Fprintln(w, "SERVER\tVNODES\tKEYS")
	vnodes := make(map[string]int)
	for _, s := range snap.Positions {
		vnodes[s]++
	}
	for _, s := range snap.Servers {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s, vnodes[s], snap.Load[s])
	}

	fmt.Fprintln(w, "\nPOSITION\tSERVER")
	for _, pos := range snap.SortedPositions {
		fmt.Fprintf(w, "%d\t%s\n", pos, snap.Positions[pos])
	}

	fmt.Fprintln(w, "\nKEY\tSERVER")
	keys := make([]string, 0, len(snap.Assignments))
	for k := range snap.Assignments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, snap.Assignments[k])
	}

	return w.Flush()
}
