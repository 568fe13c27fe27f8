// Command xcdat builds and queries compressed string dictionaries.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"slices"
	"time"

	"fortio.org/log"
	"github.com/alexflint/go-arg"

	"github.com/pombredanne/xcdat"
)

type buildCmd struct {
	Keys   string `arg:"positional,required" help:"file with one key per line"`
	Out    string `arg:"-o,--out" default:"keys.xcdat" help:"output dictionary path"`
	Binary bool   `arg:"-b,--binary" help:"binary tail mode (keys may contain zero bytes)"`
	Fast   bool   `arg:"-f,--fast" help:"fast base/check backend (larger, quicker decode)"`
}

type lookupCmd struct {
	Dict string   `arg:"positional,required" help:"dictionary path"`
	Keys []string `arg:"positional" help:"keys to look up"`
}

type accessCmd struct {
	Dict string   `arg:"positional,required" help:"dictionary path"`
	IDs  []uint32 `arg:"positional" help:"ids to decode"`
}

type prefixCmd struct {
	Dict  string `arg:"positional,required" help:"dictionary path"`
	Query string `arg:"positional,required" help:"query string"`
}

type predictCmd struct {
	Dict  string `arg:"positional,required" help:"dictionary path"`
	Query string `arg:"positional" help:"query string (empty enumerates every key)"`
	Limit int    `arg:"-n,--limit" help:"stop after this many keys (0 = all)"`
}

type statsCmd struct {
	Dict string `arg:"positional,required" help:"dictionary path"`
}

var args struct {
	Build   *buildCmd   `arg:"subcommand:build" help:"build a dictionary from a key file"`
	Lookup  *lookupCmd  `arg:"subcommand:lookup" help:"look up key ids"`
	Access  *accessCmd  `arg:"subcommand:access" help:"decode keys from ids"`
	Prefix  *prefixCmd  `arg:"subcommand:prefix" help:"common prefix search"`
	Predict *predictCmd `arg:"subcommand:predict" help:"predictive search"`
	Stats   *statsCmd   `arg:"subcommand:stats" help:"print dictionary statistics"`
}

func main() {
	p := arg.MustParse(&args)
	var err error
	switch {
	case args.Build != nil:
		err = runBuild(args.Build)
	case args.Lookup != nil:
		err = runLookup(args.Lookup)
	case args.Access != nil:
		err = runAccess(args.Access)
	case args.Prefix != nil:
		err = runPrefix(args.Prefix)
	case args.Predict != nil:
		err = runPredict(args.Predict)
	case args.Stats != nil:
		err = runStats(args.Stats)
	default:
		p.Fail("missing subcommand")
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func runBuild(cmd *buildCmd) error {
	raw, err := os.ReadFile(cmd.Keys)
	if err != nil {
		return err
	}
	keys := bytes.Split(raw, []byte{'\n'})
	if len(keys) > 0 && len(keys[len(keys)-1]) == 0 {
		keys = keys[:len(keys)-1]
	}
	slices.SortFunc(keys, bytes.Compare)
	keys = slices.CompactFunc(keys, bytes.Equal)

	start := time.Now()
	t, err := xcdat.Build(keys, xcdat.Options{BinMode: cmd.Binary, Fast: cmd.Fast})
	if err != nil {
		return err
	}
	log.Infof("built dictionary: %d keys, %d nodes (%d used), %d bytes in %v",
		t.NumKeys(), t.NumNodes(), t.NumUsedNodes(), t.SizeInBytes(), time.Since(start))

	f, err := os.Create(cmd.Out)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := t.Write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("wrote %s", cmd.Out)
	return nil
}

func loadDict(path string) (*xcdat.Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := xcdat.ReadTrie(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func runLookup(cmd *lookupCmd) error {
	t, err := loadDict(cmd.Dict)
	if err != nil {
		return err
	}
	for _, k := range cmd.Keys {
		if id := t.LookupString(k); id != xcdat.NotFound {
			fmt.Printf("%d\t%s\n", id, k)
		} else {
			fmt.Printf("-\t%s\n", k)
		}
	}
	return nil
}

func runAccess(cmd *accessCmd) error {
	t, err := loadDict(cmd.Dict)
	if err != nil {
		return err
	}
	for _, id := range cmd.IDs {
		if key := t.Access(id); key != nil {
			fmt.Printf("%d\t%s\n", id, key)
		} else {
			fmt.Printf("%d\t-\n", id)
		}
	}
	return nil
}

func runPrefix(cmd *prefixCmd) error {
	t, err := loadDict(cmd.Dict)
	if err != nil {
		return err
	}
	n := 0
	it := t.MakePrefixIterator([]byte(cmd.Query))
	for it.Next() {
		fmt.Printf("%d\t%s\n", it.ID(), it.Key())
		n++
	}
	log.Infof("%d keys are prefixes of %q", n, cmd.Query)
	return nil
}

func runPredict(cmd *predictCmd) error {
	t, err := loadDict(cmd.Dict)
	if err != nil {
		return err
	}
	n := 0
	it := t.MakePredictiveIterator([]byte(cmd.Query))
	for it.Next() {
		fmt.Printf("%d\t%s\n", it.ID(), it.Key())
		n++
		if cmd.Limit > 0 && n == cmd.Limit {
			break
		}
	}
	log.Infof("%d keys start with %q", n, cmd.Query)
	return nil
}

func runStats(cmd *statsCmd) error {
	t, err := loadDict(cmd.Dict)
	if err != nil {
		return err
	}
	t.WriteStats(os.Stdout)
	return nil
}
