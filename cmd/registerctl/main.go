/*
Copyright (C) 2023-2026  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/taochain/registerstore/storage"
)

const newprompt = "\033[32m>\033[0m "
const resultprompt = "\033[31m=\033[0m "

// registerctl is an interactive inspection REPL for read/write/has/trust,
// built the way the teacher builds its own SCM console — chzyer/readline
// driving a simple read-eval-print loop — with a line grammar of plain
// words instead of Scheme expressions, since a register store has nothing
// for a language reader to parse.
func main() {
	basepath := flag.String("data", "./data", "directory the file backend stores registers under")
	flag.Parse()

	backend := storage.NewFileBackend(*basepath)
	cfg := storage.Config{Flags: byte(storage.MEMPOOL), Buckets: 64, CacheSize: 0}
	store := storage.NewRegisterStore(backend, cfg, nil)

	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".registerctl-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	fmt.Println("registerctl — read <id> | write <id> <state> | has <id> | trust <genesis>")
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Print(resultprompt)
		fmt.Println(eval(store, line))
	}
}

func eval(store *storage.RegisterStore, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	cmd := fields[0]

	parseID := func(s string) (storage.RegisterID, bool) {
		var id storage.RegisterID
		b, err := hex.DecodeString(s)
		if err != nil || len(b) != len(id) {
			return id, false
		}
		copy(id[:], b)
		return id, true
	}

	switch cmd {
	case "read":
		if len(fields) != 2 {
			return "usage: read <hex-id>"
		}
		id, ok := parseID(fields[1])
		if !ok {
			return "bad id"
		}
		st, err := store.ReadState(id, storage.BLOCK)
		if err != nil {
			return err.Error()
		}
		return string(st)

	case "write":
		if len(fields) != 3 {
			return "usage: write <hex-id> <state>"
		}
		id, ok := parseID(fields[1])
		if !ok {
			return "bad id"
		}
		if err := store.WriteState(id, storage.State(fields[2]), storage.BLOCK); err != nil {
			return err.Error()
		}
		return "ok"

	case "has":
		if len(fields) != 2 {
			return "usage: has <hex-id>"
		}
		id, ok := parseID(fields[1])
		if !ok {
			return "bad id"
		}
		return fmt.Sprintf("%v", store.HasState(id, storage.BLOCK))

	case "trust":
		if len(fields) != 2 {
			return "usage: trust <hex-genesis>"
		}
		genesis, ok := parseID(fields[1])
		if !ok {
			return "bad id"
		}
		st, err := store.ReadTrust(genesis)
		if err != nil {
			return err.Error()
		}
		return string(st)

	default:
		return "unknown command: " + cmd
	}
}
