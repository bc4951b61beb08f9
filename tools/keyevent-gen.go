// keyevent-gen generates synthetic raw key input records for exercising the
// translation daemon without a real keyboard.
//
// Usage:
//
//	go run tools/keyevent-gen.go -text "hello world" | keybridged run
//	go run tools/keyevent-gen.go -count 200 -repeats -glitches > events.ndjson
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// record mirrors the daemon's input line format.
type record struct {
	VirtualKey int    `json:"vk"`
	ScanCode   int    `json:"scan"`
	Action     string `json:"action"`
	Char       string `json:"char,omitempty"`
	Extended   bool   `json:"extended,omitempty"`
	WasDown    bool   `json:"was_down,omitempty"`
}

// letterKey describes one typeable key on the standard layout.
type letterKey struct {
	vk      int
	scan    int
	lower   string
	upper   string
	shifted bool
}

var letters = buildLetters()

func buildLetters() map[rune]letterKey {
	// QWERTY rows in scan-code order.
	rows := []struct {
		keys      string
		firstScan int
	}{
		{"qwertyuiop", 0x10},
		{"asdfghjkl", 0x1e},
		{"zxcvbnm", 0x2c},
	}

	m := make(map[rune]letterKey)
	for _, row := range rows {
		for i, r := range row.keys {
			k := letterKey{
				vk:    int(r) - 'a' + 'A',
				scan:  row.firstScan + i,
				lower: string(r),
				upper: strings.ToUpper(string(r)),
			}
			m[r] = k
			up := k
			up.shifted = true
			m[rune(up.upper[0])] = up
		}
	}
	m[' '] = letterKey{vk: 0x20, scan: 0x39, lower: " ", upper: " "}
	return m
}

const (
	vkShift   = 0xa0
	scanShift = 0x2a
)

func main() {
	text := flag.String("text", "", "type this text (letters and spaces)")
	count := flag.Int("count", 100, "number of random keystrokes when -text is empty")
	repeats := flag.Bool("repeats", false, "hold some keys long enough to auto-repeat")
	glitches := flag.Bool("glitches", false, "inject duplicate downs and stale releases")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	enc := json.NewEncoder(os.Stdout)

	emit := func(r record) {
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(os.Stderr, "write record: %v\n", err)
			os.Exit(1)
		}
	}

	input := *text
	if input == "" {
		input = randomText(rng, *count)
	}

	shiftHeld := false
	for _, r := range input {
		k, ok := letters[r]
		if !ok {
			continue
		}

		if k.shifted != shiftHeld {
			if k.shifted {
				emit(record{VirtualKey: vkShift, ScanCode: scanShift, Action: "down"})
			} else {
				emit(record{VirtualKey: vkShift, ScanCode: scanShift, Action: "up", WasDown: true})
			}
			shiftHeld = k.shifted
		}

		ch := k.lower
		if shiftHeld {
			ch = k.upper
		}

		emit(record{VirtualKey: k.vk, ScanCode: k.scan, Action: "down", Char: ch})

		if *repeats && rng.Intn(10) == 0 {
			n := 2 + rng.Intn(4)
			for i := 0; i < n; i++ {
				emit(record{VirtualKey: k.vk, ScanCode: k.scan, Action: "down", Char: ch, WasDown: true})
			}
		}
		if *glitches && rng.Intn(25) == 0 {
			// A lost up event followed by a second down.
			emit(record{VirtualKey: k.vk, ScanCode: k.scan, Action: "down", Char: ch})
		}

		emit(record{VirtualKey: k.vk, ScanCode: k.scan, Action: "up", WasDown: true})

		if *glitches && rng.Intn(25) == 0 {
			// A release for a key that was never pressed.
			emit(record{VirtualKey: k.vk, ScanCode: k.scan, Action: "up"})
		}
	}

	if shiftHeld {
		emit(record{VirtualKey: vkShift, ScanCode: scanShift, Action: "up", WasDown: true})
	}
}

func randomText(rng *rand.Rand, count int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz   "
	var b strings.Builder
	for i := 0; i < count; i++ {
		c := alphabet[rng.Intn(len(alphabet))]
		if rng.Intn(12) == 0 && c != ' ' {
			c = c - 'a' + 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
