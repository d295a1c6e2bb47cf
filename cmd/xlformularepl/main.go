// Command xlformularepl is an interactive formula console. In raw-mode
// terminals it reads a line byte-by-byte with basic editing and history
// (grounded on the teacher's raw-mode tty reader); elsewhere it falls
// back to a plain line scanner. A line of the form "A1 = formula" sets
// a cell and recalculates its dependents; any other line is evaluated
// once against an empty cell store and its result printed.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"xlformula/formula"
	"xlformula/internal/host"
)

func main() {
	sheet := host.New()
	fmt.Println("xlformula REPL — type a formula, or \"A1 = formula\" to set a cell. :quit to exit.")

	ti, isTTY := newTTYInput(os.Stdin, os.Stdout)
	if isTTY {
		defer ti.Close()
	}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		var line string
		var ok bool
		if isTTY {
			line, ok = ti.readLine("> ")
		} else {
			fmt.Print("> ")
			ok = scanner.Scan()
			line = scanner.Text()
		}
		if !ok {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return
		}
		runLine(sheet, line)
	}
}

func runLine(sheet *host.Sheet, line string) {
	if addr, text, ok := splitAssignment(line); ok {
		cell, ok := host.ParseCellAddress(addr)
		if !ok {
			fmt.Printf("bad cell address: %q\n", addr)
			return
		}
		updates, err := sheet.SetFormulaAll(cell, text)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		for _, u := range updates {
			fmt.Printf("%s = %s\n", u.Address, host.Render(u.Value))
		}
		return
	}

	eng := formula.New(formula.Config{TestMode: true})
	v, err := eng.Parse(line, nil, false)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(host.Render(v))
}

// splitAssignment recognizes "A1 = formula" / "A1=formula" at the start
// of a line, distinguishing it from a bare comparison expression by
// requiring the left-hand side to be a lone cell address.
func splitAssignment(line string) (addr, text string, ok bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", "", false
	}
	lhs := strings.TrimSpace(line[:eq])
	if lhs == "" {
		return "", "", false
	}
	if _, isAddr := host.ParseCellAddress(lhs); !isAddr {
		return "", "", false
	}
	return lhs, strings.TrimSpace(line[eq+1:]), true
}
