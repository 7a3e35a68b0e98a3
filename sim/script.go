package sim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseScript reads a trace script: one operation per line, either
// `r <addr>` or `w <addr> <word>`, with addresses and words in decimal or
// 0x-prefixed hex. Blank lines and lines starting with # are ignored.
func ParseScript(r io.Reader) ([]Op, error) {
	var ops []Op

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		ops = append(ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ops, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "r", "read":
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("read takes one address, got %q", line)
		}

		addr, err := parseNum(fields[1])
		if err != nil {
			return Op{}, err
		}

		return Op{Kind: ReadOp, Addr: addr}, nil

	case "w", "write":
		if len(fields) != 3 {
			return Op{}, fmt.Errorf(
				"write takes an address and a word, got %q", line)
		}

		addr, err := parseNum(fields[1])
		if err != nil {
			return Op{}, err
		}

		word, err := parseNum(fields[2])
		if err != nil {
			return Op{}, err
		}

		return Op{Kind: WriteOp, Addr: addr, Word: uint32(word)}, nil

	default:
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
}

func parseNum(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}

	return n, nil
}
