// Package aiger decodes the AIGER hardware-model-checking exchange format
// (both the ASCII ".aag" and binary ".aig" variants) into a File value, and
// instantiates a File into a *core.Circuit. Its record model (Input, Latch,
// Output, BadState, AndGate, Symbol) follows the standard AIGER
// specification; it is a standalone decoder since no AIGER library ships in
// the Go ecosystem the rest of this module draws on.
package aiger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gipsyh/aig-go/core"
	"github.com/gipsyh/aig-go/hwerr"
)

// Header is the verbatim "aig M I L O A [B C J F]" line: M is the highest
// variable index, I/L/O/A the input/latch/output/and-gate counts, and
// B/C/J/F the AIGER 1.9 bad-state/constraint/justice/fairness counts.
type Header struct {
	M, I, L, O, A, B, C, J, F int
}

// LatchRec is one latch's raw, unresolved record: NextLit is the literal of
// the next-state function (which may forward-reference an AND gate not yet
// declared), Reset is 0, 1, or ownLiteral (-1) when the file gives the
// latch's own literal (non-deterministic/unconstrained initial value,
// AIGER's "no reset" idiom).
type LatchRec struct {
	NextLit int
	Reset   int
}

// AndRec is one AND gate's raw record: Lit is its own (even) literal, Rhs0
// and Rhs1 its two fan-in literals.
type AndRec struct {
	Lit, Rhs0, Rhs1 int
}

// File is the fully decoded, but not yet instantiated, contents of an AIGER
// stream.
type File struct {
	Header  Header
	Latches []LatchRec
	Ands    []AndRec
	Outputs []int
	Bads    []int
}

const ownLiteral = -1 // sentinel: Reset == ownLiteral means "no reset"/don't-care

// Parse decodes r as either ASCII (.aag) or binary (.aig) AIGER, detected
// from the three-byte magic that opens the header line.
func Parse(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(3)
	if err != nil {
		return nil, hwerr.NewIngestErrorAt(0, "short read on magic: %v", err)
	}
	switch string(magic) {
	case "aag":
		return parseASCII(br)
	case "aig":
		return parseBinary(br)
	default:
		return nil, hwerr.NewIngestErrorAt(0, "unrecognized magic %q", magic)
	}
}

func readLine(br *bufio.Reader, lineNo *int) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	*lineNo++
	return strings.TrimRight(line, "\r\n"), nil
}

func parseHeader(line string, lineNo int) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return Header{}, hwerr.NewIngestError(lineNo, "header has %d fields, need at least 6", len(fields))
	}
	ints := make([]int, 9)
	for i := 1; i < len(fields) && i <= 9; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return Header{}, hwerr.NewIngestError(lineNo, "header field %d: %v", i, err)
		}
		ints[i-1] = v
	}
	h := Header{M: ints[0], I: ints[1], L: ints[2], O: ints[3], A: ints[4], B: ints[5], C: ints[6], J: ints[7], F: ints[8]}
	if h.J > 0 || h.F > 0 {
		return Header{}, hwerr.NewIngestError(lineNo, "justice/fairness properties are not supported")
	}
	if h.I+h.L+h.A != h.M {
		return Header{}, hwerr.NewIngestError(lineNo, "I+L+A=%d does not match M=%d", h.I+h.L+h.A, h.M)
	}
	return h, nil
}

func parseReset(field string, ownLit int, lineNo int) (int, error) {
	if field == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, hwerr.NewIngestError(lineNo, "reset field: %v", err)
	}
	if v == ownLit {
		return ownLiteral, nil
	}
	if v != 0 && v != 1 {
		return 0, hwerr.NewIngestError(lineNo, "reset field %d is neither 0, 1, nor the latch's own literal", v)
	}
	return v, nil
}

func parseASCII(br *bufio.Reader) (*File, error) {
	lineNo := 0
	headerLine, err := readLine(br, &lineNo)
	if err != nil {
		return nil, hwerr.NewIngestError(lineNo, "reading header: %v", err)
	}
	h, err := parseHeader(headerLine, lineNo)
	if err != nil {
		return nil, err
	}

	f := &File{Header: h}

	for i := 0; i < h.I; i++ {
		line, err := readLine(br, &lineNo)
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "reading input %d: %v", i, err)
		}
		lit, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "input literal: %v", err)
		}
		if want := 2 * (i + 1); lit != want {
			return nil, hwerr.NewIngestError(lineNo, "input literal %d is not in canonical position (want %d)", lit, want)
		}
	}

	for i := 0; i < h.L; i++ {
		line, err := readLine(br, &lineNo)
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "reading latch %d: %v", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, hwerr.NewIngestError(lineNo, "latch line has %d fields, need at least 2", len(fields))
		}
		ownLit := 2 * (h.I + i + 1)
		curLit, err := strconv.Atoi(fields[0])
		if err != nil || curLit != ownLit {
			return nil, hwerr.NewIngestError(lineNo, "latch literal %s is not in canonical position (want %d)", fields[0], ownLit)
		}
		next, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "latch next literal: %v", err)
		}
		reset := ""
		if len(fields) >= 3 {
			reset = fields[2]
		}
		r, err := parseReset(reset, ownLit, lineNo)
		if err != nil {
			return nil, err
		}
		f.Latches = append(f.Latches, LatchRec{NextLit: next, Reset: r})
	}

	f.Outputs, err = readLiteralLines(br, &lineNo, h.O, "output")
	if err != nil {
		return nil, err
	}
	f.Bads, err = readLiteralLines(br, &lineNo, h.B, "bad")
	if err != nil {
		return nil, err
	}
	// Constraints (C lines): parsed only to stay positioned correctly in
	// the stream; this module has no invariant-constraint concept to carry
	// them into.
	if _, err := readLiteralLines(br, &lineNo, h.C, "constraint"); err != nil {
		return nil, err
	}

	for i := 0; i < h.A; i++ {
		line, err := readLine(br, &lineNo)
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "reading and-gate %d: %v", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, hwerr.NewIngestError(lineNo, "and-gate line has %d fields, want 3", len(fields))
		}
		lhs, e1 := strconv.Atoi(fields[0])
		rhs0, e2 := strconv.Atoi(fields[1])
		rhs1, e3 := strconv.Atoi(fields[2])
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, hwerr.NewIngestError(lineNo, "and-gate literals malformed")
		}
		wantLhs := 2 * (h.I + h.L + i + 1)
		if lhs != wantLhs {
			return nil, hwerr.NewIngestError(lineNo, "and-gate literal %d is not in canonical position (want %d)", lhs, wantLhs)
		}
		f.Ands = append(f.Ands, AndRec{Lit: lhs, Rhs0: rhs0, Rhs1: rhs1})
	}

	return f, nil
}

func readLiteralLines(br *bufio.Reader, lineNo *int, n int, what string) ([]int, error) {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		line, err := readLine(br, lineNo)
		if err != nil {
			return nil, hwerr.NewIngestError(*lineNo, "reading %s %d: %v", what, i, err)
		}
		lit, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, hwerr.NewIngestError(*lineNo, "%s literal: %v", what, err)
		}
		out = append(out, lit)
	}
	return out, nil
}

func parseBinary(br *bufio.Reader) (*File, error) {
	lineNo := 0
	headerLine, err := readLine(br, &lineNo)
	if err != nil {
		return nil, hwerr.NewIngestError(lineNo, "reading header: %v", err)
	}
	h, err := parseHeader(headerLine, lineNo)
	if err != nil {
		return nil, err
	}
	f := &File{Header: h}

	for i := 0; i < h.L; i++ {
		line, err := readLine(br, &lineNo)
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "reading latch %d: %v", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			return nil, hwerr.NewIngestError(lineNo, "latch line is empty")
		}
		next, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, hwerr.NewIngestError(lineNo, "latch next literal: %v", err)
		}
		ownLit := 2 * (h.I + i + 1)
		reset := ""
		if len(fields) >= 2 {
			reset = fields[1]
		}
		r, err := parseReset(reset, ownLit, lineNo)
		if err != nil {
			return nil, err
		}
		f.Latches = append(f.Latches, LatchRec{NextLit: next, Reset: r})
	}

	f.Outputs, err = readLiteralLines(br, &lineNo, h.O, "output")
	if err != nil {
		return nil, err
	}
	f.Bads, err = readLiteralLines(br, &lineNo, h.B, "bad")
	if err != nil {
		return nil, err
	}
	if _, err := readLiteralLines(br, &lineNo, h.C, "constraint"); err != nil {
		return nil, err
	}

	// The AND section switches to raw binary immediately after the last
	// ASCII line's newline: each gate stores two unsigned LEB128-style
	// deltas instead of three literals.
	prevLhs := 2 * (h.I + h.L)
	for i := 0; i < h.A; i++ {
		lhs := prevLhs + 2*(i+1)
		d0, err := readDelta(br)
		if err != nil {
			return nil, hwerr.NewIngestErrorAt(-1, "and-gate %d delta0: %v", i, err)
		}
		d1, err := readDelta(br)
		if err != nil {
			return nil, hwerr.NewIngestErrorAt(-1, "and-gate %d delta1: %v", i, err)
		}
		rhs0 := lhs - int(d0)
		rhs1 := rhs0 - int(d1)
		if rhs0 < 0 || rhs1 < 0 {
			return nil, hwerr.NewIngestErrorAt(-1, "and-gate %d decodes a negative literal", i)
		}
		f.Ands = append(f.Ands, AndRec{Lit: lhs, Rhs0: rhs0, Rhs1: rhs1})
	}

	return f, nil
}

// readDelta decodes one unsigned base-128 varint: 7 low bits per byte,
// little-endian, continuation signalled by the byte's high bit — the
// encoding the AIGER format spec mandates for its binary AND-gate deltas.
func readDelta(br *bufio.Reader) (uint32, error) {
	var x uint32
	var shift uint
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		x |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, fmt.Errorf("varint too long")
		}
	}
}

// edgeOf resolves a raw AIGER literal into a core.Edge given the literal ->
// core.Edge table built so far; table[v] must already be populated for
// every v <= lit/2 (guaranteed by AIGER's forward-reference-free ordering
// for everything except latch next-literals, which Load resolves in a
// second pass).
func edgeOf(table []core.Edge, lit int) core.Edge {
	e := table[lit/2]
	if lit&1 != 0 {
		e = e.Not()
	}
	return e
}

// Load instantiates f into c in AIGER's canonical variable order: inputs,
// then latch-input nodes, then AND gates (resolving every fan-in against
// what has already been built, since AIGER guarantees each AND gate's
// literals precede it), then fixes up each latch's Next edge — the one
// field allowed to forward-reference an AND gate — via Circuit.SetLatchNext,
// and finally records outputs and bads. The ingestion proceeds in four
// steps: seat the constant, instantiate in literal order, let
// NewAnd/NewInput/NewLatch recompute levels and fanouts as they go, and
// register every node with the attached SAT solver as a side effect of
// those same constructors.
func Load(c *core.Circuit, f *File) error {
	h := f.Header
	table := make([]core.Edge, h.M+1)
	table[0] = core.ConstFalse

	checkLit := func(lit int, what string) error {
		if lit < 0 || lit/2 > h.M {
			return hwerr.NewIngestError(0, "%s literal %d references variable %d beyond M=%d", what, lit, lit/2, h.M)
		}
		return nil
	}

	for i := 0; i < h.I; i++ {
		table[i+1] = core.Edge{Node: c.NewInput()}
	}

	latchIdx := make([]int, h.L)
	for i, lr := range f.Latches {
		init := lr.Reset == 1
		idx := c.NewLatch(core.ConstFalse, init)
		table[h.I+i+1] = core.Edge{Node: c.Latches()[idx].Input}
		latchIdx[i] = idx
	}

	for _, a := range f.Ands {
		if err := checkLit(a.Rhs0, "and-gate fanin"); err != nil {
			return err
		}
		if err := checkLit(a.Rhs1, "and-gate fanin"); err != nil {
			return err
		}
		f0 := edgeOf(table, a.Rhs0)
		f1 := edgeOf(table, a.Rhs1)
		table[a.Lit/2] = c.NewAnd(f0, f1)
	}

	for i, lr := range f.Latches {
		if err := checkLit(lr.NextLit, "latch next"); err != nil {
			return err
		}
		c.SetLatchNext(latchIdx[i], edgeOf(table, lr.NextLit))
	}

	for _, lit := range f.Outputs {
		if err := checkLit(lit, "output"); err != nil {
			return err
		}
		c.AddOutput(edgeOf(table, lit))
	}
	for _, lit := range f.Bads {
		if err := checkLit(lit, "bad"); err != nil {
			return err
		}
		c.AddBad(edgeOf(table, lit))
	}
	return nil
}
